package risk

import (
	"fmt"
	"strconv"

	"github.com/Skufu/healthrisk/internal/features"
	"github.com/Skufu/healthrisk/internal/report"
)

// Assessment is one scored submission together with the echoed inputs the
// report shows.
type Assessment struct {
	Prediction

	Disease     Disease         `json:"disease"`
	RiskPercent float64         `json:"riskPercent"`
	Verdict     string          `json:"prediction"`
	BMI         *float64        `json:"bmi,omitempty"`
	Inputs      []report.Field  `json:"inputs"`
	Features    features.Vector `json:"features"`
}

func newAssessment(d Disease, p Prediction, vec features.Vector, inputs []report.Field) Assessment {
	verdict := report.LowRisk
	if p.Label == 1 {
		verdict = report.HighRisk
	}
	return Assessment{
		Disease:     d,
		Prediction:  p,
		RiskPercent: p.Probability * 100,
		Verdict:     verdict,
		Inputs:      inputs,
		Features:    vec,
	}
}

func (e *Engine) AssessDiabetes(in features.DiabetesInput) (Assessment, error) {
	vec := features.BuildDiabetes(in)
	c := e.classifier(Diabetes)
	p, err := Predict(c.Model, c.Scaler, vec)
	if err != nil {
		return Assessment{}, fmt.Errorf("predict diabetes: %w", err)
	}
	return newAssessment(Diabetes, p, vec, []report.Field{
		{Label: "Age", Value: num(in.Age)},
		{Label: "Gender", Value: in.Gender.String()},
		{Label: "BMI", Value: num(in.BMI)},
		{Label: "Smoking History", Value: in.Smoking.String()},
		{Label: "Hypertension", Value: in.Hypertension.String()},
		{Label: "Heart Disease", Value: in.HeartDisease.String()},
		{Label: "HbA1c Level", Value: num(in.HbA1c)},
		{Label: "Blood Glucose Level", Value: num(in.Glucose)},
	}), nil
}

func (e *Engine) AssessHeart(in features.HeartInput) (Assessment, error) {
	vec, bmi := features.BuildHeart(in)
	c := e.classifier(Heart)
	p, err := Predict(c.Model, c.Scaler, vec)
	if err != nil {
		return Assessment{}, fmt.Errorf("predict heart disease: %w", err)
	}
	a := newAssessment(Heart, p, vec, []report.Field{
		{Label: "Age", Value: num(in.Age)},
		{Label: "Gender", Value: in.Gender.String()},
		{Label: "Height (cm)", Value: num(in.HeightCm)},
		{Label: "Weight (kg)", Value: num(in.WeightKg)},
		{Label: "BMI", Value: fmt.Sprintf("%.1f", bmi)},
		{Label: "Systolic BP (mmHg)", Value: num(in.SystolicBP)},
		{Label: "Diastolic BP (mmHg)", Value: num(in.DiastolicBP)},
		{Label: "Cholesterol (mg/dL)", Value: num(in.Cholesterol)},
		{Label: "Glucose (mg/dL)", Value: num(in.Glucose)},
		{Label: "Smoker", Value: features.YesNo(in.Smoke).String()},
		{Label: "Alcohol Use", Value: features.YesNo(in.Alcohol).String()},
		{Label: "Physically Active", Value: features.YesNo(in.Active).String()},
	})
	a.BMI = &bmi
	return a, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
