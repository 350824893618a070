package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skufu/healthrisk/internal/features"
	"github.com/Skufu/healthrisk/internal/risk"
)

// Ranges mirror the bounds of the intake form.
type DiabetesRequest struct {
	PatientName    string  `json:"patientName" binding:"max=120"`
	Age            float64 `json:"age" binding:"required,min=1,max=120"`
	Gender         string  `json:"gender" binding:"required,oneof=Female Male Other"`
	BMI            float64 `json:"bmi" binding:"required,min=10,max=60"`
	SmokingHistory string  `json:"smokingHistory" binding:"required,oneof=never former ever current 'not current'"`
	Hypertension   string  `json:"hypertension" binding:"required,oneof=Yes No"`
	HeartDisease   string  `json:"heartDisease" binding:"required,oneof=Yes No"`
	HbA1c          float64 `json:"hba1c" binding:"required,min=3,max=15"`
	Glucose        float64 `json:"glucose" binding:"required,min=50,max=300"`
}

type HeartRequest struct {
	PatientName string  `json:"patientName" binding:"max=120"`
	Age         float64 `json:"age" binding:"required,min=1,max=120"`
	Gender      string  `json:"gender" binding:"required,oneof=Male Female"`
	HeightCm    float64 `json:"heightCm" binding:"required,min=120,max=220"`
	WeightKg    float64 `json:"weightKg" binding:"required,min=30,max=200"`
	SystolicBP  float64 `json:"systolicBp" binding:"required,min=80,max=200"`
	DiastolicBP float64 `json:"diastolicBp" binding:"required,min=50,max=120"`
	Cholesterol float64 `json:"cholesterol" binding:"required,min=100,max=400"`
	Glucose     float64 `json:"glucose" binding:"required,min=50,max=300"`
	Smoke       bool    `json:"smoke"`
	Alcohol     bool    `json:"alco"`
	Active      *bool   `json:"active"` // form default is true
}

type assessmentRequest interface {
	patient() string
	run(e *risk.Engine) (risk.Assessment, error)
}

func (r *DiabetesRequest) patient() string { return r.PatientName }

// input maps the bound request onto model inputs. The binding tags already
// restrict every category to a parseable value.
func (r *DiabetesRequest) input() (features.DiabetesInput, error) {
	gender, err := features.ParseGender(r.Gender)
	if err != nil {
		return features.DiabetesInput{}, err
	}
	smoking, err := features.ParseSmoking(r.SmokingHistory)
	if err != nil {
		return features.DiabetesInput{}, err
	}
	hypertension, err := features.ParseYesNo(r.Hypertension)
	if err != nil {
		return features.DiabetesInput{}, fmt.Errorf("hypertension: %w", err)
	}
	heartDisease, err := features.ParseYesNo(r.HeartDisease)
	if err != nil {
		return features.DiabetesInput{}, fmt.Errorf("heart disease: %w", err)
	}
	return features.DiabetesInput{
		Age:          r.Age,
		Hypertension: hypertension,
		HeartDisease: heartDisease,
		BMI:          r.BMI,
		HbA1c:        r.HbA1c,
		Glucose:      r.Glucose,
		Gender:       gender,
		Smoking:      smoking,
	}, nil
}

func (r *DiabetesRequest) run(e *risk.Engine) (risk.Assessment, error) {
	in, err := r.input()
	if err != nil {
		return risk.Assessment{}, err
	}
	return e.AssessDiabetes(in)
}

func (r *HeartRequest) patient() string { return r.PatientName }

func (r *HeartRequest) input() (features.HeartInput, error) {
	gender, err := features.ParseGender(r.Gender)
	if err != nil {
		return features.HeartInput{}, err
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return features.HeartInput{
		Age:         r.Age,
		Gender:      gender,
		HeightCm:    r.HeightCm,
		WeightKg:    r.WeightKg,
		SystolicBP:  r.SystolicBP,
		DiastolicBP: r.DiastolicBP,
		Cholesterol: r.Cholesterol,
		Glucose:     r.Glucose,
		Smoke:       r.Smoke,
		Alcohol:     r.Alcohol,
		Active:      active,
	}, nil
}

func (r *HeartRequest) run(e *risk.Engine) (risk.Assessment, error) {
	in, err := r.input()
	if err != nil {
		return risk.Assessment{}, err
	}
	return e.AssessHeart(in)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var fieldNames = map[string][2]string{
	"PatientName":    {"patientName", "patient name"},
	"Age":            {"age", "age"},
	"Gender":         {"gender", "gender"},
	"BMI":            {"bmi", "BMI"},
	"SmokingHistory": {"smokingHistory", "smoking history"},
	"Hypertension":   {"hypertension", "hypertension"},
	"HeartDisease":   {"heartDisease", "heart disease history"},
	"HbA1c":          {"hba1c", "HbA1c level"},
	"Glucose":        {"glucose", "blood glucose"},
	"HeightCm":       {"heightCm", "height"},
	"WeightKg":       {"weightKg", "weight"},
	"SystolicBP":     {"systolicBp", "systolic blood pressure"},
	"DiastolicBP":    {"diastolicBp", "diastolic blood pressure"},
	"Cholesterol":    {"cholesterol", "cholesterol"},
}

func describeValidation(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		names, ok := fieldNames[fe.Field()]
		if !ok {
			names = [2]string{fe.Field(), fe.Field()}
		}
		var msg string
		switch fe.Tag() {
		case "required":
			msg = names[1] + " is required"
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", names[1], fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s", names[1], fe.Param())
		case "oneof":
			msg = fmt.Sprintf("%s must be one of %s", names[1], strings.ReplaceAll(fe.Param(), "'", ""))
		default:
			msg = fmt.Sprintf("%s is invalid", names[1])
		}
		out = append(out, fieldError{Field: names[0], Message: msg})
	}
	return out
}
