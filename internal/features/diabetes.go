// Package features assembles model input vectors from form values. Field
// order is fixed by the order the models were trained on and must not change.
package features

// Vector is an ordered model input.
type Vector []float64

const VectorLen = 13

var DiabetesFeatureNames = []string{
	"age",
	"hypertension",
	"heart_disease",
	"bmi",
	"HbA1c_level",
	"blood_glucose_level",
	"gender_Male",
	"gender_Other",
	"smoking_history_current",
	"smoking_history_ever",
	"smoking_history_former",
	"smoking_history_never",
	"smoking_history_not current",
}

type DiabetesInput struct {
	Age          float64
	Hypertension YesNo
	HeartDisease YesNo
	BMI          float64
	HbA1c        float64
	Glucose      float64
	Gender       Gender
	Smoking      Smoking
}

func BuildDiabetes(in DiabetesInput) Vector {
	male, other := encodeGender(in.Gender)
	smoking := encodeSmoking(in.Smoking)
	return Vector{
		in.Age,
		bit(bool(in.Hypertension)),
		bit(bool(in.HeartDisease)),
		in.BMI,
		in.HbA1c,
		in.Glucose,
		male,
		other,
		smoking[0],
		smoking[1],
		smoking[2],
		smoking[3],
		smoking[4],
	}
}

// encodeGender returns the male and other indicator bits; Female is the
// baseline and sets neither.
func encodeGender(g Gender) (male, other float64) {
	switch g {
	case GenderMale:
		return 1, 0
	case GenderOther:
		return 0, 1
	default:
		return 0, 0
	}
}

// encodeSmoking returns bits in the order current, ever, former, never,
// not current. Every category has its own bit, so a value outside the enum
// encodes as all zeros.
func encodeSmoking(s Smoking) [5]float64 {
	var bits [5]float64
	switch s {
	case SmokingCurrent:
		bits[0] = 1
	case SmokingEver:
		bits[1] = 1
	case SmokingFormer:
		bits[2] = 1
	case SmokingNever:
		bits[3] = 1
	case SmokingNotCurrent:
		bits[4] = 1
	}
	return bits
}
