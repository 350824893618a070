package features

var HeartFeatureNames = []string{
	"id",
	"age",
	"gender",
	"height",
	"weight",
	"ap_hi",
	"ap_lo",
	"cholesterol",
	"gluc",
	"smoke",
	"alco",
	"active",
	"bmi",
}

type HeartInput struct {
	Age         float64
	Gender      Gender
	HeightCm    float64
	WeightKg    float64
	SystolicBP  float64
	DiastolicBP float64
	Cholesterol float64
	Glucose     float64
	Smoke       bool
	Alcohol     bool
	Active      bool
}

func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return weightKg / (m * m)
}

// HeartGenderCode is the training label scheme of the cardio dataset:
// 1 for Male, 2 for Female.
func HeartGenderCode(g Gender) float64 {
	if g == GenderMale {
		return 1
	}
	return 2
}

// BuildHeart returns the heart vector and the BMI it derived.
func BuildHeart(in HeartInput) (Vector, float64) {
	bmi := BMI(in.HeightCm, in.WeightKg)
	return Vector{
		0, // id column, unused at inference
		in.Age,
		HeartGenderCode(in.Gender),
		in.HeightCm,
		in.WeightKg,
		in.SystolicBP,
		in.DiastolicBP,
		in.Cholesterol,
		in.Glucose,
		bit(in.Smoke),
		bit(in.Alcohol),
		bit(in.Active),
		bmi,
	}, bmi
}
