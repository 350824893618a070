package features

import "fmt"

type Gender int

const (
	GenderFemale Gender = iota
	GenderMale
	GenderOther
)

var genderNames = map[Gender]string{
	GenderFemale: "Female",
	GenderMale:   "Male",
	GenderOther:  "Other",
}

func (g Gender) String() string {
	if name, ok := genderNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Gender(%d)", int(g))
}

func ParseGender(s string) (Gender, error) {
	for g, name := range genderNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gender %q", s)
}

// Smoking is the smoking-history category used by the diabetes model.
type Smoking int

const (
	SmokingNever Smoking = iota
	SmokingFormer
	SmokingEver
	SmokingCurrent
	SmokingNotCurrent
)

var smokingNames = map[Smoking]string{
	SmokingNever:      "never",
	SmokingFormer:     "former",
	SmokingEver:       "ever",
	SmokingCurrent:    "current",
	SmokingNotCurrent: "not current",
}

func (s Smoking) String() string {
	if name, ok := smokingNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Smoking(%d)", int(s))
}

func ParseSmoking(s string) (Smoking, error) {
	for v, name := range smokingNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown smoking history %q", s)
}

// YesNo is a form flag rendered as "Yes"/"No".
type YesNo bool

func (y YesNo) String() string {
	if y {
		return "Yes"
	}
	return "No"
}

func ParseYesNo(s string) (YesNo, error) {
	switch s {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	}
	return false, fmt.Errorf("expected Yes or No, got %q", s)
}

func bit(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
