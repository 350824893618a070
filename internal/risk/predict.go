package risk

import (
	"fmt"
	"math"

	"github.com/Skufu/healthrisk/internal/artifact"
	"github.com/Skufu/healthrisk/internal/features"
)

type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

// Predict scales the vector and classifies it. Errors here mean the
// artifacts and the feature builders disagree and are not recoverable per
// request.
func Predict(model artifact.Model, scaler artifact.Scaler, vec features.Vector) (Prediction, error) {
	scaled, err := scaler.Transform(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("scale features: %w", err)
	}
	label, err := model.Predict(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("classify: %w", err)
	}
	proba, err := model.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict probability: %w", err)
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return Prediction{}, fmt.Errorf("predict probability: %v outside [0,1]", proba)
	}
	return Prediction{Label: label, Probability: proba}, nil
}
