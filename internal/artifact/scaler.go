package artifact

import (
	"fmt"
	"math"
)

// Scaler applies the fitted training-time transform to a raw feature vector.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
	NumFeatures() int
	FeatureNames() []string
}

// StandardScaler centres each feature on its training mean and divides by the
// training standard deviation.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
	Names []string
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, shapeError("standard scaler", len(s.Mean), len(features))
	}
	out := make([]float64, len(features))
	for i, v := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func (s *StandardScaler) NumFeatures() int       { return len(s.Mean) }
func (s *StandardScaler) FeatureNames() []string { return s.Names }

// MinMaxScaler maps each feature with x*scale + min.
type MinMaxScaler struct {
	Min   []float64
	Scale []float64
	Names []string
}

func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Min) {
		return nil, shapeError("minmax scaler", len(s.Min), len(features))
	}
	out := make([]float64, len(features))
	for i, v := range features {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

func (s *MinMaxScaler) NumFeatures() int       { return len(s.Min) }
func (s *MinMaxScaler) FeatureNames() []string { return s.Names }

func scalerFromDocument(doc *document) (Scaler, error) {
	switch doc.Type {
	case "standard":
		if len(doc.Mean) == 0 || len(doc.Mean) != len(doc.Scale) {
			return nil, fmt.Errorf("standard scaler: mean has %d values, scale has %d", len(doc.Mean), len(doc.Scale))
		}
		if err := checkNames(doc.FeatureNames, len(doc.Mean)); err != nil {
			return nil, err
		}
		if err := checkFinite("standard scaler mean", doc.Mean); err != nil {
			return nil, err
		}
		if err := checkFinite("standard scaler scale", doc.Scale); err != nil {
			return nil, err
		}
		return &StandardScaler{Mean: doc.Mean, Scale: doc.Scale, Names: doc.FeatureNames}, nil
	case "minmax":
		if len(doc.Min) == 0 || len(doc.Min) != len(doc.Scale) {
			return nil, fmt.Errorf("minmax scaler: min has %d values, scale has %d", len(doc.Min), len(doc.Scale))
		}
		if err := checkNames(doc.FeatureNames, len(doc.Min)); err != nil {
			return nil, err
		}
		if err := checkFinite("minmax scaler min", doc.Min); err != nil {
			return nil, err
		}
		if err := checkFinite("minmax scaler scale", doc.Scale); err != nil {
			return nil, err
		}
		return &MinMaxScaler{Min: doc.Min, Scale: doc.Scale, Names: doc.FeatureNames}, nil
	default:
		return nil, fmt.Errorf("scaler %q: %w", doc.Type, ErrUnknownType)
	}
}

func checkNames(names []string, n int) error {
	if len(names) != 0 && len(names) != n {
		return fmt.Errorf("feature_names has %d entries for %d features", len(names), n)
	}
	return nil
}

func checkFinite(field string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d]: non-finite value %v", field, i, v)
		}
	}
	return nil
}
