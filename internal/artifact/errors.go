package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch reports a feature vector whose length differs from what
	// a scaler or model was fitted on.
	ErrShapeMismatch = errors.New("feature shape mismatch")
	ErrUnknownType   = errors.New("unknown artifact type")
)

// LoadError is returned when a model or scaler cannot be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func shapeError(kind string, want, got int) error {
	return fmt.Errorf("%s expects %d features, got %d: %w", kind, want, got, ErrShapeMismatch)
}
