// Package risk runs the diabetes and heart-disease classifiers over form
// inputs.
package risk

import (
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Skufu/healthrisk/internal/artifact"
	"github.com/Skufu/healthrisk/internal/features"
)

type Disease string

const (
	Diabetes Disease = "diabetes"
	Heart    Disease = "heart"
)

// Name is the display name used in reports and filenames.
func (d Disease) Name() string {
	switch d {
	case Diabetes:
		return "Diabetes"
	case Heart:
		return "Heart Disease"
	}
	return string(d)
}

func (d Disease) featureNames() []string {
	if d == Diabetes {
		return features.DiabetesFeatureNames
	}
	return features.HeartFeatureNames
}

type Classifier struct {
	Model  artifact.Model
	Scaler artifact.Scaler
}

// Engine holds the loaded artifacts. It is built once at start and is safe
// for concurrent use since nothing mutates it afterwards.
type Engine struct {
	diabetes Classifier
	heart    Classifier
}

func NewEngine(diabetes, heart Classifier) (*Engine, error) {
	if err := checkClassifier(Diabetes, diabetes); err != nil {
		return nil, err
	}
	if err := checkClassifier(Heart, heart); err != nil {
		return nil, err
	}
	return &Engine{diabetes: diabetes, heart: heart}, nil
}

// Load reads <dir>/{diabetes,heart}_{model,scaler}.* concurrently.
func Load(dir string) (*Engine, error) {
	var (
		diabetes, heart Classifier
		g               errgroup.Group
	)
	g.Go(func() (err error) {
		diabetes.Model, err = loadModel(dir, Diabetes)
		return err
	})
	g.Go(func() (err error) {
		diabetes.Scaler, err = loadScaler(dir, Diabetes)
		return err
	})
	g.Go(func() (err error) {
		heart.Model, err = loadModel(dir, Heart)
		return err
	})
	g.Go(func() (err error) {
		heart.Scaler, err = loadScaler(dir, Heart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewEngine(diabetes, heart)
}

func loadModel(dir string, d Disease) (artifact.Model, error) {
	path, err := artifact.Resolve(dir, string(d)+"_model")
	if err != nil {
		return nil, err
	}
	return artifact.LoadModel(path)
}

func loadScaler(dir string, d Disease) (artifact.Scaler, error) {
	path, err := artifact.Resolve(dir, string(d)+"_scaler")
	if err != nil {
		return nil, err
	}
	return artifact.LoadScaler(path)
}

func checkClassifier(d Disease, c Classifier) error {
	if c.Model == nil || c.Scaler == nil {
		return fmt.Errorf("%s: model and scaler are required", d)
	}
	if n := c.Scaler.NumFeatures(); n != features.VectorLen {
		return fmt.Errorf("%s scaler expects %d features, want %d: %w", d, n, features.VectorLen, artifact.ErrShapeMismatch)
	}
	if n := c.Model.NumFeatures(); n != features.VectorLen {
		return fmt.Errorf("%s model expects %d features, want %d: %w", d, n, features.VectorLen, artifact.ErrShapeMismatch)
	}
	want := d.featureNames()
	for _, names := range [][]string{c.Scaler.FeatureNames(), c.Model.FeatureNames()} {
		if len(names) > 0 && !slices.Equal(names, want) {
			return fmt.Errorf("%s artifact feature order %v does not match %v", d, names, want)
		}
	}
	return nil
}

func (e *Engine) classifier(d Disease) Classifier {
	if d == Diabetes {
		return e.diabetes
	}
	return e.heart
}
