package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk form shared by every model and scaler type.
type document struct {
	Type         string       `json:"type" yaml:"type"`
	FeatureNames []string     `json:"feature_names" yaml:"feature_names"`
	NFeatures    int          `json:"n_features" yaml:"n_features"`
	Mean         []float64    `json:"mean" yaml:"mean"`
	Min          []float64    `json:"min" yaml:"min"`
	Scale        []float64    `json:"scale" yaml:"scale"`
	Coef         []float64    `json:"coef" yaml:"coef"`
	Intercept    float64      `json:"intercept" yaml:"intercept"`
	Nodes        []TreeNode   `json:"nodes" yaml:"nodes"`
	Trees        [][]TreeNode `json:"trees" yaml:"trees"`
}

func (d *document) featureCount() (int, error) {
	switch {
	case d.NFeatures > 0:
		if err := checkNames(d.FeatureNames, d.NFeatures); err != nil {
			return 0, err
		}
		return d.NFeatures, nil
	case len(d.FeatureNames) > 0:
		return len(d.FeatureNames), nil
	default:
		return 0, fmt.Errorf("%s: n_features or feature_names is required", d.Type)
	}
}

var supportedExts = []string{".json", ".yaml", ".yml"}

// Resolve finds exactly <dir>/<name><ext> for a supported extension. When
// several exist the first in supportedExts order wins. Siblings such as
// <name>.bak.json are never picked.
func Resolve(dir, name string) (string, error) {
	for _, ext := range supportedExts {
		path := filepath.Join(dir, name+ext)
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", &LoadError{Path: path, Err: err}
		}
	}

	pattern := filepath.Join(dir, name+".*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", &LoadError{Path: pattern, Err: err}
	}
	for _, m := range matches {
		// <name>.<ext> with a single extension only.
		if strings.Count(strings.TrimPrefix(filepath.Base(m), name), ".") == 1 {
			return "", &LoadError{Path: m, Err: fmt.Errorf("unsupported format %q", filepath.Ext(m))}
		}
	}
	return "", &LoadError{Path: pattern, Err: fs.ErrNotExist}
}

func LoadModel(path string) (Model, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	model, err := modelFromDocument(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return model, nil
}

func LoadScaler(path string) (Scaler, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	scaler, err := scalerFromDocument(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return scaler, nil
}

func readDocument(path string) (*document, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(payload))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		err = fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if doc.Type == "" {
		return nil, &LoadError{Path: path, Err: errors.New("missing type")}
	}
	return &doc, nil
}
