package artifact

import (
	"errors"
	"fmt"
	"math"
)

// Model is a fitted binary classifier.
type Model interface {
	Predict(features []float64) (int, error)
	// PredictProba returns the probability of the positive class.
	PredictProba(features []float64) (float64, error)
	NumFeatures() int
	FeatureNames() []string
}

type LogisticRegression struct {
	Coef      []float64
	Intercept float64
	Names     []string
}

func (m *LogisticRegression) decision(features []float64) (float64, error) {
	if len(features) != len(m.Coef) {
		return 0, shapeError("logistic regression", len(m.Coef), len(features))
	}
	z := m.Intercept
	for i, v := range features {
		z += m.Coef[i] * v
	}
	return z, nil
}

func (m *LogisticRegression) Predict(features []float64) (int, error) {
	z, err := m.decision(features)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

func (m *LogisticRegression) PredictProba(features []float64) (float64, error) {
	z, err := m.decision(features)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LogisticRegression) NumFeatures() int       { return len(m.Coef) }
func (m *LogisticRegression) FeatureNames() []string { return m.Names }

// TreeNode is one entry of a flattened decision tree. Samples go left when
// the feature value is <= Threshold.
type TreeNode struct {
	FeatureIdx  int     `json:"feature_idx" yaml:"feature_idx"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	LeftChild   int     `json:"left_child" yaml:"left_child"`
	RightChild  int     `json:"right_child" yaml:"right_child"`
	IsLeaf      bool    `json:"is_leaf" yaml:"is_leaf"`
	Probability float64 `json:"probability" yaml:"probability"`
}

type DecisionTree struct {
	Nodes     []TreeNode
	NFeatures int
	Names     []string
}

func (dt *DecisionTree) leafProbability(features []float64) (float64, error) {
	if len(features) != dt.NFeatures {
		return 0, shapeError("decision tree", dt.NFeatures, len(features))
	}
	return walkTree(dt.Nodes, features), nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	p, err := dt.leafProbability(features)
	if err != nil {
		return 0, err
	}
	return labelFor(p), nil
}

func (dt *DecisionTree) PredictProba(features []float64) (float64, error) {
	return dt.leafProbability(features)
}

func (dt *DecisionTree) NumFeatures() int       { return dt.NFeatures }
func (dt *DecisionTree) FeatureNames() []string { return dt.Names }

// RandomForest averages the positive-class probability of its trees.
type RandomForest struct {
	Trees     [][]TreeNode
	NFeatures int
	Names     []string
}

func (rf *RandomForest) meanProbability(features []float64) (float64, error) {
	if len(features) != rf.NFeatures {
		return 0, shapeError("random forest", rf.NFeatures, len(features))
	}
	var sum float64
	for _, nodes := range rf.Trees {
		sum += walkTree(nodes, features)
	}
	return sum / float64(len(rf.Trees)), nil
}

func (rf *RandomForest) Predict(features []float64) (int, error) {
	p, err := rf.meanProbability(features)
	if err != nil {
		return 0, err
	}
	return labelFor(p), nil
}

func (rf *RandomForest) PredictProba(features []float64) (float64, error) {
	return rf.meanProbability(features)
}

func (rf *RandomForest) NumFeatures() int       { return rf.NFeatures }
func (rf *RandomForest) FeatureNames() []string { return rf.Names }

// walkTree assumes nodes passed validateTree.
func walkTree(nodes []TreeNode, features []float64) float64 {
	idx := 0
	for {
		node := nodes[idx]
		if node.IsLeaf {
			return node.Probability
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// Ties resolve to the negative class.
func labelFor(p float64) int {
	if p > 0.5 {
		return 1
	}
	return 0
}

func validateTree(nodes []TreeNode, nFeatures int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if !(node.Probability >= 0 && node.Probability <= 1) {
				return fmt.Errorf("node %d: probability %v outside [0,1]", i, node.Probability)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if math.IsNaN(node.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}

func modelFromDocument(doc *document) (Model, error) {
	switch doc.Type {
	case "logistic_regression":
		if len(doc.Coef) == 0 {
			return nil, errors.New("logistic regression: empty coef")
		}
		if err := checkNames(doc.FeatureNames, len(doc.Coef)); err != nil {
			return nil, err
		}
		if err := checkFinite("logistic regression coef", append([]float64{doc.Intercept}, doc.Coef...)); err != nil {
			return nil, err
		}
		return &LogisticRegression{Coef: doc.Coef, Intercept: doc.Intercept, Names: doc.FeatureNames}, nil
	case "decision_tree":
		n, err := doc.featureCount()
		if err != nil {
			return nil, err
		}
		if err := validateTree(doc.Nodes, n); err != nil {
			return nil, fmt.Errorf("decision tree: %w", err)
		}
		return &DecisionTree{Nodes: doc.Nodes, NFeatures: n, Names: doc.FeatureNames}, nil
	case "random_forest":
		n, err := doc.featureCount()
		if err != nil {
			return nil, err
		}
		if len(doc.Trees) == 0 {
			return nil, errors.New("random forest: no trees")
		}
		for i, nodes := range doc.Trees {
			if err := validateTree(nodes, n); err != nil {
				return nil, fmt.Errorf("random forest tree %d: %w", i, err)
			}
		}
		return &RandomForest{Trees: doc.Trees, NFeatures: n, Names: doc.FeatureNames}, nil
	default:
		return nil, fmt.Errorf("model %q: %w", doc.Type, ErrUnknownType)
	}
}
