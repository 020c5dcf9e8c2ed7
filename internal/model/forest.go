package model

import (
	"errors"
	"fmt"
)

// Kind identifies the exported classifier family
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindDecisionTree Kind = "decision_tree"
)

// leafChild marks a node without children
const leafChild = -1

// Node is one node of an exported decision tree. Internal nodes send
// x[Feature] <= Threshold to Left and everything else to Right. Leaves carry
// the per-class sample weights in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

func (n Node) isLeaf() bool {
	return n.Left == leafChild && n.Right == leafChild
}

// Tree is a flat array of nodes rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Classifier is a tree ensemble exported from training. A decision tree is
// an ensemble of one.
type Classifier struct {
	Kind       Kind   `json:"kind"`
	NFeatures  int    `json:"n_features"`
	Classes    []int  `json:"classes"`
	Estimators []Tree `json:"estimators"`
}

func (c *Classifier) validate() error {
	switch c.Kind {
	case KindRandomForest, KindDecisionTree:
	default:
		return fmt.Errorf("unknown classifier kind %q", c.Kind)
	}
	if c.NFeatures <= 0 {
		return errors.New("n_features must be positive")
	}
	if len(c.Classes) < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", len(c.Classes))
	}
	if len(c.Estimators) == 0 {
		return errors.New("no estimators")
	}
	if c.Kind == KindDecisionTree && len(c.Estimators) != 1 {
		return fmt.Errorf("decision_tree must have exactly 1 estimator, got %d", len(c.Estimators))
	}
	for ti, t := range c.Estimators {
		if err := t.validate(c.NFeatures, len(c.Classes)); err != nil {
			return fmt.Errorf("estimator %d: %w", ti, err)
		}
	}
	return nil
}

func (t Tree) validate(nFeatures, nClasses int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if len(n.Value) != nClasses {
				return fmt.Errorf("leaf %d has %d class weights, want %d", i, len(n.Value), nClasses)
			}
			var sum float64
			for _, w := range n.Value {
				if w < 0 {
					return fmt.Errorf("leaf %d has a negative class weight", i)
				}
				sum += w
			}
			if sum == 0 {
				return fmt.Errorf("leaf %d has no weight", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d, have %d", i, n.Feature, nFeatures)
		}
		// children always come after their parent, so the walk terminates
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has out-of-range children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t Tree) leaf(x []float64) Node {
	n := t.Nodes[0]
	for !n.isLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n
}

// PredictProba returns the class probabilities for x, ordered like Classes.
// Each tree contributes its normalized leaf weights; the ensemble averages them.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	if len(x) != c.NFeatures {
		return nil, fmt.Errorf("model: got %d features, want %d", len(x), c.NFeatures)
	}
	proba := make([]float64, len(c.Classes))
	for _, t := range c.Estimators {
		leaf := t.leaf(x)
		var sum float64
		for _, w := range leaf.Value {
			sum += w
		}
		for k, w := range leaf.Value {
			proba[k] += w / sum
		}
	}
	n := float64(len(c.Estimators))
	for k := range proba {
		proba[k] /= n
	}
	return proba, nil
}

// PositiveIndex is the position of class 1 in Classes, or the last class if absent
func (c *Classifier) PositiveIndex() int {
	for i, cl := range c.Classes {
		if cl == 1 {
			return i
		}
	}
	return len(c.Classes) - 1
}
