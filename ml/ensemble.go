package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Ensemble objectives.
const (
	ObjectiveLogistic = "binary:logistic"
	ObjectiveSquared  = "reg:squarederror"
	ObjectiveForest   = "forest"
)

// RegressionNode is a node of a value-producing tree. Children are stored after
// their parent, left subtree first.
type RegressionNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// TreeEnsemble is a boosted or bagged set of regression trees.
//
// Boosted objectives add every tree's leaf to BaseMargin; binary:logistic then
// squashes the margin through a sigmoid. The forest objective averages the
// trees and ignores BaseMargin.
type TreeEnsemble struct {
	Objective  string             `json:"objective"`
	BaseMargin float64            `json:"base_margin"`
	Trees      [][]RegressionNode `json:"trees"`
}

func LoadTreeEnsemble(path string) (*TreeEnsemble, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ensemble TreeEnsemble
	if err := json.Unmarshal(payload, &ensemble); err != nil {
		return nil, err
	}
	if err := ensemble.validate(); err != nil {
		return nil, err
	}
	return &ensemble, nil
}

func (e *TreeEnsemble) validate() error {
	switch e.Objective {
	case ObjectiveLogistic, ObjectiveSquared, ObjectiveForest:
	default:
		return fmt.Errorf("unsupported objective %q", e.Objective)
	}
	if len(e.Trees) == 0 {
		return errors.New("ensemble has no trees")
	}
	for t, tree := range e.Trees {
		if len(tree) == 0 {
			return fmt.Errorf("tree %d has no nodes", t)
		}
		for i, node := range tree {
			if node.IsLeaf {
				continue
			}
			if node.LeftChild <= i || node.LeftChild >= len(tree) ||
				node.RightChild <= i || node.RightChild >= len(tree) {
				return fmt.Errorf("tree %d node %d: child out of range", t, i)
			}
		}
	}
	return nil
}

// Regress returns the ensemble output: the probability for binary:logistic,
// the raw sum or mean otherwise.
func (e *TreeEnsemble) Regress(features []float64) (float64, error) {
	if len(e.Trees) == 0 {
		return 0, ErrModelNotLoaded
	}
	sum := 0.0
	for _, tree := range e.Trees {
		v, err := leafValue(tree, features)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	switch e.Objective {
	case ObjectiveForest:
		return sum / float64(len(e.Trees)), nil
	case ObjectiveLogistic:
		return sigmoid(e.BaseMargin + sum), nil
	default:
		return e.BaseMargin + sum, nil
	}
}

// Classify thresholds Regress at 0.5.
func (e *TreeEnsemble) Classify(features []float64) (int, error) {
	p, err := e.Regress(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func leafValue(tree []RegressionNode, features []float64) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(tree); steps++ {
		if idx < 0 || idx >= len(tree) {
			break
		}
		node := tree[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, fmt.Errorf("%w: index %d, row has %d", ErrFeatureIndex, node.FeatureIdx, len(features))
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("invalid tree state")
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
