package ml

import (
	"fmt"
)

// Model types accepted in configuration.
const (
	ModelDecisionTree = "decision_tree"
	ModelTreeEnsemble = "tree_ensemble"
)

func LoadClassifier(modelType, path string) (Classifier, error) {
	switch modelType {
	case ModelDecisionTree:
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case ModelTreeEnsemble:
		return LoadTreeEnsemble(path)
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", modelType)
	}
}

func LoadRegressor(modelType, path string) (Regressor, error) {
	switch modelType {
	case ModelTreeEnsemble:
		return LoadTreeEnsemble(path)
	default:
		return nil, fmt.Errorf("unsupported regressor type %q", modelType)
	}
}
