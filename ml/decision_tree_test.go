package ml

import (
	"errors"
	"path/filepath"
	"testing"
)

func satisfactionTree() []TreeNode {
	return []TreeNode{
		{FeatureIdx: 0, Threshold: 3.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true},
	}
}

func TestDecisionTreeClassify(t *testing.T) {
	model, err := NewDecisionTree(satisfactionTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := model.Classify([]float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	label, err = model.Classify([]float64{5, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	model, err := NewDecisionTree(satisfactionTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := &DecisionTree{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := loaded.Classify([]float64{4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeRejectsBadRows(t *testing.T) {
	model, err := NewDecisionTree(satisfactionTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.Classify(nil); !errors.Is(err, ErrFeatureIndex) {
		t.Fatalf("expected ErrFeatureIndex, got %v", err)
	}

	empty := &DecisionTree{}
	if _, err := empty.Classify([]float64{1}); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("expected ErrModelNotLoaded, got %v", err)
	}
}

func TestDecisionTreeRejectsCycles(t *testing.T) {
	nodes := []TreeNode{
		{FeatureIdx: 0, Threshold: 1, LeftChild: 0, RightChild: 1},
		{IsLeaf: true},
	}
	if _, err := NewDecisionTree(nodes); err == nil {
		t.Fatal("expected error for self-referencing node")
	}
}
