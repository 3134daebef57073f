package ml

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const forestJSON = `{
  "objective": "forest",
  "trees": [
    [
      {"feature_idx": 0, "threshold": 0.5, "left_child": 1, "right_child": 2},
      {"is_leaf": true, "value": 4000},
      {"is_leaf": true, "value": 8000}
    ],
    [{"is_leaf": true, "value": 6000}]
  ]
}`

const logisticJSON = `{
  "objective": "binary:logistic",
  "base_margin": -0.5,
  "trees": [
    [
      {"feature_idx": 1, "threshold": 3.5, "left_child": 1, "right_child": 2},
      {"is_leaf": true, "value": -1.0},
      {"is_leaf": true, "value": 1.5}
    ]
  ]
}`

func TestTreeEnsembleForest(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forest.json", forestJSON)
	model, err := LoadTreeEnsemble(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := model.Regress([]float64{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5000 {
		t.Fatalf("expected 5000, got %f", got)
	}
	got, err = model.Regress([]float64{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7000 {
		t.Fatalf("expected 7000, got %f", got)
	}
}

func TestTreeEnsembleLogistic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "xgb.json", logisticJSON)
	model, err := LoadTreeEnsemble(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := model.Regress([]float64{0, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-sigmoid(1.0)) > 1e-12 {
		t.Fatalf("unexpected probability %f", p)
	}
	label, err := model.Classify([]float64{0, 5})
	if err != nil || label != 1 {
		t.Fatalf("expected label 1, got %d (%v)", label, err)
	}
	label, err = model.Classify([]float64{0, 1})
	if err != nil || label != 0 {
		t.Fatalf("expected label 0, got %d (%v)", label, err)
	}
}

func TestTreeEnsembleValidation(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"objective": `{"objective": "multi:softmax", "trees": [[{"is_leaf": true}]]}`,
		"no_trees":  `{"objective": "forest", "trees": []}`,
		"cycle":     `{"objective": "forest", "trees": [[{"feature_idx": 0, "left_child": 0, "right_child": 0}]]}`,
	}
	for name, content := range cases {
		path := writeFile(t, dir, name+".json", content)
		if _, err := LoadTreeEnsemble(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
