package ml

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const treeJSON = `[
  {"feature_idx": 0, "threshold": 3.5, "left_child": 1, "right_child": 2},
  {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true},
  {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 1, "is_leaf": true}
]`

func artifactDir(t *testing.T) (string, ArtifactPaths) {
	t.Helper()
	dir := t.TempDir()
	paths := ArtifactPaths{
		ClassifierType: ModelDecisionTree,
		Classifier:     writeFile(t, dir, "classifier.json", treeJSON),
		Scaler:         writeFile(t, dir, "scaler.json", `{"mean": [0, 0], "scale": [1, 1]}`),
		FeatureNames:   writeFile(t, dir, "feature_names.json", `["Class", "Cleanliness"]`),
		Vocabulary:     writeFile(t, dir, "vocabulary.json", `{"classes": ["Business", "Eco"]}`),
		RegressorType:  ModelTreeEnsemble,
		Regressor:      writeFile(t, dir, "regressor.json", forestJSON),
	}
	return dir, paths
}

func TestLoadArtifacts(t *testing.T) {
	_, paths := artifactDir(t)
	a, err := LoadArtifacts(paths, Requirements{Scaler: true, FeatureNames: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Classifier == nil || a.Regressor == nil || a.Scaler == nil {
		t.Fatalf("expected models to be loaded: %+v", a)
	}
	if len(a.FeatureNames) != 2 {
		t.Fatalf("unexpected feature names: %v", a.FeatureNames)
	}
	if a.Vocabulary != nil {
		t.Fatal("vocabulary was not required")
	}
	if len(a.Files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(a.Files))
	}
	for _, f := range a.Files {
		if len(f.SHA256) != 64 || f.Size == 0 {
			t.Fatalf("unexpected file description: %+v", f)
		}
	}
}

func TestLoadArtifactsMissingScaler(t *testing.T) {
	_, paths := artifactDir(t)
	if err := os.Remove(paths.Scaler); err != nil {
		t.Fatalf("remove: %v", err)
	}

	a, err := LoadArtifacts(paths, Requirements{Scaler: true, FeatureNames: true})
	if a != nil {
		t.Fatal("expected no artifacts on failure")
	}
	var artErr *ArtifactError
	if !errors.As(err, &artErr) {
		t.Fatalf("expected ArtifactError, got %v", err)
	}
	if artErr.Name != ArtifactScaler || !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Base(paths.Scaler)) {
		t.Fatalf("error should name the file: %v", err)
	}
}

func TestLoadArtifactsSkipsOptional(t *testing.T) {
	_, paths := artifactDir(t)
	paths.Scaler = filepath.Join(t.TempDir(), "absent.json")
	if _, err := LoadArtifacts(paths, Requirements{Vocabulary: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadArtifactsCorruptFile(t *testing.T) {
	dir, paths := artifactDir(t)
	paths.Regressor = writeFile(t, dir, "broken.json", `{"objective":`)

	_, err := LoadArtifacts(paths, Requirements{})
	var artErr *ArtifactError
	if !errors.As(err, &artErr) || artErr.Name != ArtifactRegressor {
		t.Fatalf("expected regressor ArtifactError, got %v", err)
	}
	if errors.Is(err, ErrArtifactMissing) {
		t.Fatal("corrupt file is not a missing file")
	}
}

func TestLoadArtifactsUnconfigured(t *testing.T) {
	_, paths := artifactDir(t)
	paths.Vocabulary = ""
	_, err := LoadArtifacts(paths, Requirements{Vocabulary: true})
	var artErr *ArtifactError
	if !errors.As(err, &artErr) || artErr.Name != ArtifactVocabulary {
		t.Fatalf("expected vocabulary ArtifactError, got %v", err)
	}
}
