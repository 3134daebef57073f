package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Artifact names used in diagnostics and the registry.
const (
	ArtifactClassifier   = "classifier"
	ArtifactScaler       = "scaler"
	ArtifactFeatureNames = "feature_names"
	ArtifactVocabulary   = "vocabulary"
	ArtifactRegressor    = "regressor"
)

var ErrArtifactMissing = errors.New("artifact file not found")

// ArtifactError names the artifact that stopped startup.
type ArtifactError struct {
	Name string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	if errors.Is(e.Err, ErrArtifactMissing) {
		return fmt.Sprintf("missing %s artifact: %s", e.Name, e.Path)
	}
	return fmt.Sprintf("load %s artifact %s: %v", e.Name, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

type ArtifactPaths struct {
	ClassifierType string
	Classifier     string
	Scaler         string
	FeatureNames   string
	Vocabulary     string
	RegressorType  string
	Regressor      string
}

// Requirements marks which optional artifacts must be present.
type Requirements struct {
	Scaler       bool
	FeatureNames bool
	Vocabulary   bool
}

// ArtifactFile describes one file read at startup.
type ArtifactFile struct {
	Name   string
	Kind   string
	Path   string
	Size   int64
	SHA256 string
}

// Artifacts is the read-only model state shared by every request.
type Artifacts struct {
	Classifier   Classifier
	Scaler       *StandardScaler
	FeatureNames []string
	Vocabulary   *Vocabulary
	Regressor    Regressor
	Files        []ArtifactFile
}

// LoadArtifacts reads every required artifact and stops at the first one that
// is missing or cannot be decoded.
func LoadArtifacts(paths ArtifactPaths, req Requirements) (*Artifacts, error) {
	a := &Artifacts{}

	steps := []struct {
		name     string
		kind     string
		path     string
		required bool
		load     func(path string) error
	}{
		{ArtifactClassifier, paths.ClassifierType, paths.Classifier, true, func(p string) (err error) {
			a.Classifier, err = LoadClassifier(paths.ClassifierType, p)
			return err
		}},
		{ArtifactScaler, "standard_scaler", paths.Scaler, req.Scaler, func(p string) (err error) {
			a.Scaler, err = LoadStandardScaler(p)
			return err
		}},
		{ArtifactFeatureNames, "feature_names", paths.FeatureNames, req.FeatureNames, func(p string) (err error) {
			a.FeatureNames, err = LoadFeatureNames(p)
			return err
		}},
		{ArtifactVocabulary, "label_vocabulary", paths.Vocabulary, req.Vocabulary, func(p string) (err error) {
			a.Vocabulary, err = LoadVocabulary(p)
			return err
		}},
		{ArtifactRegressor, paths.RegressorType, paths.Regressor, true, func(p string) (err error) {
			a.Regressor, err = LoadRegressor(paths.RegressorType, p)
			return err
		}},
	}

	for _, step := range steps {
		if !step.required {
			continue
		}
		if step.path == "" {
			return nil, &ArtifactError{Name: step.name, Path: "(not configured)", Err: ErrArtifactMissing}
		}
		file, err := describe(step.name, step.kind, step.path)
		if err != nil {
			return nil, err
		}
		if err := step.load(step.path); err != nil {
			return nil, &ArtifactError{Name: step.name, Path: step.path, Err: err}
		}
		a.Files = append(a.Files, file)
	}
	return a, nil
}

func describe(name, kind, path string) (ArtifactFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ArtifactFile{}, &ArtifactError{Name: name, Path: path, Err: ErrArtifactMissing}
		}
		return ArtifactFile{}, &ArtifactError{Name: name, Path: path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return ArtifactFile{}, &ArtifactError{Name: name, Path: path, Err: err}
	}
	return ArtifactFile{
		Name:   name,
		Kind:   kind,
		Path:   path,
		Size:   size,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
