package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// Vocabulary holds the classes a label encoder was fitted on. Classes is shared
// by every column; Columns overrides it per column.
type Vocabulary struct {
	Classes []string            `json:"classes,omitempty"`
	Columns map[string][]string `json:"columns,omitempty"`
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vocab Vocabulary
	if err := json.Unmarshal(payload, &vocab); err != nil {
		return nil, err
	}
	if len(vocab.Classes) == 0 && len(vocab.Columns) == 0 {
		return nil, errors.New("vocabulary has no classes")
	}
	return &vocab, nil
}

func (v *Vocabulary) ClassesFor(column string) []string {
	if classes, ok := v.Columns[column]; ok && len(classes) > 0 {
		return classes
	}
	return v.Classes
}

// LoadFeatureNames reads the ordered training-time column list.
func LoadFeatureNames(path string) ([]string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("feature name list is empty")
	}
	return names, nil
}
