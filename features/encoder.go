package features

import "fmt"

// Policy selects how categorical survey answers are encoded.
type Policy string

const (
	// PolicyLabel maps categories to indices of a trained vocabulary.
	PolicyLabel Policy = "label"
	// PolicyOneHot expands categories into reference-dropped indicator columns
	// and projects onto a recorded feature-name list.
	PolicyOneHot Policy = "onehot"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyLabel, PolicyOneHot:
		return p, nil
	default:
		return "", fmt.Errorf("unknown encoding policy %q", s)
	}
}

// SurveyEncoder turns a survey submission into the row a classifier expects.
type SurveyEncoder interface {
	Policy() Policy
	Names() []string
	Encode(in SurveyInput) (Row, error)
}

// EncodeCategory returns the position of value in vocabulary. A value the
// vocabulary does not contain falls back to the first entry and reports
// fellBack=true.
func EncodeCategory(value string, vocabulary []string) (index int, fellBack bool) {
	for i, known := range vocabulary {
		if known == value {
			return i, false
		}
	}
	return 0, true
}
