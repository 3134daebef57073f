package features

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Row is an encoded feature row in training-time column order.
type Row struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
	// Fallbacks lists columns whose category was unknown and was coerced.
	Fallbacks []string `json:"fallbacks,omitempty"`
	// Dropped lists expanded columns that the schema does not know about.
	Dropped []string `json:"dropped,omitempty"`
}

func (r Row) Len() int {
	return len(r.Values)
}

// Clone returns a copy that shares no slices with r.
func (r Row) Clone() Row {
	return Row{
		Names:     slices.Clone(r.Names),
		Values:    slices.Clone(r.Values),
		Fallbacks: slices.Clone(r.Fallbacks),
		Dropped:   slices.Clone(r.Dropped),
	}
}

// Get returns the value of the named column.
func (r Row) Get(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return 0, false
}

// Schema is the fixed ordered list of feature names a model was trained on.
type Schema struct {
	names []string
	index map[string]int
}

func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, errors.New("feature schema is empty")
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("feature schema: empty name at position %d", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("feature schema: duplicate column %q", name)
		}
		index[name] = i
	}
	return &Schema{names: append([]string(nil), names...), index: index}, nil
}

func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Schema) Len() int {
	return len(s.names)
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Project selects the schema columns from values in schema order. Columns the
// schema expects but values lack are filled with 0; columns in values that the
// schema does not know are returned sorted as extras.
func (s *Schema) Project(values map[string]float64) (Row, []string) {
	row := Row{
		Names:  s.Names(),
		Values: make([]float64, len(s.names)),
	}
	for i, name := range s.names {
		row.Values[i] = values[name]
	}
	var extras []string
	for name := range values {
		if !s.Has(name) {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return row, extras
}
