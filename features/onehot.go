package features

import (
	"errors"
	"fmt"
)

// OneHotFields are expanded into indicator columns named "<field>_<category>".
var OneHotFields = []string{ColGender, ColCustomerType, ColTypeOfTravel}

// DefaultOneHotCategories lists each field's categories in the order the
// training frame saw them. The first entry is the reference category and gets
// no column of its own.
var DefaultOneHotCategories = map[string][]string{
	ColGender:       {"Female", "Male"},
	ColCustomerType: {"Disloyal Customer", "Loyal Customer"},
	ColTypeOfTravel: {"Business Travel", "Personal Travel"},
}

// ClassOrdinals maps the travel class onto its ordinal column value.
var ClassOrdinals = map[string]float64{
	"Eco":      0,
	"Eco Plus": 1,
	"Business": 2,
}

type OneHotEncoder struct {
	schema     *Schema
	categories map[string][]string
}

// NewOneHotEncoder builds an encoder projecting onto featureNames. A nil
// categories map selects DefaultOneHotCategories.
func NewOneHotEncoder(featureNames []string, categories map[string][]string) (*OneHotEncoder, error) {
	if len(featureNames) == 0 {
		return nil, errors.New("one-hot encoder: feature names are required")
	}
	schema, err := NewSchema(featureNames)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = DefaultOneHotCategories
	}
	copied := make(map[string][]string, len(OneHotFields))
	for _, field := range OneHotFields {
		cats := categories[field]
		if len(cats) == 0 {
			return nil, fmt.Errorf("one-hot encoder: no categories for %q", field)
		}
		copied[field] = append([]string(nil), cats...)
	}
	return &OneHotEncoder{schema: schema, categories: copied}, nil
}

func (e *OneHotEncoder) Policy() Policy {
	return PolicyOneHot
}

func (e *OneHotEncoder) Names() []string {
	return e.schema.Names()
}

// IndicatorColumn names the dummy column for a field value.
func IndicatorColumn(field, category string) string {
	return field + "_" + category
}

func (e *OneHotEncoder) Encode(in SurveyInput) (Row, error) {
	if err := in.ValidateRatings(); err != nil {
		return Row{}, err
	}

	values := in.ratingValues()
	answers := map[string]string{
		ColGender:       in.Gender,
		ColCustomerType: in.CustomerType,
		ColTypeOfTravel: in.TypeOfTravel,
	}

	var fallbacks []string
	for _, field := range OneHotFields {
		cats := e.categories[field]
		if _, fellBack := EncodeCategory(answers[field], cats); fellBack {
			fallbacks = append(fallbacks, field)
		}
		for _, cat := range cats[1:] {
			v := 0.0
			if answers[field] == cat {
				v = 1
			}
			values[IndicatorColumn(field, cat)] = v
		}
	}

	class, ok := ClassOrdinals[in.Class]
	if !ok {
		fallbacks = append(fallbacks, ColClass)
	}
	values[ColClass] = class

	row, extras := e.schema.Project(values)
	row.Fallbacks = fallbacks
	row.Dropped = extras
	return row, nil
}
