package features

import (
	"errors"
	"fmt"
)

// LabelColumns is the column order of the label-encoded satisfaction row.
var LabelColumns = []string{
	ColOnlineBoarding,
	ColInflightWifi,
	ColTypeOfTravel,
	ColClass,
	ColEntertainment,
	ColSeatComfort,
	ColOnlineBooking,
	ColLegRoom,
	ColCleanliness,
	ColCustomerType,
}

// LabelEncodedColumns are the categorical columns replaced by vocabulary indices.
var LabelEncodedColumns = []string{ColTypeOfTravel, ColClass, ColCustomerType}

// VocabularySource supplies the trained classes for a categorical column.
type VocabularySource interface {
	ClassesFor(column string) []string
}

type LabelEncoder struct {
	vocabularies map[string][]string
}

func NewLabelEncoder(source VocabularySource) (*LabelEncoder, error) {
	if source == nil {
		return nil, errors.New("label encoder: vocabulary is required")
	}
	vocabularies := make(map[string][]string, len(LabelEncodedColumns))
	for _, column := range LabelEncodedColumns {
		classes := source.ClassesFor(column)
		if len(classes) == 0 {
			return nil, fmt.Errorf("label encoder: no classes for %q", column)
		}
		vocabularies[column] = append([]string(nil), classes...)
	}
	return &LabelEncoder{vocabularies: vocabularies}, nil
}

func (e *LabelEncoder) Policy() Policy {
	return PolicyLabel
}

func (e *LabelEncoder) Names() []string {
	return append([]string(nil), LabelColumns...)
}

func (e *LabelEncoder) Encode(in SurveyInput) (Row, error) {
	if err := in.ValidateRatings(); err != nil {
		return Row{}, err
	}

	values := in.ratingValues()
	categories := map[string]string{
		ColTypeOfTravel: in.TypeOfTravel,
		ColClass:        in.Class,
		ColCustomerType: in.CustomerType,
	}

	var fallbacks []string
	for _, column := range LabelEncodedColumns {
		index, fellBack := EncodeCategory(categories[column], e.vocabularies[column])
		if fellBack {
			fallbacks = append(fallbacks, column)
		}
		values[column] = float64(index)
	}

	row := Row{
		Names:     e.Names(),
		Values:    make([]float64, len(LabelColumns)),
		Fallbacks: fallbacks,
	}
	for i, column := range LabelColumns {
		row.Values[i] = values[column]
	}
	return row, nil
}
