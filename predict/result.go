// Package predict runs encoded rows through the loaded models and turns their
// raw output into user-facing results.
package predict

import (
	"errors"
	"math"

	"airpredict/features"
)

type Kind string

const (
	KindSatisfaction Kind = "satisfaction"
	KindPrice        Kind = "price"
)

// ErrModel wraps failures raised by a model rather than by the input.
var ErrModel = errors.New("model error")

// Result is the outcome of one pipeline run. Label and Satisfied are set for
// satisfaction results, Price for price results.
type Result struct {
	Kind      Kind    `json:"kind"`
	Label     int     `json:"label"`
	Satisfied bool    `json:"satisfied"`
	Price     float64 `json:"price"`
	Message   string  `json:"message"`
}

// Messages are the texts shown for each satisfaction class.
type Messages struct {
	Satisfied    string
	Dissatisfied string
}

var (
	LabelPolicyMessages = Messages{
		Satisfied:    "The passenger was satisfied with their flight!",
		Dissatisfied: "The passenger is neutral or dissatisfied with their flight!",
	}
	OneHotPolicyMessages = Messages{
		Satisfied:    "The passenger is satisfied.",
		Dissatisfied: "The passenger is not satisfied.",
	}
)

func MessagesFor(policy features.Policy) Messages {
	if policy == features.PolicyOneHot {
		return OneHotPolicyMessages
	}
	return LabelPolicyMessages
}

// RoundPrice rounds to two decimals with exact halves going to the even
// neighbour, so 0.125 becomes 0.12.
func RoundPrice(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
