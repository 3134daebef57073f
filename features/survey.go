package features

import (
	"errors"
	"fmt"
)

// Column names as recorded by the satisfaction training set.
const (
	ColOnlineBoarding = "Online boarding"
	ColInflightWifi   = "Inflight wifi service"
	ColTypeOfTravel   = "Type of Travel"
	ColClass          = "Class"
	ColGender         = "Gender"
	ColEntertainment  = "Inflight entertainment"
	ColSeatComfort    = "Seat comfort"
	ColOnlineBooking  = "Ease of Online booking"
	ColLegRoom        = "Leg room service"
	ColCleanliness    = "Cleanliness"
	ColCustomerType   = "Customer Type"
)

const (
	MinRating = 0
	MaxRating = 5
)

// Choices offered by the survey form.
var (
	CustomerTypes = []string{"Disloyal Customer", "Loyal Customer"}
	TravelTypes   = []string{"Personal Travel", "Business Travel"}
	Classes       = []string{"Eco", "Business", "Eco Plus"}
	Genders       = []string{"Male", "Female"}
	RatingScale   = []int{0, 1, 2, 3, 4, 5}
)

var (
	// ErrInvalidInput wraps every error caused by the submitted answers rather than the models.
	ErrInvalidInput     = errors.New("invalid input")
	ErrRatingOutOfRange = fmt.Errorf("%w: rating out of range", ErrInvalidInput)
)

// SurveyInput holds one passenger survey submission.
type SurveyInput struct {
	CustomerType string `json:"customer_type"`
	TypeOfTravel string `json:"type_of_travel"`
	Class        string `json:"class"`
	Gender       string `json:"gender,omitempty"`

	OnlineBoarding        int `json:"online_boarding"`
	InflightWifi          int `json:"inflight_wifi"`
	InflightEntertainment int `json:"inflight_entertainment"`
	SeatComfort           int `json:"seat_comfort"`
	OnlineBooking         int `json:"online_booking"`
	LegRoom               int `json:"leg_room"`
	Cleanliness           int `json:"cleanliness"`
}

// Rating is a named satisfaction score.
type Rating struct {
	Column string
	Value  int
}

// Ratings returns the seven scores in form order.
func (s SurveyInput) Ratings() []Rating {
	return []Rating{
		{ColOnlineBoarding, s.OnlineBoarding},
		{ColInflightWifi, s.InflightWifi},
		{ColEntertainment, s.InflightEntertainment},
		{ColSeatComfort, s.SeatComfort},
		{ColOnlineBooking, s.OnlineBooking},
		{ColLegRoom, s.LegRoom},
		{ColCleanliness, s.Cleanliness},
	}
}

// ValidateRatings checks every score lies on the 0-5 scale.
func (s SurveyInput) ValidateRatings() error {
	for _, r := range s.Ratings() {
		if r.Value < MinRating || r.Value > MaxRating {
			return fmt.Errorf("%w: %s=%d", ErrRatingOutOfRange, r.Column, r.Value)
		}
	}
	return nil
}

func (s SurveyInput) ratingValues() map[string]float64 {
	values := make(map[string]float64, 7)
	for _, r := range s.Ratings() {
		values[r.Column] = float64(r.Value)
	}
	return values
}
