package http

import (
	"fmt"
	"strings"
	"time"

	"airpredict/features"
)

// PriceRequest is the flight form as submitted over JSON. Departure and
// arrival are RFC3339 timestamps, or date and clock pairs like the form's
// separate date and time inputs.
type PriceRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Airline     string `json:"airline"`
	Stops       int    `json:"stops"`

	Departure string `json:"departure,omitempty"`
	Arrival   string `json:"arrival,omitempty"`

	DepartureDate string `json:"departure_date,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalDate   string `json:"arrival_date,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
}

// FlightInput resolves the request into encoder input. Pairs are read as
// wall-clock time in loc.
func (r PriceRequest) FlightInput(loc *time.Location) (features.FlightInput, error) {
	departure, err := parseMoment("departure", r.Departure, r.DepartureDate, r.DepartureTime, loc)
	if err != nil {
		return features.FlightInput{}, err
	}
	arrival, err := parseMoment("arrival", r.Arrival, r.ArrivalDate, r.ArrivalTime, loc)
	if err != nil {
		return features.FlightInput{}, err
	}
	return features.FlightInput{
		Source:      r.Source,
		Destination: r.Destination,
		Airline:     r.Airline,
		Departure:   departure,
		Arrival:     arrival,
		Stops:       r.Stops,
	}, nil
}

func parseMoment(field, stamp, date, clock string, loc *time.Location) (time.Time, error) {
	if stamp = strings.TrimSpace(stamp); stamp != "" {
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", features.ErrInvalidInput, field, err)
		}
		return t, nil
	}
	t, err := features.CombineDateTime(date, clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}
