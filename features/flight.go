package features

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Fixed category lists the price regressor was trained with.
var (
	Sources      = []string{"Chennai", "Delhi", "Kolkata", "Mumbai"}
	Destinations = []string{"Cochin", "Delhi", "Hyderabad", "Kolkata"}
	Airlines     = []string{
		"Air India",
		"GoAir",
		"IndiGo",
		"Jet Airways",
		"Jet Airways Business",
		"Multiple carriers",
		"Multiple carriers Premium economy",
		"SpiceJet",
		"Trujet",
		"Vistara",
		"Vistara Premium economy",
	}
)

// JourneyColumns is the numeric prefix of the flight vector.
var JourneyColumns = []string{
	"Total Stops",
	"Journey Day",
	"Journey Month",
	"Departure Hour",
	"Departure Minute",
	"Arrival Hour",
	"Arrival Minute",
	"Duration Hours",
	"Duration Minutes",
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrUnknownCategory  = fmt.Errorf("%w: unknown category", ErrInvalidInput)
	ErrNegativeStops    = fmt.Errorf("%w: stops must be zero or more", ErrInvalidInput)
	ErrNegativeDuration = fmt.Errorf("%w: arrival is before departure", ErrInvalidInput)
	ErrMissingTime      = fmt.Errorf("%w: departure and arrival are required", ErrInvalidInput)
)

// DurationPolicy decides what happens when arrival precedes departure.
type DurationPolicy string

const (
	// DurationPassthrough keeps the raw floor-divided span, negative hours included.
	DurationPassthrough DurationPolicy = "passthrough"
	// DurationClamp turns negative spans into zero.
	DurationClamp DurationPolicy = "clamp"
	// DurationReject refuses negative spans and unset times.
	DurationReject DurationPolicy = "reject"
)

func ParseDurationPolicy(s string) (DurationPolicy, error) {
	switch p := DurationPolicy(s); p {
	case DurationPassthrough, DurationClamp, DurationReject:
		return p, nil
	case "":
		return DurationPassthrough, nil
	default:
		return "", fmt.Errorf("unknown duration policy %q", s)
	}
}

// FlightInput holds one flight price submission.
type FlightInput struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Airline     string    `json:"airline"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Stops       int       `json:"stops"`
}

// FlightVector is the encoded regressor input.
type FlightVector struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Clone returns a copy that shares no slices with v.
func (v FlightVector) Clone() FlightVector {
	return FlightVector{Names: slices.Clone(v.Names), Values: slices.Clone(v.Values)}
}

// FlightColumns returns every column name of the flight vector in order.
func FlightColumns() []string {
	names := make([]string, 0, len(JourneyColumns)+len(Airlines)+len(Sources)+len(Destinations))
	names = append(names, JourneyColumns...)
	for _, a := range Airlines {
		names = append(names, "Airline_"+a)
	}
	for _, s := range Sources {
		names = append(names, "Source_"+s)
	}
	for _, d := range Destinations {
		names = append(names, "Destination_"+d)
	}
	return names
}

// CombineDateTime joins a "2006-01-02" date with a "15:04" clock in loc. A nil
// loc reads the pair as naive wall-clock time (UTC), so the span between two
// pairs never shifts across daylight saving changes.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return t, nil
}

// FlightDuration splits arrival-departure into whole hours and minutes using
// floor division, so a negative span keeps non-negative minutes.
func FlightDuration(departure, arrival time.Time) (hours, minutes int) {
	seconds := int64(arrival.Sub(departure) / time.Second)
	hours = int(floorDiv(seconds, 3600))
	minutes = int(floorMod(seconds, 3600) / 60)
	return hours, minutes
}

// EncodeFlight builds the regressor vector: journey prefix followed by the
// airline, source and destination indicator blocks.
func EncodeFlight(in FlightInput, policy DurationPolicy) (FlightVector, error) {
	if in.Stops < 0 {
		return FlightVector{}, fmt.Errorf("%w: %d", ErrNegativeStops, in.Stops)
	}
	if policy == DurationReject && (in.Departure.IsZero() || in.Arrival.IsZero()) {
		return FlightVector{}, ErrMissingTime
	}

	airline, err := oneHot("airline", in.Airline, Airlines)
	if err != nil {
		return FlightVector{}, err
	}
	source, err := oneHot("source", in.Source, Sources)
	if err != nil {
		return FlightVector{}, err
	}
	destination, err := oneHot("destination", in.Destination, Destinations)
	if err != nil {
		return FlightVector{}, err
	}

	hours, minutes := FlightDuration(in.Departure, in.Arrival)
	if in.Arrival.Before(in.Departure) {
		switch policy {
		case DurationReject:
			return FlightVector{}, ErrNegativeDuration
		case DurationClamp:
			hours, minutes = 0, 0
		}
	}

	values := make([]float64, 0, len(JourneyColumns)+len(airline)+len(source)+len(destination))
	values = append(values,
		float64(in.Stops),
		float64(in.Departure.Day()),
		float64(in.Departure.Month()),
		float64(in.Departure.Hour()),
		float64(in.Departure.Minute()),
		float64(in.Arrival.Hour()),
		float64(in.Arrival.Minute()),
		float64(hours),
		float64(minutes),
	)
	values = append(values, airline...)
	values = append(values, source...)
	values = append(values, destination...)

	return FlightVector{Names: FlightColumns(), Values: values}, nil
}

func oneHot(field, value string, categories []string) ([]float64, error) {
	block := make([]float64, len(categories))
	index, fellBack := EncodeCategory(value, categories)
	if fellBack {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownCategory, field, value)
	}
	block[index] = 1
	return block, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
