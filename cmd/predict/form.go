package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"airpredict/features"
)

func newSurveyForm(in *features.SurveyInput, policy features.Policy) *huh.Form {
	fields := []huh.Field{
		huh.NewSelect[string]().
			Title("Customer Type").
			Options(huh.NewOptions(features.CustomerTypes...)...).
			Value(&in.CustomerType),
		huh.NewSelect[string]().
			Title("Type of Travel").
			Options(huh.NewOptions(features.TravelTypes...)...).
			Value(&in.TypeOfTravel),
		huh.NewSelect[string]().
			Title("Class").
			Options(huh.NewOptions(features.Classes...)...).
			Value(&in.Class),
	}
	if policy == features.PolicyOneHot {
		fields = append(fields, huh.NewSelect[string]().
			Title("Gender").
			Options(huh.NewOptions(features.Genders...)...).
			Value(&in.Gender))
	}

	ratings := []struct {
		title string
		value *int
	}{
		{features.ColOnlineBoarding, &in.OnlineBoarding},
		{features.ColInflightWifi, &in.InflightWifi},
		{features.ColEntertainment, &in.InflightEntertainment},
		{features.ColSeatComfort, &in.SeatComfort},
		{features.ColOnlineBooking, &in.OnlineBooking},
		{features.ColLegRoom, &in.LegRoom},
		{features.ColCleanliness, &in.Cleanliness},
	}
	scale := make([]huh.Field, 0, len(ratings))
	for _, r := range ratings {
		scale = append(scale, huh.NewSelect[int]().
			Title(r.title).
			Description("0 = not applicable, 5 = excellent").
			Options(huh.NewOptions(features.RatingScale...)...).
			Value(r.value))
	}

	return huh.NewForm(
		huh.NewGroup(fields...).Title("Passenger"),
		huh.NewGroup(scale...).Title("Ratings"),
	).WithTheme(huh.ThemeDracula())
}

// flightForm holds the flight answers as typed into the form.
type flightForm struct {
	Source        string
	Destination   string
	Airline       string
	Stops         string
	DepartureDate string
	DepartureTime string
	ArrivalDate   string
	ArrivalTime   string
}

func (f flightForm) input(loc *time.Location) (features.FlightInput, error) {
	stops, err := strconv.Atoi(strings.TrimSpace(f.Stops))
	if err != nil {
		return features.FlightInput{}, fmt.Errorf("%w: stops: %v", features.ErrInvalidInput, err)
	}
	departure, err := features.CombineDateTime(f.DepartureDate, f.DepartureTime, loc)
	if err != nil {
		return features.FlightInput{}, err
	}
	arrival, err := features.CombineDateTime(f.ArrivalDate, f.ArrivalTime, loc)
	if err != nil {
		return features.FlightInput{}, err
	}
	return features.FlightInput{
		Source:      f.Source,
		Destination: f.Destination,
		Airline:     f.Airline,
		Departure:   departure,
		Arrival:     arrival,
		Stops:       stops,
	}, nil
}

func validateLayout(layout string) func(string) error {
	return func(s string) error {
		if _, err := time.Parse(layout, strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("expected format %s", layout)
		}
		return nil
	}
}

func newFlightForm(f *flightForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Source").
				Options(huh.NewOptions(features.Sources...)...).
				Value(&f.Source),
			huh.NewSelect[string]().
				Title("Destination").
				Options(huh.NewOptions(features.Destinations...)...).
				Value(&f.Destination),
			huh.NewSelect[string]().
				Title("Airline").
				Options(huh.NewOptions(features.Airlines...)...).
				Value(&f.Airline),
			huh.NewInput().
				Title("Stops").
				Value(&f.Stops).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i < 0 {
						return fmt.Errorf("stops must be zero or more")
					}
					return nil
				}),
		).Title("Route"),
		huh.NewGroup(
			huh.NewInput().
				Title("Departure date").
				Placeholder(features.DateLayout).
				Value(&f.DepartureDate).
				Validate(validateLayout(features.DateLayout)),
			huh.NewInput().
				Title("Departure time").
				Placeholder(features.ClockLayout).
				Value(&f.DepartureTime).
				Validate(validateLayout(features.ClockLayout)),
			huh.NewInput().
				Title("Arrival date").
				Placeholder(features.DateLayout).
				Value(&f.ArrivalDate).
				Validate(validateLayout(features.DateLayout)),
			huh.NewInput().
				Title("Arrival time").
				Placeholder(features.ClockLayout).
				Value(&f.ArrivalTime).
				Validate(validateLayout(features.ClockLayout)),
		).Title("Schedule"),
	).WithTheme(huh.ThemeDracula())
}
