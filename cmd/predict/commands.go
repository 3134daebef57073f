package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"airpredict/features"
	"airpredict/ml"
	"airpredict/predict"
)

// Context is shared by every subcommand.
type Context struct {
	Pipelines *predict.Pipelines
	Artifacts []ml.ArtifactFile
	Out       io.Writer
	Location  *time.Location
}

type SatisfactionCmd struct {
	NoInput bool `help:"Skip the form and use the flags as answers."`
	ShowRow bool `help:"Print the encoded row before the result."`

	CustomerType string `help:"Customer type." enum:"Loyal Customer,Disloyal Customer" default:"Loyal Customer"`
	TravelType   string `help:"Type of travel." enum:"Business Travel,Personal Travel" default:"Business Travel"`
	Class        string `help:"Travel class." enum:"Eco,Business,Eco Plus" default:"Eco"`
	Gender       string `help:"Gender, used by the one-hot policy." enum:"Male,Female" default:"Male"`

	OnlineBoarding        int `help:"Online boarding rating (0-5)." default:"3"`
	InflightWifi          int `help:"Inflight wifi rating (0-5)." default:"3"`
	InflightEntertainment int `help:"Inflight entertainment rating (0-5)." default:"3"`
	SeatComfort           int `help:"Seat comfort rating (0-5)." default:"3"`
	OnlineBooking         int `help:"Ease of online booking rating (0-5)." default:"3"`
	LegRoom               int `help:"Leg room rating (0-5)." default:"3"`
	Cleanliness           int `help:"Cleanliness rating (0-5)." default:"3"`
}

func (c *SatisfactionCmd) input() features.SurveyInput {
	return features.SurveyInput{
		CustomerType:          c.CustomerType,
		TypeOfTravel:          c.TravelType,
		Class:                 c.Class,
		Gender:                c.Gender,
		OnlineBoarding:        c.OnlineBoarding,
		InflightWifi:          c.InflightWifi,
		InflightEntertainment: c.InflightEntertainment,
		SeatComfort:           c.SeatComfort,
		OnlineBooking:         c.OnlineBooking,
		LegRoom:               c.LegRoom,
		Cleanliness:           c.Cleanliness,
	}
}

func (c *SatisfactionCmd) Run(ctx *Context) error {
	in := c.input()
	if !c.NoInput {
		if err := newSurveyForm(&in, ctx.Pipelines.Policy).Run(); err != nil {
			return err
		}
	}

	result, row, err := ctx.Pipelines.Satisfaction.Predict(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, renderTitle("Passenger Satisfaction"))
	if c.ShowRow {
		fmt.Fprintln(ctx.Out, renderRow(row.Names, row.Values))
	}
	fmt.Fprintln(ctx.Out, renderResult(result))
	return nil
}

type PriceCmd struct {
	NoInput bool `help:"Skip the form and use the flags as answers."`
	ShowRow bool `help:"Print the encoded vector before the result."`

	Source        string `help:"Departure city." default:"Delhi"`
	Destination   string `help:"Arrival city." default:"Cochin"`
	Airline       string `help:"Airline." default:"IndiGo"`
	Stops         int    `help:"Number of stops." default:"0"`
	DepartureDate string `help:"Departure date (YYYY-MM-DD)."`
	DepartureTime string `help:"Departure time (HH:MM)." default:"08:00"`
	ArrivalDate   string `help:"Arrival date (YYYY-MM-DD), defaults to the departure date."`
	ArrivalTime   string `help:"Arrival time (HH:MM)." default:"11:00"`
}

func (c *PriceCmd) form(now time.Time) flightForm {
	f := flightForm{
		Source:        c.Source,
		Destination:   c.Destination,
		Airline:       c.Airline,
		Stops:         fmt.Sprint(c.Stops),
		DepartureDate: c.DepartureDate,
		DepartureTime: c.DepartureTime,
		ArrivalDate:   c.ArrivalDate,
		ArrivalTime:   c.ArrivalTime,
	}
	if f.DepartureDate == "" {
		f.DepartureDate = now.Format(features.DateLayout)
	}
	if f.ArrivalDate == "" {
		f.ArrivalDate = f.DepartureDate
	}
	return f
}

func (c *PriceCmd) Run(ctx *Context) error {
	f := c.form(time.Now())
	if !c.NoInput {
		if err := newFlightForm(&f).Run(); err != nil {
			return err
		}
	}

	in, err := f.input(ctx.Location)
	if err != nil {
		return err
	}
	result, vector, err := ctx.Pipelines.Price.Predict(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, renderTitle("Flight Price"))
	if c.ShowRow {
		fmt.Fprintln(ctx.Out, renderRow(vector.Names, vector.Values))
	}
	fmt.Fprintln(ctx.Out, renderResult(result))
	return nil
}

type ArtifactsCmd struct{}

func (c *ArtifactsCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Out, renderTitle(fmt.Sprintf("Model artifacts (%s policy)", ctx.Pipelines.Policy)))
	fmt.Fprintln(ctx.Out, renderArtifacts(ctx.Artifacts))
	return nil
}
