package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"airpredict/features"
	"airpredict/ml"
)

type PriceConfig struct {
	DurationPolicy features.DurationPolicy
	// Currency prefixes the formatted price, e.g. "Rs.".
	Currency  string
	CacheSize int
	Logger    *zap.Logger
}

// flightKey identifies a flight input by wall-clock time plus UTC offset. The
// encoder reads the wall clock for day and hour fields and the absolute
// instants for the duration, and the pair fixes both.
type flightKey struct {
	source, destination, airline string
	departure, arrival           string
	stops                        int
}

func keyOf(in features.FlightInput) flightKey {
	return flightKey{
		source:      in.Source,
		destination: in.Destination,
		airline:     in.Airline,
		departure:   in.Departure.Format(time.RFC3339Nano),
		arrival:     in.Arrival.Format(time.RFC3339Nano),
		stops:       in.Stops,
	}
}

type priceEntry struct {
	result Result
	vector features.FlightVector
}

// PricePredictor encodes a flight and runs the price regressor.
type PricePredictor struct {
	regressor ml.Regressor
	policy    features.DurationPolicy
	currency  string
	printer   *message.Printer
	cache     *lru.Cache[flightKey, priceEntry]
	logger    *zap.Logger
}

func NewPricePredictor(regressor ml.Regressor, cfg PriceConfig) (*PricePredictor, error) {
	if regressor == nil {
		return nil, errors.New("price predictor: regressor is required")
	}
	policy, err := features.ParseDurationPolicy(string(cfg.DurationPolicy))
	if err != nil {
		return nil, err
	}
	p := &PricePredictor{
		regressor: regressor,
		policy:    policy,
		currency:  cfg.Currency,
		printer:   message.NewPrinter(language.English),
		logger:    cfg.Logger,
	}
	if p.currency == "" {
		p.currency = "Rs."
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[flightKey, priceEntry](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

func (p *PricePredictor) DurationPolicy() features.DurationPolicy {
	return p.policy
}

func (p *PricePredictor) Encode(in features.FlightInput) (features.FlightVector, error) {
	return features.EncodeFlight(in, p.policy)
}

// Predict returns the regressor output rounded to two decimals. Negative
// predictions are returned as they are.
func (p *PricePredictor) Predict(ctx context.Context, in features.FlightInput) (Result, features.FlightVector, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, features.FlightVector{}, err
	}
	key := keyOf(in)
	if p.cache != nil {
		if entry, ok := p.cache.Get(key); ok {
			return entry.result, entry.vector.Clone(), nil
		}
	}

	vector, err := p.Encode(in)
	if err != nil {
		return Result{}, features.FlightVector{}, err
	}
	raw, err := p.regressor.Regress(vector.Values)
	if err != nil {
		return Result{}, features.FlightVector{}, fmt.Errorf("%w: regress: %v", ErrModel, err)
	}

	price := RoundPrice(raw)
	result := Result{
		Kind:    KindPrice,
		Price:   price,
		Message: fmt.Sprintf("You will have to pay approximately %s", p.FormatPrice(price)),
	}
	if price < 0 {
		p.logger.Warn("regressor returned a negative price", zap.Float64("price", price))
	}
	p.logger.Debug("price predicted", zap.Float64("price", price))

	if p.cache != nil {
		p.cache.Add(key, priceEntry{result: result, vector: vector.Clone()})
	}
	return result, vector, nil
}

// FormatPrice renders the price with the configured currency and grouped digits.
func (p *PricePredictor) FormatPrice(price float64) string {
	return p.currency + " " + p.printer.Sprintf("%.2f", price)
}
