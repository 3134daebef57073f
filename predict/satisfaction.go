package predict

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"airpredict/features"
	"airpredict/ml"
)

type SatisfactionConfig struct {
	// Scaler standardises the row before classification when set.
	Scaler *ml.StandardScaler
	// Messages defaults to MessagesFor the encoder's policy.
	Messages  Messages
	CacheSize int
	Logger    *zap.Logger
}

type satisfactionEntry struct {
	result Result
	row    features.Row
}

// SatisfactionPredictor encodes a survey, optionally scales it and classifies it.
type SatisfactionPredictor struct {
	encoder    features.SurveyEncoder
	classifier ml.Classifier
	scaler     *ml.StandardScaler
	messages   Messages
	cache      *lru.Cache[features.SurveyInput, satisfactionEntry]
	logger     *zap.Logger
}

func NewSatisfactionPredictor(encoder features.SurveyEncoder, classifier ml.Classifier, cfg SatisfactionConfig) (*SatisfactionPredictor, error) {
	if encoder == nil {
		return nil, errors.New("satisfaction predictor: encoder is required")
	}
	if classifier == nil {
		return nil, errors.New("satisfaction predictor: classifier is required")
	}
	if cfg.Scaler != nil {
		if err := cfg.Scaler.CheckColumns(encoder.Names()); err != nil {
			return nil, fmt.Errorf("satisfaction predictor: %w", err)
		}
	}

	p := &SatisfactionPredictor{
		encoder:    encoder,
		classifier: classifier,
		scaler:     cfg.Scaler,
		messages:   cfg.Messages,
		logger:     cfg.Logger,
	}
	if p.messages == (Messages{}) {
		p.messages = MessagesFor(encoder.Policy())
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[features.SurveyInput, satisfactionEntry](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

func (p *SatisfactionPredictor) Policy() features.Policy {
	return p.encoder.Policy()
}

// Encode builds the feature row without invoking the model.
func (p *SatisfactionPredictor) Encode(in features.SurveyInput) (features.Row, error) {
	row, err := p.encoder.Encode(in)
	if err != nil {
		return features.Row{}, err
	}
	p.warnCoerced(row)
	return row, nil
}

func (p *SatisfactionPredictor) warnCoerced(row features.Row) {
	if len(row.Fallbacks) > 0 {
		p.logger.Warn("unknown category coerced",
			zap.String("policy", string(p.encoder.Policy())),
			zap.Strings("columns", row.Fallbacks))
	}
	if len(row.Dropped) > 0 {
		p.logger.Warn("expanded columns missing from feature schema",
			zap.Strings("columns", row.Dropped))
	}
}

// Predict classifies one survey. Class 0 is dissatisfied, any other class is
// satisfied.
func (p *SatisfactionPredictor) Predict(ctx context.Context, in features.SurveyInput) (Result, features.Row, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, features.Row{}, err
	}
	if p.cache != nil {
		if entry, ok := p.cache.Get(in); ok {
			p.warnCoerced(entry.row)
			return entry.result, entry.row.Clone(), nil
		}
	}

	row, err := p.Encode(in)
	if err != nil {
		return Result{}, features.Row{}, err
	}

	input := row.Values
	if p.scaler != nil {
		input, err = p.scaler.Transform(input)
		if err != nil {
			return Result{}, features.Row{}, fmt.Errorf("%w: scale: %v", ErrModel, err)
		}
	}

	label, err := p.classifier.Classify(input)
	if err != nil {
		return Result{}, features.Row{}, fmt.Errorf("%w: classify: %v", ErrModel, err)
	}

	result := Result{Kind: KindSatisfaction, Label: label, Satisfied: label != 0}
	if result.Satisfied {
		result.Message = p.messages.Satisfied
	} else {
		result.Message = p.messages.Dissatisfied
	}

	p.logger.Debug("satisfaction predicted",
		zap.String("policy", string(p.encoder.Policy())),
		zap.Int("label", label))

	if p.cache != nil {
		p.cache.Add(in, satisfactionEntry{result: result, row: row.Clone()})
	}
	return result, row, nil
}
