package predict

import (
	"fmt"

	"go.uber.org/zap"

	"airpredict/config"
	"airpredict/features"
	"airpredict/ml"
)

// RequiredArtifacts lists the optional artifacts a policy cannot run without.
func RequiredArtifacts(policy features.Policy) ml.Requirements {
	switch policy {
	case features.PolicyOneHot:
		return ml.Requirements{Scaler: true, FeatureNames: true}
	default:
		return ml.Requirements{Vocabulary: true}
	}
}

// NewSurveyEncoder builds the encoder strategy for policy from loaded artifacts.
func NewSurveyEncoder(policy features.Policy, a *ml.Artifacts, categories map[string][]string) (features.SurveyEncoder, error) {
	switch policy {
	case features.PolicyLabel:
		if a.Vocabulary == nil {
			return nil, fmt.Errorf("%s policy needs the %s artifact", policy, ml.ArtifactVocabulary)
		}
		return features.NewLabelEncoder(a.Vocabulary)
	case features.PolicyOneHot:
		return features.NewOneHotEncoder(a.FeatureNames, categories)
	default:
		return nil, fmt.Errorf("unknown encoding policy %q", policy)
	}
}

// Pipelines holds both predictors built from one set of artifacts.
type Pipelines struct {
	Policy       features.Policy
	Satisfaction *SatisfactionPredictor
	Price        *PricePredictor
}

func NewPipelines(models config.Models, a *ml.Artifacts, logger *zap.Logger) (*Pipelines, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := models.EncodingPolicy()

	encoder, err := NewSurveyEncoder(policy, a, models.Categories)
	if err != nil {
		return nil, err
	}
	satCfg := SatisfactionConfig{
		CacheSize: models.CacheSize,
		Logger:    logger.Named("satisfaction"),
	}
	if policy == features.PolicyOneHot {
		satCfg.Scaler = a.Scaler
	}
	satisfaction, err := NewSatisfactionPredictor(encoder, a.Classifier, satCfg)
	if err != nil {
		return nil, err
	}

	price, err := NewPricePredictor(a.Regressor, PriceConfig{
		DurationPolicy: models.Duration(),
		Currency:       models.Currency,
		CacheSize:      models.CacheSize,
		Logger:         logger.Named("price"),
	})
	if err != nil {
		return nil, err
	}

	return &Pipelines{Policy: policy, Satisfaction: satisfaction, Price: price}, nil
}

// Bootstrap loads the artifacts the configured policy needs and builds both
// pipelines. Any artifact error is returned as is so callers can name the file.
func Bootstrap(models config.Models, logger *zap.Logger) (*Pipelines, *ml.Artifacts, error) {
	artifacts, err := ml.LoadArtifacts(models.ArtifactPaths(), RequiredArtifacts(models.EncodingPolicy()))
	if err != nil {
		return nil, nil, err
	}
	pipelines, err := NewPipelines(models, artifacts, logger)
	if err != nil {
		return nil, nil, err
	}
	return pipelines, artifacts, nil
}
