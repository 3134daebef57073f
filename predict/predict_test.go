package predict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"airpredict/config"
	"airpredict/features"
	"airpredict/ml"
)

type fakeClassifier struct {
	label int
	err   error
	calls int
	last  []float64
}

func (f *fakeClassifier) Classify(row []float64) (int, error) {
	f.calls++
	f.last = append([]float64(nil), row...)
	return f.label, f.err
}

type fakeRegressor struct {
	value float64
	err   error
	calls int
}

func (f *fakeRegressor) Regress(row []float64) (float64, error) {
	f.calls++
	return f.value, f.err
}

var vocabulary = &ml.Vocabulary{Columns: map[string][]string{
	features.ColTypeOfTravel: {"Business Travel", "Personal Travel"},
	features.ColClass:        {"Business", "Eco", "Eco Plus"},
	features.ColCustomerType: {"Disloyal Customer", "Loyal Customer"},
}}

var featureNames = []string{
	"Gender_Male",
	"Customer Type_Loyal Customer",
	"Type of Travel_Personal Travel",
	features.ColClass,
	features.ColInflightWifi,
	features.ColOnlineBooking,
	features.ColOnlineBoarding,
	features.ColSeatComfort,
	features.ColEntertainment,
	features.ColLegRoom,
	features.ColCleanliness,
}

func allFives() features.SurveyInput {
	return features.SurveyInput{
		CustomerType:          "Loyal Customer",
		TypeOfTravel:          "Business Travel",
		Class:                 "Business",
		Gender:                "Male",
		OnlineBoarding:        5,
		InflightWifi:          5,
		InflightEntertainment: 5,
		SeatComfort:           5,
		OnlineBooking:         5,
		LegRoom:               5,
		Cleanliness:           5,
	}
}

func labelPredictor(t *testing.T, clf ml.Classifier, cacheSize int) *SatisfactionPredictor {
	t.Helper()
	enc, err := features.NewLabelEncoder(vocabulary)
	require.NoError(t, err)
	p, err := NewSatisfactionPredictor(enc, clf, SatisfactionConfig{CacheSize: cacheSize})
	require.NoError(t, err)
	return p
}

func TestSatisfiedMessageLabelPolicy(t *testing.T) {
	clf := &fakeClassifier{label: 1}
	p := labelPredictor(t, clf, 0)

	result, row, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)

	assert.Equal(t, "The passenger was satisfied with their flight!", result.Message)
	assert.True(t, result.Satisfied)
	assert.Equal(t, KindSatisfaction, result.Kind)
	assert.Equal(t, row.Values, clf.last)
	assert.Equal(t, []float64{5, 5, 0, 0, 5, 5, 5, 5, 5, 1}, row.Values)
}

func TestDissatisfiedMessage(t *testing.T) {
	p := labelPredictor(t, &fakeClassifier{label: 0}, 0)
	result, _, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)
	assert.False(t, result.Satisfied)
	assert.Equal(t, LabelPolicyMessages.Dissatisfied, result.Message)
}

func TestAnyNonZeroClassIsSatisfied(t *testing.T) {
	p := labelPredictor(t, &fakeClassifier{label: 2}, 0)
	result, _, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)
	assert.True(t, result.Satisfied)
}

func TestOneHotPolicyScalesBeforeClassifying(t *testing.T) {
	enc, err := features.NewOneHotEncoder(featureNames, nil)
	require.NoError(t, err)

	mean := make([]float64, len(featureNames))
	scale := make([]float64, len(featureNames))
	for i := range scale {
		mean[i] = 1
		scale[i] = 2
	}
	scaler := &ml.StandardScaler{Mean: mean, Scale: scale, FeatureNames: featureNames}
	clf := &fakeClassifier{label: 0}

	p, err := NewSatisfactionPredictor(enc, clf, SatisfactionConfig{Scaler: scaler})
	require.NoError(t, err)

	result, row, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)
	assert.Equal(t, OneHotPolicyMessages.Dissatisfied, result.Message)

	require.Len(t, clf.last, len(featureNames))
	for i, v := range row.Values {
		assert.InDelta(t, (v-1)/2, clf.last[i], 1e-12, featureNames[i])
	}
}

func TestScalerColumnMismatch(t *testing.T) {
	enc, err := features.NewOneHotEncoder(featureNames, nil)
	require.NoError(t, err)
	scaler := &ml.StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}

	_, err = NewSatisfactionPredictor(enc, &fakeClassifier{}, SatisfactionConfig{Scaler: scaler})
	require.Error(t, err)
}

func TestSatisfactionCache(t *testing.T) {
	clf := &fakeClassifier{label: 1}
	p := labelPredictor(t, clf, 8)

	first, _, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)
	second, _, err := p.Predict(context.Background(), allFives())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, clf.calls)
}

func TestSatisfactionCacheHitWarnsAndCopies(t *testing.T) {
	enc, err := features.NewLabelEncoder(vocabulary)
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	clf := &fakeClassifier{label: 1}
	p, err := NewSatisfactionPredictor(enc, clf, SatisfactionConfig{CacheSize: 8, Logger: zap.New(core)})
	require.NoError(t, err)

	in := allFives()
	in.Class = "First"
	_, row, err := p.Predict(context.Background(), in)
	require.NoError(t, err)
	want := append([]float64(nil), row.Values...)
	row.Values[0] = 99

	_, again, err := p.Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, want, again.Values)
	assert.Equal(t, 1, clf.calls)
	assert.Equal(t, 2, logs.FilterMessage("unknown category coerced").Len())
}

func TestSatisfactionErrors(t *testing.T) {
	p := labelPredictor(t, &fakeClassifier{err: errors.New("boom")}, 0)
	_, _, err := p.Predict(context.Background(), allFives())
	assert.True(t, errors.Is(err, ErrModel))

	bad := allFives()
	bad.LegRoom = -1
	_, _, err = p.Predict(context.Background(), bad)
	assert.True(t, errors.Is(err, features.ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrModel))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.Predict(ctx, allFives())
	assert.True(t, errors.Is(err, context.Canceled))
}

func flightScenario() features.FlightInput {
	return features.FlightInput{
		Source:      "Delhi",
		Destination: "Cochin",
		Airline:     "IndiGo",
		Stops:       1,
		Departure:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Arrival:     time.Date(2024, 3, 1, 11, 15, 0, 0, time.UTC),
	}
}

func TestPricePredict(t *testing.T) {
	reg := &fakeRegressor{value: 812.456}
	p, err := NewPricePredictor(reg, PriceConfig{CacheSize: 4})
	require.NoError(t, err)

	result, vector, err := p.Predict(context.Background(), flightScenario())
	require.NoError(t, err)

	assert.Equal(t, KindPrice, result.Kind)
	assert.Equal(t, 812.46, result.Price)
	assert.Equal(t, "You will have to pay approximately Rs. 812.46", result.Message)
	assert.Equal(t, []float64{1, 1, 3, 8, 0, 11, 15, 3, 15}, vector.Values[:9])

	_, _, err = p.Predict(context.Background(), flightScenario())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.calls)
}

// minutesRegressor answers with the encoded duration in minutes.
type minutesRegressor struct {
	calls int
}

func (m *minutesRegressor) Regress(row []float64) (float64, error) {
	m.calls++
	return row[7]*60 + row[8], nil
}

func TestPriceCacheKeepsUTCOffset(t *testing.T) {
	reg := &minutesRegressor{}
	p, err := NewPricePredictor(reg, PriceConfig{CacheSize: 8})
	require.NoError(t, err)

	ist := time.FixedZone("IST", 5*3600+30*60)
	a := flightScenario()
	a.Departure = time.Date(2024, 3, 1, 10, 0, 0, 0, ist)
	a.Arrival = time.Date(2024, 3, 1, 14, 30, 0, 0, ist)
	b := a
	b.Arrival = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	first, va, err := p.Predict(context.Background(), a)
	require.NoError(t, err)
	second, vb, err := p.Predict(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 270.0, first.Price)
	assert.Equal(t, []float64{4, 30}, va.Values[7:9])
	assert.Equal(t, 600.0, second.Price)
	assert.Equal(t, []float64{10, 0}, vb.Values[7:9])
	assert.Equal(t, 2, reg.calls)
}

func TestPriceCacheReturnsCopies(t *testing.T) {
	p, err := NewPricePredictor(&fakeRegressor{value: 100}, PriceConfig{CacheSize: 4})
	require.NoError(t, err)

	_, vector, err := p.Predict(context.Background(), flightScenario())
	require.NoError(t, err)
	vector.Values[0] = 42

	_, again, err := p.Predict(context.Background(), flightScenario())
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Values[0])
}

func TestPriceNegativePassesThrough(t *testing.T) {
	p, err := NewPricePredictor(&fakeRegressor{value: -120.5}, PriceConfig{Currency: "₹"})
	require.NoError(t, err)

	result, _, err := p.Predict(context.Background(), flightScenario())
	require.NoError(t, err)
	assert.Equal(t, -120.5, result.Price)
	assert.True(t, strings.HasSuffix(result.Message, "₹ -120.50"), result.Message)
}

func TestPriceErrors(t *testing.T) {
	p, err := NewPricePredictor(&fakeRegressor{err: errors.New("nan")}, PriceConfig{DurationPolicy: features.DurationReject})
	require.NoError(t, err)

	_, _, err = p.Predict(context.Background(), flightScenario())
	assert.True(t, errors.Is(err, ErrModel))

	late := flightScenario()
	late.Arrival = late.Departure.Add(-time.Hour)
	_, _, err = p.Predict(context.Background(), late)
	assert.True(t, errors.Is(err, features.ErrNegativeDuration))

	_, err = NewPricePredictor(&fakeRegressor{}, PriceConfig{DurationPolicy: "wrap"})
	assert.Error(t, err)
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 1234.57, RoundPrice(1234.5678))
	assert.Equal(t, 10.0, RoundPrice(9.999))
	assert.Equal(t, 0.12, RoundPrice(0.125))
	assert.Equal(t, 0.38, RoundPrice(0.375))
	assert.Equal(t, -0.12, RoundPrice(-0.125))
	assert.Equal(t, -3.25, RoundPrice(-3.2499999))
}

const testTree = `[
  {"feature_idx": 0, "threshold": 3.5, "left_child": 1, "right_child": 2},
  {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true},
  {"feature_idx": -1, "left_child": -1, "right_child": -1, "class_label": 1, "is_leaf": true}
]`

const testForest = `{"objective": "forest", "trees": [[{"is_leaf": true, "value": 5000}]]}`

func modelsDir(t *testing.T) config.Models {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"classifier.json":       testTree,
		"scaler.json":           `{"mean": [0,0,0,0,0,0,0,0,0,0,0], "scale": [1,1,1,1,1,1,1,1,1,1,1]}`,
		"feature_names.json":    `["Gender_Male","Customer Type_Loyal Customer","Type of Travel_Personal Travel","Class","Inflight wifi service","Ease of Online booking","Online boarding","Seat comfort","Inflight entertainment","Leg room service","Cleanliness"]`,
		"label_vocabulary.json": `{"classes": ["Business", "Business Travel", "Disloyal Customer", "Eco", "Eco Plus", "Loyal Customer", "Personal Travel"]}`,
		"flight_regressor.json": testForest,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	models := config.Default().Models
	models.Dir = dir
	return models
}

func TestBootstrapLabelPolicy(t *testing.T) {
	models := modelsDir(t)

	pipelines, artifacts, err := Bootstrap(models, nil)
	require.NoError(t, err)
	assert.Equal(t, features.PolicyLabel, pipelines.Policy)
	assert.Len(t, artifacts.Files, 3)

	result, row, err := pipelines.Satisfaction.Predict(context.Background(), allFives())
	require.NoError(t, err)
	assert.Equal(t, LabelPolicyMessages.Satisfied, result.Message)
	// shared vocabulary: Business Travel=1, Business=0, Loyal Customer=5
	assert.Equal(t, []float64{5, 5, 1, 0, 5, 5, 5, 5, 5, 5}, row.Values)

	price, _, err := pipelines.Price.Predict(context.Background(), flightScenario())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, price.Price)
}

func TestBootstrapOneHotPolicy(t *testing.T) {
	models := modelsDir(t)
	models.Policy = string(features.PolicyOneHot)

	pipelines, artifacts, err := Bootstrap(models, nil)
	require.NoError(t, err)
	assert.Equal(t, features.PolicyOneHot, pipelines.Policy)
	assert.Len(t, artifacts.Files, 4)

	_, row, err := pipelines.Satisfaction.Predict(context.Background(), allFives())
	require.NoError(t, err)
	assert.Equal(t, featureNames, row.Names)
}

func TestBootstrapMissingScaler(t *testing.T) {
	models := modelsDir(t)
	models.Policy = string(features.PolicyOneHot)
	scalerPath := filepath.Join(models.Dir, "scaler.json")
	require.NoError(t, os.Remove(scalerPath))

	pipelines, artifacts, err := Bootstrap(models, nil)
	assert.Nil(t, pipelines)
	assert.Nil(t, artifacts)

	var artErr *ml.ArtifactError
	require.True(t, errors.As(err, &artErr), "got %v", err)
	assert.Equal(t, ml.ArtifactScaler, artErr.Name)
	assert.Contains(t, err.Error(), scalerPath)
}
