package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"airpredict/db"
	"airpredict/features"
	"airpredict/ml"
	"airpredict/monitoring"
	"airpredict/predict"
)

// APIConfig carries the process state the handlers report on.
type APIConfig struct {
	RunID     string
	Artifacts []ml.ArtifactFile
	Stats     *monitoring.Stats
	// Events serves /api/ws/events when set.
	Events *monitoring.EventHub
	// StaleArtifacts lists artifacts edited on disk since startup.
	StaleArtifacts func() []string
	// Location is used for date and clock pairs in price requests.
	Location       *time.Location
	AllowedOrigins []string
	Logger         *zap.Logger
}

// API serves both prediction pipelines over JSON and websocket.
type API struct {
	pipelines *predict.Pipelines
	cfg       APIConfig
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

func NewAPI(pipelines *predict.Pipelines, cfg APIConfig) *API {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Stats == nil {
		cfg.Stats = monitoring.NewStats()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	a := &API{pipelines: pipelines, cfg: cfg, logger: cfg.Logger}
	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     OriginChecker(cfg.AllowedOrigins),
	}
	return a
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/options", handleOptions)
	mux.HandleFunc("POST /api/satisfaction", a.handleSatisfaction)
	mux.HandleFunc("POST /api/price", a.handlePrice)
	mux.HandleFunc("GET /api/artifacts", a.handleArtifacts)
	mux.HandleFunc("GET /api/stats", a.handleStats)
	mux.HandleFunc("GET /api/ws/form", a.handleFormSession)
	if a.cfg.Events != nil {
		mux.HandleFunc("GET /api/ws/events", a.cfg.Events.HandleWebSocket)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	stale := []string{}
	if a.cfg.StaleArtifacts != nil {
		stale = append(stale, a.cfg.StaleArtifacts()...)
	}
	respondJSON(w, map[string]interface{}{
		"status":          "ok",
		"policy":          a.pipelines.Policy,
		"duration_policy": a.pipelines.Price.DurationPolicy(),
		"run_id":          a.cfg.RunID,
		"uptime_seconds":  int64(a.cfg.Stats.Uptime().Seconds()),
		"stale_artifacts": stale,
	})
}

// FormOptions lists every choice both forms offer.
type FormOptions struct {
	Satisfaction SurveyOptions `json:"satisfaction"`
	Price        FlightOptions `json:"price"`
}

type SurveyOptions struct {
	CustomerTypes []string `json:"customer_types"`
	TravelTypes   []string `json:"travel_types"`
	Classes       []string `json:"classes"`
	Genders       []string `json:"genders"`
	RatingColumns []string `json:"rating_columns"`
	RatingScale   []int    `json:"rating_scale"`
}

type FlightOptions struct {
	Sources      []string `json:"sources"`
	Destinations []string `json:"destinations"`
	Airlines     []string `json:"airlines"`
	DateLayout   string   `json:"date_layout"`
	ClockLayout  string   `json:"clock_layout"`
}

func Options() FormOptions {
	var columns []string
	for _, r := range (features.SurveyInput{}).Ratings() {
		columns = append(columns, r.Column)
	}
	return FormOptions{
		Satisfaction: SurveyOptions{
			CustomerTypes: features.CustomerTypes,
			TravelTypes:   features.TravelTypes,
			Classes:       features.Classes,
			Genders:       features.Genders,
			RatingColumns: columns,
			RatingScale:   features.RatingScale,
		},
		Price: FlightOptions{
			Sources:      features.Sources,
			Destinations: features.Destinations,
			Airlines:     features.Airlines,
			DateLayout:   features.DateLayout,
			ClockLayout:  features.ClockLayout,
		},
	}
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, Options())
}

// SatisfactionResponse is the prediction plus the row the model saw.
type SatisfactionResponse struct {
	Result predict.Result `json:"result"`
	Row    features.Row   `json:"row"`
}

type PriceResponse struct {
	Result predict.Result        `json:"result"`
	Vector features.FlightVector `json:"vector"`
}

func (a *API) handleSatisfaction(w http.ResponseWriter, r *http.Request) {
	var in features.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.predictSatisfaction(r.Context(), in)
	if err != nil {
		a.respondPredictionError(w, r, err)
		return
	}
	respondJSON(w, resp)
}

func (a *API) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.predictPrice(r.Context(), req)
	if err != nil {
		a.respondPredictionError(w, r, err)
		return
	}
	respondJSON(w, resp)
}

func (a *API) predictSatisfaction(ctx context.Context, in features.SurveyInput) (SatisfactionResponse, error) {
	start := time.Now()
	result, row, err := a.pipelines.Satisfaction.Predict(ctx, in)
	a.cfg.Stats.Record(string(predict.KindSatisfaction), time.Since(start), err)
	if err != nil {
		return SatisfactionResponse{}, err
	}
	return SatisfactionResponse{Result: result, Row: row}, nil
}

func (a *API) predictPrice(ctx context.Context, req PriceRequest) (PriceResponse, error) {
	start := time.Now()
	in, err := req.FlightInput(a.cfg.Location)
	if err != nil {
		a.cfg.Stats.Record(string(predict.KindPrice), time.Since(start), err)
		return PriceResponse{}, err
	}
	result, vector, err := a.pipelines.Price.Predict(ctx, in)
	a.cfg.Stats.Record(string(predict.KindPrice), time.Since(start), err)
	if err != nil {
		return PriceResponse{}, err
	}
	return PriceResponse{Result: result, Vector: vector}, nil
}

func (a *API) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	response := map[string]interface{}{
		"run_id": a.cfg.RunID,
		"loaded": a.cfg.Artifacts,
	}
	history, err := db.ListArtifacts(limit)
	switch {
	case errors.Is(err, db.ErrNotInitialized):
	case err != nil:
		a.logger.Error("list artifact registry", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err)
		return
	default:
		response["history"] = history
	}
	respondJSON(w, response)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.cfg.Stats.Snapshot())
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, features.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) respondPredictionError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	respondError(w, status, err)
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
