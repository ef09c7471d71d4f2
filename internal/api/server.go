// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"churn-analytics/internal/campaign"
	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/common/observability"
	"churn-analytics/internal/ingest"
	"churn-analytics/internal/models"
	"churn-analytics/internal/store"
)

// Ingestor runs full-replace customer loads.
type Ingestor interface {
	IngestCSV(ctx context.Context, text string) (ingest.Result, error)
	Ingest(ctx context.Context, rows []map[string]any) (ingest.Result, error)
	SeedSampleData(ctx context.Context) (int, error)
}

// CustomerDirectory exposes the customer store to the API.
type CustomerDirectory interface {
	ListAll(ctx context.Context) ([]models.Customer, error)
	FindByID(ctx context.Context, customerID string) (models.Customer, error)
	FindByRisk(ctx context.Context, riskLevel string) ([]models.Customer, error)
	FindByChurn(ctx context.Context, churned bool, limit int) ([]models.Customer, error)
	Update(ctx context.Context, customerID string, update models.CustomerUpdate) error
}

// RiskPredictor runs churn assessments.
type RiskPredictor interface {
	PredictForCustomer(ctx context.Context, customerID string) (models.RiskAssessment, error)
	PredictAll(ctx context.Context) (int, error)
}

// PredictionHistory reads the assessment history.
type PredictionHistory interface {
	Latest(ctx context.Context, limit int) ([]models.ChurnPrediction, error)
	ByRiskLevel(ctx context.Context, riskLevel string, limit int) ([]models.ChurnPrediction, error)
}

// StatisticsProvider serves aggregate churn statistics.
type StatisticsProvider interface {
	Statistics(ctx context.Context) (models.ChurnStatistics, error)
}

// CampaignManager owns retention campaigns and recommendations.
type CampaignManager interface {
	Create(ctx context.Context, input campaign.CreateInput) (models.RetentionCampaign, error)
	All(ctx context.Context) ([]models.RetentionCampaign, error)
	Active(ctx context.Context) ([]models.RetentionCampaign, error)
	UpdateStatus(ctx context.Context, campaignID string, isActive bool, successRate *float64) error
	Recommend(ctx context.Context, riskLevel string) (campaign.RecommendationSet, error)
}

// Searcher runs free-text customer search against the secondary index.
type Searcher interface {
	Search(ctx context.Context, query store.SearchQuery) ([]models.Customer, error)
}

// Server wires the churn analytics services into an HTTP API.
type Server struct {
	ingestor   Ingestor
	customers  CustomerDirectory
	predictor  RiskPredictor
	history    PredictionHistory
	statistics StatisticsProvider
	campaigns  CampaignManager
	search     Searcher
	obs        *observability.Observability
	log        logger.Logger
}

func NewServer(
	ingestor Ingestor,
	customers CustomerDirectory,
	predictor RiskPredictor,
	history PredictionHistory,
	statistics StatisticsProvider,
	campaigns CampaignManager,
	search Searcher,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		ingestor:   ingestor,
		customers:  customers,
		predictor:  predictor,
		history:    history,
		statistics: statistics,
		campaigns:  campaigns,
		search:     search,
		obs:        obs,
		log:        log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/ingest/csv", s.instrument("ingest_csv", s.handleIngestCSV))
	mux.HandleFunc("POST /api/v1/ingest/rows", s.instrument("ingest_rows", s.handleIngestRows))
	mux.HandleFunc("POST /api/v1/sample-data", s.instrument("sample_data", s.handleSampleData))

	mux.HandleFunc("GET /api/v1/customers", s.instrument("list_customers", s.handleListCustomers))
	mux.HandleFunc("GET /api/v1/customers/search", s.instrument("search_customers", s.handleSearchCustomers))
	mux.HandleFunc("GET /api/v1/customers/{id}", s.instrument("get_customer", s.handleGetCustomer))
	mux.HandleFunc("PATCH /api/v1/customers/{id}", s.instrument("update_customer", s.handleUpdateCustomer))
	mux.HandleFunc("POST /api/v1/customers/{id}/predict", s.instrument("predict_customer", s.handlePredictCustomer))

	mux.HandleFunc("GET /api/v1/statistics", s.instrument("statistics", s.handleStatistics))

	mux.HandleFunc("POST /api/v1/predictions/run", s.instrument("predict_all", s.handlePredictAll))
	mux.HandleFunc("GET /api/v1/predictions/latest", s.instrument("latest_predictions", s.handleLatestPredictions))
	mux.HandleFunc("GET /api/v1/predictions", s.instrument("predictions_by_risk", s.handlePredictionsByRisk))

	mux.HandleFunc("POST /api/v1/campaigns", s.instrument("create_campaign", s.handleCreateCampaign))
	mux.HandleFunc("GET /api/v1/campaigns", s.instrument("list_campaigns", s.handleListCampaigns))
	mux.HandleFunc("GET /api/v1/campaigns/active", s.instrument("active_campaigns", s.handleActiveCampaigns))
	mux.HandleFunc("PATCH /api/v1/campaigns/{id}/status", s.instrument("update_campaign_status", s.handleUpdateCampaignStatus))
	mux.HandleFunc("GET /api/v1/campaigns/recommendations", s.instrument("campaign_recommendations", s.handleCampaignRecommendations))

	return mux
}

// instrument records request count and duration per route.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), route, http.StatusText(recorder.status))
			s.obs.RecordRequestDuration(r.Context(), time.Since(start), route)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("Failed to encode response", nil)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: "INTERNAL_ERROR", Message: err.Error()}

	code := errors.CodeOf(err)
	if code != "" {
		body.Code = string(code)
		switch {
		case code == errors.ErrCodeMalformedInput:
			status = http.StatusBadRequest
		case code == errors.ErrCodeRecordNotFound, code == errors.ErrCodeCampaignNotFound, code == errors.ErrCodeEmptySegment:
			status = http.StatusNotFound
		case errors.IsRetryableErrorCode(code):
			status = http.StatusServiceUnavailable
		}
		var std *errors.StandardError
		if stdErr, ok := err.(*errors.StandardError); ok {
			std = stdErr
		}
		if std != nil {
			body.Message = std.Message
			body.Details = std.Details
		}
	}

	if status >= http.StatusInternalServerError {
		fields := map[string]interface{}{"path": r.URL.Path}
		if code != "" {
			fields["category"] = errors.GetErrorCategory(code)
		}
		s.log.WithError(err).Error("Request failed", fields)
	}
	s.writeJSON(w, status, map[string]errorBody{"error": body})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]errorBody{
		"error": {Code: "BAD_REQUEST", Message: message},
	})
}
