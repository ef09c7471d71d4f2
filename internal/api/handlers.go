// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"churn-analytics/internal/campaign"
	"churn-analytics/internal/models"
	"churn-analytics/internal/store"
)

const (
	defaultLatestLimit = 10
	riskHistoryLimit   = 20
	listLimit          = 50
)

func (s *Server) handleIngestCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeBadRequest(w, "failed to read request body")
		return
	}
	if len(body) == 0 {
		s.writeBadRequest(w, "request body is empty")
		return
	}

	result, err := s.ingestor.IngestCSV(r.Context(), string(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIngestRows(w http.ResponseWriter, r *http.Request) {
	var rows []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.writeBadRequest(w, "request body must be a JSON array of rows")
		return
	}

	result, err := s.ingestor.Ingest(r.Context(), rows)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSampleData(w http.ResponseWriter, r *http.Request) {
	count, err := s.ingestor.SeedSampleData(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sample data loaded successfully",
		"count":   count,
	})
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := s.customers.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, customer)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")

	var update models.CustomerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeBadRequest(w, "invalid update payload")
		return
	}

	if err := s.customers.Update(r.Context(), customerID, update); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Plan changes shift the risk picture, so refresh the assessment
	// right away instead of waiting for the next batch run.
	if _, err := s.predictor.PredictForCustomer(r.Context(), customerID); err != nil {
		s.log.WithError(err).Warn("Re-prediction after update failed", map[string]interface{}{
			"customer_id": customerID,
		})
	}

	customer, err := s.customers.FindByID(r.Context(), customerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, customer)
}

func (s *Server) handlePredictCustomer(w http.ResponseWriter, r *http.Request) {
	assessment, err := s.predictor.PredictForCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, assessment)
}

func (s *Server) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	query := store.SearchQuery{
		Term:        r.URL.Query().Get("term"),
		RiskLevel:   r.URL.Query().Get("riskLevel"),
		ChurnStatus: r.URL.Query().Get("churnStatus"),
	}

	if s.search != nil {
		customers, err := s.search.Search(r.Context(), query)
		if err == nil {
			s.writeJSON(w, http.StatusOK, customers)
			return
		}
		s.log.WithError(err).Warn("Search backend failed, falling back to direct queries", map[string]interface{}{
			"term": query.Term,
		})
	}

	customers, err := s.searchViaStore(r, query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, customers)
}

// searchViaStore approximates the index filters with direct queries when
// no search backend is configured.
func (s *Server) searchViaStore(r *http.Request, query store.SearchQuery) ([]models.Customer, error) {
	switch {
	case query.RiskLevel != "":
		customers, err := s.customers.FindByRisk(r.Context(), query.RiskLevel)
		if err != nil {
			return nil, err
		}
		if len(customers) > listLimit {
			customers = customers[:listLimit]
		}
		return customers, nil
	case query.ChurnStatus == "churned":
		return s.customers.FindByChurn(r.Context(), true, listLimit)
	case query.ChurnStatus == "active":
		return s.customers.FindByChurn(r.Context(), false, listLimit)
	default:
		customers, err := s.customers.ListAll(r.Context())
		if err != nil {
			return nil, err
		}
		if len(customers) > listLimit {
			customers = customers[:listLimit]
		}
		return customers, nil
	}
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statistics.Statistics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePredictAll(w http.ResponseWriter, r *http.Request) {
	completed, err := s.predictor.PredictAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":              "Predictions completed",
		"predictionsCompleted": completed,
	})
}

func (s *Server) handleLatestPredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultLatestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	predictions, err := s.history.Latest(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, predictions)
}

func (s *Server) handlePredictionsByRisk(w http.ResponseWriter, r *http.Request) {
	riskLevel := r.URL.Query().Get("riskLevel")
	if riskLevel == "" {
		s.writeBadRequest(w, "riskLevel query parameter is required")
		return
	}

	predictions, err := s.history.ByRiskLevel(r.Context(), riskLevel, riskHistoryLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, predictions)
}

type createCampaignRequest struct {
	Name            string   `json:"name"`
	TargetRiskLevel string   `json:"targetRiskLevel"`
	Description     string   `json:"description"`
	Discount        *float64 `json:"discount"`
	OfferType       string   `json:"offerType"`
	DurationDays    int      `json:"durationDays"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid campaign payload")
		return
	}
	if req.Name == "" || req.TargetRiskLevel == "" {
		s.writeBadRequest(w, "name and targetRiskLevel are required")
		return
	}

	created, err := s.campaigns.Create(r.Context(), campaign.CreateInput{
		Name:            req.Name,
		TargetRiskLevel: req.TargetRiskLevel,
		Description:     req.Description,
		Discount:        req.Discount,
		OfferType:       req.OfferType,
		DurationDays:    req.DurationDays,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.campaigns.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, campaigns)
}

func (s *Server) handleActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.campaigns.Active(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, campaigns)
}

type campaignStatusRequest struct {
	IsActive    bool     `json:"isActive"`
	SuccessRate *float64 `json:"successRate"`
}

func (s *Server) handleUpdateCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var req campaignStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid status payload")
		return
	}

	if err := s.campaigns.UpdateStatus(r.Context(), r.PathValue("id"), req.IsActive, req.SuccessRate); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCampaignRecommendations(w http.ResponseWriter, r *http.Request) {
	riskLevel := r.URL.Query().Get("riskLevel")
	if riskLevel == "" {
		s.writeBadRequest(w, "riskLevel query parameter is required")
		return
	}
	if riskLevel != models.RiskLevelHigh && riskLevel != models.RiskLevelMedium && riskLevel != models.RiskLevelLow {
		s.writeBadRequest(w, "riskLevel must be High, Medium or Low")
		return
	}

	set, err := s.campaigns.Recommend(r.Context(), riskLevel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, set)
}
