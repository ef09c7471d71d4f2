package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-analytics/internal/campaign"
	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/ingest"
	"churn-analytics/internal/models"
	"churn-analytics/internal/store"
)

type fakeIngestor struct {
	result ingest.Result
	err    error
	csv    string
}

func (f *fakeIngestor) IngestCSV(ctx context.Context, text string) (ingest.Result, error) {
	f.csv = text
	return f.result, f.err
}

func (f *fakeIngestor) Ingest(ctx context.Context, rows []map[string]any) (ingest.Result, error) {
	return f.result, f.err
}

func (f *fakeIngestor) SeedSampleData(ctx context.Context) (int, error) {
	return 8, f.err
}

type fakeDirectory struct {
	customers map[string]models.Customer
	updated   map[string]models.CustomerUpdate
	byRisk    []models.Customer
}

func (f *fakeDirectory) ListAll(ctx context.Context) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeDirectory) FindByID(ctx context.Context, customerID string) (models.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return models.Customer{}, errors.NewRecordNotFoundError(customerID)
	}
	return c, nil
}

func (f *fakeDirectory) FindByRisk(ctx context.Context, riskLevel string) ([]models.Customer, error) {
	return f.byRisk, nil
}

func (f *fakeDirectory) FindByChurn(ctx context.Context, churned bool, limit int) ([]models.Customer, error) {
	return nil, nil
}

func (f *fakeDirectory) Update(ctx context.Context, customerID string, update models.CustomerUpdate) error {
	if _, ok := f.customers[customerID]; !ok {
		return errors.NewRecordNotFoundError(customerID)
	}
	if f.updated == nil {
		f.updated = map[string]models.CustomerUpdate{}
	}
	f.updated[customerID] = update
	return nil
}

type fakePredictor struct {
	assessment models.RiskAssessment
	err        error
	calls      []string
	batchSize  int
}

func (f *fakePredictor) PredictForCustomer(ctx context.Context, customerID string) (models.RiskAssessment, error) {
	f.calls = append(f.calls, customerID)
	return f.assessment, f.err
}

func (f *fakePredictor) PredictAll(ctx context.Context) (int, error) {
	return f.batchSize, f.err
}

type fakeHistory struct {
	latest    []models.ChurnPrediction
	lastLimit int
}

func (f *fakeHistory) Latest(ctx context.Context, limit int) ([]models.ChurnPrediction, error) {
	f.lastLimit = limit
	return f.latest, nil
}

func (f *fakeHistory) ByRiskLevel(ctx context.Context, riskLevel string, limit int) ([]models.ChurnPrediction, error) {
	f.lastLimit = limit
	return f.latest, nil
}

type fakeStats struct {
	stats models.ChurnStatistics
	err   error
}

func (f *fakeStats) Statistics(ctx context.Context) (models.ChurnStatistics, error) {
	return f.stats, f.err
}

type fakeCampaigns struct {
	created    models.RetentionCampaign
	createdIn  campaign.CreateInput
	active     []models.RetentionCampaign
	statusErr  error
	set        campaign.RecommendationSet
	recommends []string
}

func (f *fakeCampaigns) Create(ctx context.Context, input campaign.CreateInput) (models.RetentionCampaign, error) {
	f.createdIn = input
	return f.created, nil
}

func (f *fakeCampaigns) All(ctx context.Context) ([]models.RetentionCampaign, error) {
	return f.active, nil
}

func (f *fakeCampaigns) Active(ctx context.Context) ([]models.RetentionCampaign, error) {
	return f.active, nil
}

func (f *fakeCampaigns) UpdateStatus(ctx context.Context, campaignID string, isActive bool, successRate *float64) error {
	return f.statusErr
}

func (f *fakeCampaigns) Recommend(ctx context.Context, riskLevel string) (campaign.RecommendationSet, error) {
	f.recommends = append(f.recommends, riskLevel)
	return f.set, nil
}

type fakeSearcher struct {
	query   store.SearchQuery
	results []models.Customer
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query store.SearchQuery) ([]models.Customer, error) {
	f.query = query
	return f.results, f.err
}

type serverFixture struct {
	ingestor  *fakeIngestor
	directory *fakeDirectory
	predictor *fakePredictor
	history   *fakeHistory
	stats     *fakeStats
	campaigns *fakeCampaigns
	searcher  *fakeSearcher
	handler   http.Handler
}

func newFixture(withSearch bool) *serverFixture {
	f := &serverFixture{
		ingestor: &fakeIngestor{result: ingest.Result{
			Message:        "CSV data uploaded successfully",
			SuccessCount:   2,
			TotalProcessed: 2,
		}},
		directory: &fakeDirectory{customers: map[string]models.Customer{
			"CUST001": {CustomerID: "CUST001", Contract: models.ContractMonthToMonth, LastUpdated: time.Now()},
		}},
		predictor: &fakePredictor{
			assessment: models.RiskAssessment{ChurnProbability: 95, RiskLevel: "High", Confidence: 75},
			batchSize:  3,
		},
		history:   &fakeHistory{latest: []models.ChurnPrediction{{ID: "pred-1", CustomerID: "CUST001"}}},
		stats:     &fakeStats{stats: models.ChurnStatistics{TotalCustomers: 8, ChurnRate: 37.5}},
		campaigns: &fakeCampaigns{created: models.RetentionCampaign{CampaignID: "CAMP_1"}},
	}
	var search Searcher
	if withSearch {
		f.searcher = &fakeSearcher{}
		search = f.searcher
	}
	server := NewServer(f.ingestor, f.directory, f.predictor, f.history, f.stats, f.campaigns, search, nil, logger.NewNoOpLogger())
	f.handler = server.Handler()
	return f
}

func (f *serverFixture) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(false)

	rec := f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestIngestCSVEndpoint(t *testing.T) {
	t.Run("forwards the raw body", func(t *testing.T) {
		f := newFixture(false)
		csv := "customerId,tenure\nCUST001,12\n"

		rec := f.do(t, http.MethodPost, "/api/v1/ingest/csv", csv)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, csv, f.ingestor.csv)
		assert.Contains(t, rec.Body.String(), "CSV data uploaded successfully")
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodPost, "/api/v1/ingest/csv", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps malformed input to 400", func(t *testing.T) {
		f := newFixture(false)
		f.ingestor.err = errors.NewMalformedInputError("header row is missing")

		rec := f.do(t, http.MethodPost, "/api/v1/ingest/csv", "just-a-header")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MALFORMED_INPUT")
	})
}

func TestGetCustomerEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/customers/CUST001", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "CUST001")
	})

	t.Run("missing customers map to 404", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/customers/NOPE", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "RECORD_NOT_FOUND")
	})
}

func TestUpdateCustomerEndpoint(t *testing.T) {
	f := newFixture(false)

	rec := f.do(t, http.MethodPatch, "/api/v1/customers/CUST001",
		`{"monthlyCharges": 59.95, "contract": "One year"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	update := f.directory.updated["CUST001"]
	require.NotNil(t, update.MonthlyCharges)
	assert.Equal(t, 59.95, *update.MonthlyCharges)
	require.NotNil(t, update.Contract)
	assert.Equal(t, "One year", *update.Contract)
	assert.Equal(t, []string{"CUST001"}, f.predictor.calls, "update should trigger a fresh assessment")
}

func TestPredictCustomerEndpoint(t *testing.T) {
	f := newFixture(false)

	rec := f.do(t, http.MethodPost, "/api/v1/customers/CUST001/predict", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var assessment models.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	assert.Equal(t, 95.0, assessment.ChurnProbability)
	assert.Equal(t, "High", assessment.RiskLevel)
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("uses the search backend when configured", func(t *testing.T) {
		f := newFixture(true)

		rec := f.do(t, http.MethodGet, "/api/v1/customers/search?term=CUST&riskLevel=High&churnStatus=churned", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, store.SearchQuery{Term: "CUST", RiskLevel: "High", ChurnStatus: "churned"}, f.searcher.query)
	})

	t.Run("degrades to direct queries when the backend fails", func(t *testing.T) {
		f := newFixture(true)
		f.searcher.err = errors.NewSearchQueryFailedError(context.DeadlineExceeded)
		f.directory.byRisk = []models.Customer{{CustomerID: "CUST005"}}

		rec := f.do(t, http.MethodGet, "/api/v1/customers/search?riskLevel=High", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "CUST005")
	})

	t.Run("falls back to risk filter without a backend", func(t *testing.T) {
		f := newFixture(false)
		f.directory.byRisk = []models.Customer{{CustomerID: "CUST005"}}

		rec := f.do(t, http.MethodGet, "/api/v1/customers/search?riskLevel=High", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "CUST005")
	})
}

func TestStatisticsEndpoint(t *testing.T) {
	f := newFixture(false)

	rec := f.do(t, http.MethodGet, "/api/v1/statistics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var stats models.ChurnStatistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 8, stats.TotalCustomers)
	assert.Equal(t, 37.5, stats.ChurnRate)
}

func TestStatisticsEndpointFailure(t *testing.T) {
	f := newFixture(false)
	f.stats.err = errors.NewQueryExecutionFailedError("statistics", context.DeadlineExceeded)

	rec := f.do(t, http.MethodGet, "/api/v1/statistics", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "retryable storage failures should read as 503")
	assert.Contains(t, rec.Body.String(), "QUERY_EXECUTION_FAILED")
}

func TestPredictionEndpoints(t *testing.T) {
	t.Run("batch run reports the completed count", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodPost, "/api/v1/predictions/run", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"predictionsCompleted":3`)
	})

	t.Run("latest defaults the limit", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/predictions/latest", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 10, f.history.lastLimit)
	})

	t.Run("latest rejects a bad limit", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/predictions/latest?limit=zero", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("by risk level requires the parameter", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/predictions", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("by risk level caps history reads", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/predictions?riskLevel=High", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 20, f.history.lastLimit)
	})
}

func TestCampaignEndpoints(t *testing.T) {
	t.Run("create passes the input through", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodPost, "/api/v1/campaigns",
			`{"name":"Emergency Retention Offer","targetRiskLevel":"High","offerType":"Discount","discount":25,"durationDays":30}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Emergency Retention Offer", f.campaigns.createdIn.Name)
		require.NotNil(t, f.campaigns.createdIn.Discount)
		assert.Equal(t, 25.0, *f.campaigns.createdIn.Discount)
	})

	t.Run("create requires name and risk level", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodPost, "/api/v1/campaigns", `{"offerType":"Discount"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing campaigns map to 404 on status updates", func(t *testing.T) {
		f := newFixture(false)
		f.campaigns.statusErr = errors.NewCampaignNotFoundError("CAMP_404")

		rec := f.do(t, http.MethodPatch, "/api/v1/campaigns/CAMP_404/status", `{"isActive":false}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "CAMPAIGN_NOT_FOUND")
	})

	t.Run("recommendations validate the risk level", func(t *testing.T) {
		f := newFixture(false)

		rec := f.do(t, http.MethodGet, "/api/v1/campaigns/recommendations?riskLevel=Severe", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.campaigns.recommends)
	})

	t.Run("recommendations run for a valid segment", func(t *testing.T) {
		f := newFixture(false)
		f.campaigns.set = campaign.RecommendationSet{TargetCount: 4}

		rec := f.do(t, http.MethodGet, "/api/v1/campaigns/recommendations?riskLevel=High", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"High"}, f.campaigns.recommends)
		assert.Contains(t, rec.Body.String(), `"targetCount":4`)
	})
}

func TestSampleDataEndpoint(t *testing.T) {
	f := newFixture(false)

	rec := f.do(t, http.MethodPost, "/api/v1/sample-data", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"count":8`))
}
