package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-analytics/internal/common/config"
	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

func classifierConfig(baseURL string) *config.ClassifierConfig {
	return &config.ClassifierConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4.1-nano",
		Timeout:     2000,
		MaxRetries:  2,
		Temperature: 0.3,
	}
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestHTTPClassifierClassify(t *testing.T) {
	profile := models.CustomerProfile{Tenure: 3, Contract: "Month-to-month", PaymentMethod: "Electronic check", MonthlyCharges: 90}

	t.Run("parses a valid reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(chatReply(`{
				"churnProbability": 82,
				"riskLevel": "High",
				"keyFactors": ["Month-to-month contract", "High monthly charges", "Short tenure"],
				"recommendations": ["Offer annual contract", "Service consultation", "Loyalty discount"],
				"confidence": 88
			}`)))
		}))
		defer server.Close()

		classifier, err := NewHTTPClassifier(classifierConfig(server.URL), logger.NewNoOpLogger())
		require.NoError(t, err)

		assessment, err := classifier.Classify(context.Background(), profile)

		require.NoError(t, err)
		assert.Equal(t, float64(82), assessment.ChurnProbability)
		assert.Equal(t, models.RiskLevelHigh, assessment.RiskLevel)
		assert.Len(t, assessment.KeyFactors, 3)
		assert.Equal(t, float64(88), assessment.Confidence)
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(chatReply(`{"churnProbability": 20, "riskLevel": "Low", "keyFactors": [], "recommendations": [], "confidence": 70}`)))
		}))
		defer server.Close()

		classifier, err := NewHTTPClassifier(classifierConfig(server.URL), logger.NewNoOpLogger())
		require.NoError(t, err)

		assessment, err := classifier.Classify(context.Background(), profile)

		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelLow, assessment.RiskLevel)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("reports unavailable after exhausting retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		classifier, err := NewHTTPClassifier(classifierConfig(server.URL), logger.NewNoOpLogger())
		require.NoError(t, err)

		_, err = classifier.Classify(context.Background(), profile)

		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeClassifierUnavailable, errors.CodeOf(err))
	})

	malformed := []struct {
		name    string
		content string
	}{
		{"not json", "I think this customer will churn."},
		{"missing fields", `{"churnProbability": 50}`},
		{"bad risk level", `{"churnProbability": 50, "riskLevel": "Severe", "keyFactors": [], "recommendations": [], "confidence": 70}`},
		{"probability out of range", `{"churnProbability": 140, "riskLevel": "High", "keyFactors": [], "recommendations": [], "confidence": 70}`},
	}
	for _, tt := range malformed {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(chatReply(tt.content)))
			}))
			defer server.Close()

			classifier, err := NewHTTPClassifier(classifierConfig(server.URL), logger.NewNoOpLogger())
			require.NoError(t, err)

			_, err = classifier.Classify(context.Background(), profile)

			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeClassifierMalformedOutput, errors.CodeOf(err))
		})
	}
}

func TestBuildRiskPrompt(t *testing.T) {
	prompt := buildRiskPrompt(models.CustomerProfile{Tenure: 3, Contract: "Month-to-month"})

	assert.Contains(t, prompt, `"tenure": 3`)
	assert.Contains(t, prompt, "Respond in JSON format")
	assert.Contains(t, prompt, "Month-to-month contracts")
}
