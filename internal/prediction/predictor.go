// internal/prediction/predictor.go
package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/common/metrics"
	"churn-analytics/internal/models"
)

// CustomerReader is the slice of the customer store the predictor
// needs.
type CustomerReader interface {
	ListAll(ctx context.Context) ([]models.Customer, error)
	FindByID(ctx context.Context, customerID string) (models.Customer, error)
	UpdateRisk(ctx context.Context, customerID string, churnProbability float64, riskLevel string, now time.Time) error
}

// PredictionStore persists the append-only assessment history.
type PredictionStore interface {
	Save(ctx context.Context, prediction models.ChurnPrediction) error
}

// StatsInvalidator drops cached aggregate statistics after risk
// levels change.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Predictor runs churn risk assessments: external classifier first,
// rule-based fallback on any classifier error. Each run appends one
// history row and patches the customer's risk fields.
type Predictor struct {
	customers   CustomerReader
	predictions PredictionStore
	classifier  RiskClassifier
	cache       StatsInvalidator
	log         logger.Logger
}

func NewPredictor(customers CustomerReader, predictions PredictionStore, classifier RiskClassifier, cache StatsInvalidator, log logger.Logger) *Predictor {
	return &Predictor{
		customers:   customers,
		predictions: predictions,
		classifier:  classifier,
		cache:       cache,
		log:         log,
	}
}

// PredictForCustomer assesses one customer. Classifier failures are
// absorbed by the fallback scorer and never surface to the caller;
// only lookup and storage errors do.
func (p *Predictor) PredictForCustomer(ctx context.Context, customerID string) (models.RiskAssessment, error) {
	start := time.Now()

	customer, err := p.customers.FindByID(ctx, customerID)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	profile := customer.Profile()

	source := "classifier"
	var assessment models.RiskAssessment
	if p.classifier != nil {
		assessment, err = p.classifier.Classify(ctx, profile)
	}
	if p.classifier == nil || err != nil {
		if err != nil {
			p.log.WithError(err).Warn("Classifier failed, using fallback scorer", map[string]interface{}{
				"customerId": customerID,
			})
		}
		source = "fallback"
		assessment = FallbackScore(profile)
	}

	now := time.Now()
	prediction := models.ChurnPrediction{
		ID:               uuid.NewString(),
		CustomerID:       customerID,
		PredictionDate:   now,
		ChurnProbability: assessment.ChurnProbability,
		RiskLevel:        assessment.RiskLevel,
		KeyFactors:       assessment.KeyFactors,
		Recommendations:  assessment.Recommendations,
		Confidence:       assessment.Confidence,
	}
	if err := p.predictions.Save(ctx, prediction); err != nil {
		return models.RiskAssessment{}, err
	}
	if err := p.customers.UpdateRisk(ctx, customerID, assessment.ChurnProbability, assessment.RiskLevel, now); err != nil {
		return models.RiskAssessment{}, err
	}

	if p.cache != nil {
		if err := p.cache.Invalidate(ctx); err != nil {
			p.log.WithError(err).Warn("Failed to invalidate statistics cache", nil)
		}
	}

	metrics.PredictionsCompleted.WithLabelValues(source).Inc()
	metrics.PredictionDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	return assessment, nil
}

// PredictAll assesses every customer in the store. Per-customer
// failures are logged and skipped; the run continues.
func (p *Predictor) PredictAll(ctx context.Context) (int, error) {
	customers, err := p.customers.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, customer := range customers {
		if _, err := p.PredictForCustomer(ctx, customer.CustomerID); err != nil {
			p.log.WithError(err).Error("Prediction failed for customer", map[string]interface{}{
				"customerId": customer.CustomerID,
			})
			continue
		}
		completed++
	}

	p.log.Info("Churn prediction completed for all customers", map[string]interface{}{
		"count": completed,
		"total": len(customers),
	})

	return completed, nil
}
