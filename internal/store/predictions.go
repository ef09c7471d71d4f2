// internal/store/predictions.go
package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

// PredictionHistoryStore persists the append-only assessment history
// in Postgres. Factor and recommendation lists are text[] columns.
type PredictionHistoryStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPredictionHistoryStore(db *sql.DB, log logger.Logger) *PredictionHistoryStore {
	return &PredictionHistoryStore{db: db, log: log}
}

// Save appends one assessment row.
func (s *PredictionHistoryStore) Save(ctx context.Context, p models.ChurnPrediction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO churn_predictions
			(id, customer_id, prediction_date, churn_probability, risk_level, key_factors, recommendations, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CustomerID, p.PredictionDate, p.ChurnProbability, p.RiskLevel,
		pq.Array(p.KeyFactors), pq.Array(p.Recommendations), p.Confidence)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// Latest returns the most recent predictions across all customers.
func (s *PredictionHistoryStore) Latest(ctx context.Context, limit int) ([]models.ChurnPrediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, prediction_date, churn_probability, risk_level, key_factors, recommendations, confidence
		FROM churn_predictions
		ORDER BY prediction_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("latest predictions", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

// ByRiskLevel returns the most recent predictions for one risk level.
func (s *PredictionHistoryStore) ByRiskLevel(ctx context.Context, riskLevel string, limit int) ([]models.ChurnPrediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, prediction_date, churn_probability, risk_level, key_factors, recommendations, confidence
		FROM churn_predictions
		WHERE risk_level = $1
		ORDER BY prediction_date DESC
		LIMIT $2`, riskLevel, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("predictions by risk", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func scanPredictions(rows *sql.Rows) ([]models.ChurnPrediction, error) {
	var predictions []models.ChurnPrediction
	for rows.Next() {
		var p models.ChurnPrediction
		err := rows.Scan(
			&p.ID, &p.CustomerID, &p.PredictionDate, &p.ChurnProbability, &p.RiskLevel,
			pq.Array(&p.KeyFactors), pq.Array(&p.Recommendations), &p.Confidence,
		)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan prediction", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate predictions", err)
	}
	return predictions, nil
}
