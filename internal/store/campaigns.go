// internal/store/campaigns.go
package store

import (
	"context"
	"database/sql"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

const campaignColumns = `campaign_id, name, target_risk_level, description, discount, offer_type,
	start_date, end_date, is_active, customers_targeted, success_rate`

// CampaignStore persists retention campaigns in Postgres.
type CampaignStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewCampaignStore(db *sql.DB, log logger.Logger) *CampaignStore {
	return &CampaignStore{db: db, log: log}
}

// Insert stores a newly created campaign.
func (s *CampaignStore) Insert(ctx context.Context, c models.RetentionCampaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO retention_campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.CampaignID, c.Name, c.TargetRiskLevel, c.Description, c.Discount, c.OfferType,
		c.StartDate, c.EndDate, c.IsActive, c.CustomersTargeted, c.SuccessRate)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// ListAll returns every campaign, newest first.
func (s *CampaignStore) ListAll(ctx context.Context) ([]models.RetentionCampaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM retention_campaigns
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list campaigns", err)
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

// ListActive returns campaigns flagged active, newest first. Date
// window filtering happens in the campaign service.
func (s *CampaignStore) ListActive(ctx context.Context) ([]models.RetentionCampaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM retention_campaigns
		WHERE is_active = TRUE
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list active campaigns", err)
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

// UpdateStatus patches a campaign's active flag and success rate, or
// reports CAMPAIGN_NOT_FOUND.
func (s *CampaignStore) UpdateStatus(ctx context.Context, campaignID string, isActive bool, successRate *float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE retention_campaigns
		SET is_active = $1, success_rate = $2
		WHERE campaign_id = $3`,
		isActive, successRate, campaignID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update campaign status", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NewCampaignNotFoundError(campaignID)
	}
	return nil
}

func scanCampaigns(rows *sql.Rows) ([]models.RetentionCampaign, error) {
	var campaigns []models.RetentionCampaign
	for rows.Next() {
		var c models.RetentionCampaign
		var discount, successRate sql.NullFloat64

		err := rows.Scan(
			&c.CampaignID, &c.Name, &c.TargetRiskLevel, &c.Description, &discount, &c.OfferType,
			&c.StartDate, &c.EndDate, &c.IsActive, &c.CustomersTargeted, &successRate,
		)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan campaign", err)
		}
		if discount.Valid {
			c.Discount = &discount.Float64
		}
		if successRate.Valid {
			c.SuccessRate = &successRate.Float64
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate campaigns", err)
	}
	return campaigns, nil
}
