// internal/campaign/service.go
package campaign

import (
	"context"
	"fmt"
	"time"

	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

// Store persists retention campaigns.
type Store interface {
	Insert(ctx context.Context, campaign models.RetentionCampaign) error
	ListAll(ctx context.Context) ([]models.RetentionCampaign, error)
	ListActive(ctx context.Context) ([]models.RetentionCampaign, error)
	UpdateStatus(ctx context.Context, campaignID string, isActive bool, successRate *float64) error
}

// CustomerFinder is the slice of the customer store campaigns need.
type CustomerFinder interface {
	FindByRisk(ctx context.Context, riskLevel string) ([]models.Customer, error)
}

// CreateInput describes a campaign to create. EndDate is derived from
// DurationDays; the targeted customer count is snapshotted at creation.
type CreateInput struct {
	Name            string   `json:"name"`
	TargetRiskLevel string   `json:"targetRiskLevel"`
	Description     string   `json:"description"`
	Discount        *float64 `json:"discount,omitempty"`
	OfferType       string   `json:"offerType"`
	DurationDays    int      `json:"durationDays"`
}

// RecommendationSet is the result of one recommendation run for a risk
// segment.
type RecommendationSet struct {
	Recommendations []models.CampaignRecommendation `json:"recommendations"`
	TargetCount     int                             `json:"targetCount"`
	Patterns        models.PatternSummary           `json:"patterns"`
}

// Service owns retention campaign lifecycle and recommendation runs.
type Service struct {
	campaigns Store
	customers CustomerFinder
	generator RecommendationGenerator
	log       logger.Logger
}

func NewService(campaigns Store, customers CustomerFinder, generator RecommendationGenerator, log logger.Logger) *Service {
	return &Service{
		campaigns: campaigns,
		customers: customers,
		generator: generator,
		log:       log,
	}
}

// Create inserts a new active campaign targeting a risk segment.
func (s *Service) Create(ctx context.Context, input CreateInput) (models.RetentionCampaign, error) {
	now := time.Now()
	targeted, err := s.customers.FindByRisk(ctx, input.TargetRiskLevel)
	if err != nil {
		return models.RetentionCampaign{}, err
	}

	campaign := models.RetentionCampaign{
		CampaignID:        fmt.Sprintf("CAMP_%d", now.UnixMilli()),
		Name:              input.Name,
		TargetRiskLevel:   input.TargetRiskLevel,
		Description:       input.Description,
		Discount:          input.Discount,
		OfferType:         input.OfferType,
		StartDate:         now,
		EndDate:           now.Add(time.Duration(input.DurationDays) * 24 * time.Hour),
		IsActive:          true,
		CustomersTargeted: len(targeted),
	}
	if err := s.campaigns.Insert(ctx, campaign); err != nil {
		return models.RetentionCampaign{}, err
	}

	s.log.Info("Campaign created", map[string]interface{}{
		"campaignId":        campaign.CampaignID,
		"targetRiskLevel":   campaign.TargetRiskLevel,
		"customersTargeted": campaign.CustomersTargeted,
	})
	return campaign, nil
}

// All returns every campaign, newest first.
func (s *Service) All(ctx context.Context) ([]models.RetentionCampaign, error) {
	return s.campaigns.ListAll(ctx)
}

// Active returns campaigns that are flagged active and whose date
// window covers now.
func (s *Service) Active(ctx context.Context) ([]models.RetentionCampaign, error) {
	campaigns, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]models.RetentionCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		if !c.StartDate.After(now) && !c.EndDate.Before(now) {
			active = append(active, c)
		}
	}
	return active, nil
}

// UpdateStatus patches a campaign's active flag and success rate.
func (s *Service) UpdateStatus(ctx context.Context, campaignID string, isActive bool, successRate *float64) error {
	return s.campaigns.UpdateStatus(ctx, campaignID, isActive, successRate)
}

// Recommend analyzes the risk segment and produces campaign ideas,
// substituting the canned rule table when the generator fails.
func (s *Service) Recommend(ctx context.Context, riskLevel string) (RecommendationSet, error) {
	customers, err := s.customers.FindByRisk(ctx, riskLevel)
	if err != nil {
		return RecommendationSet{}, err
	}
	if len(customers) == 0 {
		return RecommendationSet{Recommendations: []models.CampaignRecommendation{}}, nil
	}

	patterns, err := AnalyzePatterns(riskLevel, customers)
	if err != nil {
		return RecommendationSet{}, err
	}

	set := RecommendationSet{
		TargetCount: len(customers),
		Patterns:    patterns,
	}

	if s.generator != nil {
		recommendations, err := s.generator.Generate(ctx, riskLevel, len(customers), patterns)
		if err == nil {
			set.Recommendations = recommendations
			return set, nil
		}
		s.log.WithError(err).Warn("Campaign generator failed, using fallback recommendations", map[string]interface{}{
			"riskLevel": riskLevel,
		})
	}

	set.Recommendations = FallbackRecommendations(riskLevel)
	return set, nil
}
