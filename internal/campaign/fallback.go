// internal/campaign/fallback.go
package campaign

import "churn-analytics/internal/models"

func discount(percent float64) *float64 {
	return &percent
}

// FallbackRecommendations is the fixed rule table substituted when the
// recommendation generator fails: two canned offers for High and
// Medium risk segments, one for everything else.
func FallbackRecommendations(riskLevel string) []models.CampaignRecommendation {
	switch riskLevel {
	case models.RiskLevelHigh:
		return []models.CampaignRecommendation{
			{
				Name:          "Emergency Retention Offer",
				OfferType:     "Discount",
				Discount:      discount(25),
				Description:   "25% discount for 6 months to retain high-risk customers",
				Effectiveness: 8,
			},
			{
				Name:          "Contract Upgrade Incentive",
				OfferType:     "Contract",
				Discount:      discount(15),
				Description:   "15% discount for upgrading to annual contract",
				Effectiveness: 7,
			},
		}
	case models.RiskLevelMedium:
		return []models.CampaignRecommendation{
			{
				Name:          "Loyalty Reward Program",
				OfferType:     "Service",
				Description:   "Free premium services for 3 months",
				Effectiveness: 6,
			},
			{
				Name:          "Payment Method Incentive",
				OfferType:     "Discount",
				Discount:      discount(10),
				Description:   "10% discount for switching to automatic payments",
				Effectiveness: 7,
			},
		}
	default:
		return []models.CampaignRecommendation{
			{
				Name:          "Preventive Care Package",
				OfferType:     "Service",
				Description:   "Free tech support and device protection",
				Effectiveness: 5,
			},
		}
	}
}
