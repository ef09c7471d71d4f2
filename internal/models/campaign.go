// internal/models/campaign.go
package models

import "time"

// RetentionCampaign targets a risk segment with an offer.
// CustomersTargeted is a snapshot taken at creation time, not a live
// count.
type RetentionCampaign struct {
	CampaignID        string    `json:"campaignId"`
	Name              string    `json:"name"`
	TargetRiskLevel   string    `json:"targetRiskLevel"`
	Description       string    `json:"description"`
	Discount          *float64  `json:"discount,omitempty"` // percent
	OfferType         string    `json:"offerType"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	IsActive          bool      `json:"isActive"`
	CustomersTargeted int       `json:"customersTargeted"`
	SuccessRate       *float64  `json:"successRate,omitempty"`
}

// CampaignRecommendation is one suggested campaign for a risk segment,
// produced by the recommendation generator or its fallback rule table.
type CampaignRecommendation struct {
	Name          string   `json:"name"`
	OfferType     string   `json:"offerType"` // Discount|Upgrade|Service|Contract
	Discount      *float64 `json:"discount,omitempty"`
	Description   string   `json:"description"`
	Effectiveness int      `json:"effectiveness"` // 1-10
}
