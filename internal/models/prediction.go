// internal/models/prediction.go
package models

import "time"

// RiskAssessment is the output of one churn-risk scoring run, either
// from the external classifier or the rule-based fallback.
type RiskAssessment struct {
	ChurnProbability float64  `json:"churnProbability"` // 0-100
	RiskLevel        string   `json:"riskLevel"`        // Low|Medium|High
	KeyFactors       []string `json:"keyFactors"`       // ordered, at most 3
	Recommendations  []string `json:"recommendations"`  // ordered, at most 3
	Confidence       float64  `json:"confidence"`       // 0-100
}

// ChurnPrediction is one persisted assessment. The history is
// append-only: every run produces a new row.
type ChurnPrediction struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customerId"`
	PredictionDate   time.Time `json:"predictionDate"`
	ChurnProbability float64   `json:"churnProbability"`
	RiskLevel        string    `json:"riskLevel"`
	KeyFactors       []string  `json:"keyFactors"`
	Recommendations  []string  `json:"recommendations"`
	Confidence       float64   `json:"confidence"`
}
