// internal/models/statistics.go
package models

// RiskDistribution counts customers per explicit risk level. Customers
// without an assessment are excluded from all three buckets.
type RiskDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ContractBucket aggregates churn per canonical contract value.
type ContractBucket struct {
	Total     int     `json:"total"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churnRate"`
}

// ContractAnalysis covers exactly the three canonical contract values;
// records with other contract strings fall in no bucket.
type ContractAnalysis struct {
	MonthToMonth ContractBucket `json:"monthToMonth"`
	OneYear      ContractBucket `json:"oneYear"`
	TwoYear      ContractBucket `json:"twoYear"`
}

// ChurnStatistics is recomputed from scratch on every request; it has
// no lifecycle of its own.
type ChurnStatistics struct {
	TotalCustomers   int              `json:"totalCustomers"`
	ActiveCustomers  int              `json:"activeCustomers"`
	ChurnedCustomers int              `json:"churnedCustomers"`
	ChurnRate        float64          `json:"churnRate"`
	RiskDistribution RiskDistribution `json:"riskDistribution"`
	ContractAnalysis ContractAnalysis `json:"contractAnalysis"`
}

// PatternSummary aggregates a risk segment for campaign targeting.
type PatternSummary struct {
	AvgTenure          float64        `json:"avgTenure"`
	AvgMonthlyCharges  float64        `json:"avgMonthlyCharges"`
	MostCommonContract string         `json:"mostCommonContract"`
	MostCommonPayment  string         `json:"mostCommonPayment"`
	InternetServices   map[string]int `json:"internetServices"`
}
