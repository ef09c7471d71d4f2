// internal/models/customer.go
package models

import "time"

// Risk level buckets derived from churn probability.
const (
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// Canonical contract values. Records with other values are excluded
// from contract analysis buckets.
const (
	ContractMonthToMonth = "Month-to-month"
	ContractOneYear      = "One year"
	ContractTwoYear      = "Two year"
)

// Customer is the canonical customer record all ingestion paths
// converge to. Enumerated string fields carry known canonical values
// but are not validated against them.
type Customer struct {
	CustomerID       string    `json:"customerId"`
	Gender           string    `json:"gender"`
	SeniorCitizen    bool      `json:"seniorCitizen"`
	Partner          bool      `json:"partner"`
	Dependents       bool      `json:"dependents"`
	Tenure           int       `json:"tenure"` // months
	PhoneService     bool      `json:"phoneService"`
	MultipleLines    string    `json:"multipleLines"`
	InternetService  string    `json:"internetService"`
	OnlineSecurity   string    `json:"onlineSecurity"`
	OnlineBackup     string    `json:"onlineBackup"`
	DeviceProtection string    `json:"deviceProtection"`
	TechSupport      string    `json:"techSupport"`
	StreamingTV      string    `json:"streamingTV"`
	StreamingMovies  string    `json:"streamingMovies"`
	Contract         string    `json:"contract"`
	PaperlessBilling bool      `json:"paperlessBilling"`
	PaymentMethod    string    `json:"paymentMethod"`
	MonthlyCharges   float64   `json:"monthlyCharges"`
	TotalCharges     float64   `json:"totalCharges"`
	Churn            bool      `json:"churn"`
	ChurnProbability *float64  `json:"churnProbability,omitempty"` // set once a risk assessment has run
	RiskLevel        *string   `json:"riskLevel,omitempty"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// CustomerProfile is the subset of customer fields consumed by risk
// classification.
type CustomerProfile struct {
	Tenure           int     `json:"tenure"`
	MonthlyCharges   float64 `json:"monthlyCharges"`
	TotalCharges     float64 `json:"totalCharges"`
	Contract         string  `json:"contract"`
	PaymentMethod    string  `json:"paymentMethod"`
	InternetService  string  `json:"internetService"`
	SeniorCitizen    bool    `json:"seniorCitizen"`
	Partner          bool    `json:"partner"`
	Dependents       bool    `json:"dependents"`
	PhoneService     bool    `json:"phoneService"`
	MultipleLines    string  `json:"multipleLines"`
	OnlineSecurity   string  `json:"onlineSecurity"`
	OnlineBackup     string  `json:"onlineBackup"`
	DeviceProtection string  `json:"deviceProtection"`
	TechSupport      string  `json:"techSupport"`
	StreamingTV      string  `json:"streamingTV"`
	StreamingMovies  string  `json:"streamingMovies"`
	PaperlessBilling bool    `json:"paperlessBilling"`
}

// Profile extracts the classification subset of a customer record.
func (c Customer) Profile() CustomerProfile {
	return CustomerProfile{
		Tenure:           c.Tenure,
		MonthlyCharges:   c.MonthlyCharges,
		TotalCharges:     c.TotalCharges,
		Contract:         c.Contract,
		PaymentMethod:    c.PaymentMethod,
		InternetService:  c.InternetService,
		SeniorCitizen:    c.SeniorCitizen,
		Partner:          c.Partner,
		Dependents:       c.Dependents,
		PhoneService:     c.PhoneService,
		MultipleLines:    c.MultipleLines,
		OnlineSecurity:   c.OnlineSecurity,
		OnlineBackup:     c.OnlineBackup,
		DeviceProtection: c.DeviceProtection,
		TechSupport:      c.TechSupport,
		StreamingTV:      c.StreamingTV,
		StreamingMovies:  c.StreamingMovies,
		PaperlessBilling: c.PaperlessBilling,
	}
}

// CustomerUpdate is a partial edit of the directly editable customer
// fields. Nil means "leave unchanged".
type CustomerUpdate struct {
	MonthlyCharges  *float64 `json:"monthlyCharges,omitempty"`
	Contract        *string  `json:"contract,omitempty"`
	PaymentMethod   *string  `json:"paymentMethod,omitempty"`
	InternetService *string  `json:"internetService,omitempty"`
}
