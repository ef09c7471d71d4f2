// internal/prediction/fallback.go
package prediction

import (
	"churn-analytics/internal/models"
)

// Rule weights for the rule-based scorer.
const (
	weightVeryShortTenure = 30
	weightShortTenure     = 20
	weightMonthToMonth    = 25
	weightElectronicCheck = 15
	weightHighCharges     = 20
	weightSeniorCitizen   = 10

	maxChurnProbability = 95
	fallbackConfidence  = 75

	highChargesThreshold = 80
)

// FallbackScore is the rule-based churn scorer used whenever the
// external classifier is unavailable or returns unusable output. It is
// pure and deterministic. Rules fire independently, each contributing
// points plus one factor and one recommendation; only the first three
// of each are returned, in rule order.
func FallbackScore(profile models.CustomerProfile) models.RiskAssessment {
	riskScore := 0
	var factors []string
	var recommendations []string

	// Tenure risk
	if profile.Tenure < 6 {
		riskScore += weightVeryShortTenure
		factors = append(factors, "Very short tenure (< 6 months)")
		recommendations = append(recommendations, "Implement early engagement program")
	} else if profile.Tenure < 12 {
		riskScore += weightShortTenure
		factors = append(factors, "Short tenure (< 12 months)")
		recommendations = append(recommendations, "Provide loyalty incentives")
	}

	// Contract risk
	if profile.Contract == models.ContractMonthToMonth {
		riskScore += weightMonthToMonth
		factors = append(factors, "Month-to-month contract")
		recommendations = append(recommendations, "Offer contract upgrade incentives")
	}

	// Payment method risk
	if profile.PaymentMethod == "Electronic check" {
		riskScore += weightElectronicCheck
		factors = append(factors, "Electronic check payment method")
		recommendations = append(recommendations, "Encourage automatic payment setup")
	}

	// High charges risk
	if profile.MonthlyCharges > highChargesThreshold {
		riskScore += weightHighCharges
		factors = append(factors, "High monthly charges")
		recommendations = append(recommendations, "Offer service optimization consultation")
	}

	// Senior citizen risk
	if profile.SeniorCitizen {
		riskScore += weightSeniorCitizen
		factors = append(factors, "Senior citizen demographic")
		recommendations = append(recommendations, "Provide senior-friendly support")
	}

	churnProbability := float64(riskScore)
	if churnProbability > maxChurnProbability {
		churnProbability = maxChurnProbability
	}

	return models.RiskAssessment{
		ChurnProbability: churnProbability,
		RiskLevel:        RiskLevelFor(churnProbability),
		KeyFactors:       truncate(factors, 3),
		Recommendations:  truncate(recommendations, 3),
		Confidence:       fallbackConfidence,
	}
}

// RiskLevelFor buckets a churn probability. The boundaries are
// exclusive: exactly 60 is Medium, exactly 30 is Low.
func RiskLevelFor(churnProbability float64) string {
	switch {
	case churnProbability > 60:
		return models.RiskLevelHigh
	case churnProbability > 30:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func truncate(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}
