// internal/stats/statistics.go
package stats

import (
	"math"

	"churn-analytics/internal/models"
)

// Compute aggregates churn statistics over the given customer
// collection. Pure and zero-safe: an empty input yields all-zero
// output, never an error. The overall churn rate is rounded to two
// decimals; per-contract rates are left unrounded.
func Compute(customers []models.Customer) models.ChurnStatistics {
	stats := models.ChurnStatistics{
		TotalCustomers: len(customers),
	}

	for _, c := range customers {
		if c.Churn {
			stats.ChurnedCustomers++
		}
		if c.RiskLevel != nil {
			switch *c.RiskLevel {
			case models.RiskLevelHigh:
				stats.RiskDistribution.High++
			case models.RiskLevelMedium:
				stats.RiskDistribution.Medium++
			case models.RiskLevelLow:
				stats.RiskDistribution.Low++
			}
		}
		switch c.Contract {
		case models.ContractMonthToMonth:
			tallyContract(&stats.ContractAnalysis.MonthToMonth, c.Churn)
		case models.ContractOneYear:
			tallyContract(&stats.ContractAnalysis.OneYear, c.Churn)
		case models.ContractTwoYear:
			tallyContract(&stats.ContractAnalysis.TwoYear, c.Churn)
		}
	}

	stats.ActiveCustomers = stats.TotalCustomers - stats.ChurnedCustomers
	if stats.TotalCustomers > 0 {
		rate := float64(stats.ChurnedCustomers) / float64(stats.TotalCustomers) * 100
		stats.ChurnRate = math.Round(rate*100) / 100
	}

	finishContract(&stats.ContractAnalysis.MonthToMonth)
	finishContract(&stats.ContractAnalysis.OneYear)
	finishContract(&stats.ContractAnalysis.TwoYear)

	return stats
}

func tallyContract(bucket *models.ContractBucket, churned bool) {
	bucket.Total++
	if churned {
		bucket.Churned++
	}
}

func finishContract(bucket *models.ContractBucket) {
	if bucket.Total > 0 {
		bucket.ChurnRate = float64(bucket.Churned) / float64(bucket.Total) * 100
	}
}
