package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"churn-analytics/internal/models"
)

func riskLevel(level string) *string {
	return &level
}

func TestComputeEmptyCollection(t *testing.T) {
	stats := Compute(nil)

	assert.Equal(t, models.ChurnStatistics{}, stats)
	assert.Zero(t, stats.ChurnRate)
	assert.Zero(t, stats.RiskDistribution.High)
	assert.Zero(t, stats.ContractAnalysis.MonthToMonth.ChurnRate)
}

func TestComputeContractBreakdown(t *testing.T) {
	customers := []models.Customer{
		{CustomerID: "C1", Contract: models.ContractMonthToMonth, Churn: true},
		{CustomerID: "C2", Contract: models.ContractMonthToMonth, Churn: false},
		{CustomerID: "C3", Contract: models.ContractOneYear, Churn: false},
		{CustomerID: "C4", Contract: models.ContractTwoYear, Churn: true},
	}

	stats := Compute(customers)

	assert.Equal(t, 4, stats.TotalCustomers)
	assert.Equal(t, 2, stats.ChurnedCustomers)
	assert.Equal(t, 2, stats.ActiveCustomers)
	assert.Equal(t, 50.0, stats.ChurnRate)
	assert.Equal(t, models.ContractBucket{Total: 2, Churned: 1, ChurnRate: 50.0}, stats.ContractAnalysis.MonthToMonth)
	assert.Equal(t, models.ContractBucket{Total: 1, Churned: 0, ChurnRate: 0}, stats.ContractAnalysis.OneYear)
	assert.Equal(t, models.ContractBucket{Total: 1, Churned: 1, ChurnRate: 100.0}, stats.ContractAnalysis.TwoYear)
}

func TestComputeRiskDistribution(t *testing.T) {
	customers := []models.Customer{
		{CustomerID: "C1", RiskLevel: riskLevel(models.RiskLevelHigh)},
		{CustomerID: "C2", RiskLevel: riskLevel(models.RiskLevelHigh)},
		{CustomerID: "C3", RiskLevel: riskLevel(models.RiskLevelMedium)},
		{CustomerID: "C4", RiskLevel: riskLevel(models.RiskLevelLow)},
		{CustomerID: "C5"},                                 // never assessed
		{CustomerID: "C6", RiskLevel: riskLevel("Severe")}, // unexpected value
	}

	stats := Compute(customers)

	assert.Equal(t, models.RiskDistribution{High: 2, Medium: 1, Low: 1}, stats.RiskDistribution)
}

func TestComputeRoundsOverallChurnRate(t *testing.T) {
	// 1 of 3 churned: 33.333... rounds to 33.33
	customers := []models.Customer{
		{CustomerID: "C1", Contract: models.ContractMonthToMonth, Churn: true},
		{CustomerID: "C2", Contract: models.ContractMonthToMonth},
		{CustomerID: "C3", Contract: models.ContractMonthToMonth},
	}

	stats := Compute(customers)

	assert.Equal(t, 33.33, stats.ChurnRate)
	assert.InDelta(t, 33.333333, stats.ContractAnalysis.MonthToMonth.ChurnRate, 0.0001)
}

func TestComputeIgnoresUnknownContracts(t *testing.T) {
	customers := []models.Customer{
		{CustomerID: "C1", Contract: "Weekly", Churn: true},
		{CustomerID: "C2", Contract: models.ContractOneYear},
	}

	stats := Compute(customers)

	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 0, stats.ContractAnalysis.MonthToMonth.Total)
	assert.Equal(t, 1, stats.ContractAnalysis.OneYear.Total)
}
