// internal/campaign/patterns.go
package campaign

import (
	"math"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/models"
)

// AnalyzePatterns aggregates a risk segment for campaign targeting:
// mean tenure and charges, modal contract and payment method, and an
// internet service histogram. Ties on the modes resolve to the value
// seen first in the input. Fails only on an empty segment.
func AnalyzePatterns(riskLevel string, customers []models.Customer) (models.PatternSummary, error) {
	if len(customers) == 0 {
		return models.PatternSummary{}, errors.NewEmptySegmentError(riskLevel)
	}

	var tenureSum, chargesSum float64
	contracts := newCounter()
	payments := newCounter()
	internet := newCounter()

	for _, c := range customers {
		tenureSum += float64(c.Tenure)
		chargesSum += c.MonthlyCharges
		contracts.add(c.Contract)
		payments.add(c.PaymentMethod)
		internet.add(c.InternetService)
	}

	n := float64(len(customers))
	return models.PatternSummary{
		AvgTenure:          math.Round(tenureSum/n*10) / 10,
		AvgMonthlyCharges:  math.Round(chargesSum/n*100) / 100,
		MostCommonContract: contracts.mode(),
		MostCommonPayment:  payments.mode(),
		InternetServices:   internet.counts,
	}, nil
}

// counter tallies string values while remembering first-occurrence
// order so mode() is deterministic.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// mode returns the value with the highest count; on ties, the value
// that appeared first in the input.
func (c *counter) mode() string {
	best := ""
	bestCount := -1
	for _, value := range c.order {
		if c.counts[value] > bestCount {
			best = value
			bestCount = c.counts[value]
		}
	}
	return best
}
