package arrears

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Default risk thresholds in currency units
var (
	DefaultRiskThreshold     = decimal.NewFromInt(1500)
	DefaultHighRiskThreshold = decimal.NewFromInt(5000)
)

// RiskPolicy holds the balance thresholds used to classify customers
type RiskPolicy struct {
	Threshold     decimal.Decimal
	HighThreshold decimal.Decimal
}

// DefaultRiskPolicy returns the standard thresholds
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		Threshold:     DefaultRiskThreshold,
		HighThreshold: DefaultHighRiskThreshold,
	}
}

// SelectAtRisk keeps the customers whose outstanding balance is above
// threshold and who have at least one overdue contract, largest balance
// first. Equal balances keep their input order. summaries is not modified.
func SelectAtRisk(summaries []CustomerSummary, threshold decimal.Decimal) []CustomerSummary {
	atRisk := make([]CustomerSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.OutstandingBalance.GreaterThan(threshold) && s.HasOverdue() {
			atRisk = append(atRisk, s)
		}
	}

	slices.SortStableFunc(atRisk, func(a, b CustomerSummary) int {
		return b.OutstandingBalance.Cmp(a.OutstandingBalance)
	})
	return atRisk
}

// ClassifyRisk derives a status from the balance and overdue count.
// Only customers SelectAtRisk would keep are rated medium or high.
func ClassifyRisk(s CustomerSummary, policy RiskPolicy) RiskStatus {
	switch {
	case !s.OutstandingBalance.IsPositive():
		return RiskClear
	case !s.HasOverdue():
		return RiskLow
	case s.OutstandingBalance.GreaterThan(policy.HighThreshold):
		return RiskHigh
	case s.OutstandingBalance.GreaterThan(policy.Threshold):
		return RiskMedium
	default:
		return RiskLow
	}
}

// Classify returns a copy of summaries with RiskStatus filled in
func (p RiskPolicy) Classify(summaries []CustomerSummary) []CustomerSummary {
	out := make([]CustomerSummary, len(summaries))
	for i, s := range summaries {
		s.RiskStatus = ClassifyRisk(s, p)
		out[i] = s
	}
	return out
}
