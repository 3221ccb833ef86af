package arrears

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskStatus classifies a customer's payment standing
type RiskStatus string

const (
	RiskClear  RiskStatus = "clear"
	RiskLow    RiskStatus = "low"
	RiskMedium RiskStatus = "medium"
	RiskHigh   RiskStatus = "high"
)

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskClear, RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// IsAtRisk returns true for statuses that call for collection work
func (s RiskStatus) IsAtRisk() bool {
	return s == RiskMedium || s == RiskHigh
}

// String returns the string representation of RiskStatus
func (s RiskStatus) String() string {
	return string(s)
}

// CustomerSummary is one customer's pre-aggregated financial exposure
type CustomerSummary struct {
	CustomerID         uuid.UUID
	CustomerName       string
	TotalContracted    decimal.Decimal
	TotalPaid          decimal.Decimal
	OutstandingBalance decimal.Decimal
	ActiveContracts    int
	OverdueContracts   int
	OldestOverdueDate  *time.Time
	RiskStatus         RiskStatus
}

// NewCustomerSummary creates a summary with the outstanding balance
// derived as contracted minus paid
func NewCustomerSummary(
	customerID uuid.UUID,
	customerName string,
	totalContracted decimal.Decimal,
	totalPaid decimal.Decimal,
	activeContracts int,
	overdueContracts int,
	oldestOverdueDate *time.Time,
) CustomerSummary {
	return CustomerSummary{
		CustomerID:         customerID,
		CustomerName:       customerName,
		TotalContracted:    totalContracted,
		TotalPaid:          totalPaid,
		OutstandingBalance: totalContracted.Sub(totalPaid),
		ActiveContracts:    activeContracts,
		OverdueContracts:   overdueContracts,
		OldestOverdueDate:  oldestOverdueDate,
	}
}

// OverdueDays returns the whole days elapsed since the oldest overdue
// date (0 if nothing is overdue)
func (s CustomerSummary) OverdueDays(asOf time.Time) int {
	if s.OldestOverdueDate == nil || !asOf.After(*s.OldestOverdueDate) {
		return 0
	}
	return int(asOf.Sub(*s.OldestOverdueDate).Hours() / 24)
}

// HasOverdue returns true if at least one contract is overdue
func (s CustomerSummary) HasOverdue() bool {
	return s.OverdueContracts > 0
}
