package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractReturnFacts is everything recorded about a contract at vehicle return
type ContractReturnFacts struct {
	ContractStartDate time.Time
	ContractEndDate   time.Time
	ReturnDate        time.Time
	ReturnTime        TimeOfDay
	DailyRate         decimal.Decimal
	StartMileage      int64
	EndMileage        int64
	AllowedKmPerDay   int64
	ContractDays      int64
	FuelLevelStart    FuelLevel
	FuelLevelEnd      FuelLevel
}

// Result holds the charges owed on return plus the informational figures
type Result struct {
	LateFee              decimal.Decimal
	FuelCharge           decimal.Decimal
	MileageCharge        decimal.Decimal
	ContractDurationDays int64
	DistanceTraveled     int64
}

// Total returns the sum of all charges
func (r Result) Total() decimal.Decimal {
	return r.LateFee.Add(r.FuelCharge).Add(r.MileageCharge)
}

// HasCharges returns true if anything is owed
func (r Result) HasCharges() bool {
	return r.Total().IsPositive()
}
