package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default tariff values applied when no tariff is configured
const (
	DefaultPricePerFuelQuarter = 50
	fuelQuarterPercent         = 25
)

// DefaultPricePerExcessKm is the default charge per kilometre over the allowance
var DefaultPricePerExcessKm = decimal.NewFromFloat(0.5)

// Tariff holds the unit prices used for return charges
type Tariff struct {
	PricePerFuelQuarter decimal.Decimal
	PricePerExcessKm    decimal.Decimal
}

// DefaultTariff returns the standard fleet tariff
func DefaultTariff() Tariff {
	return Tariff{
		PricePerFuelQuarter: decimal.NewFromInt(DefaultPricePerFuelQuarter),
		PricePerExcessKm:    DefaultPricePerExcessKm,
	}
}

// Calculator computes the charges owed when a vehicle comes back.
// It is stateless apart from its tariff and reference location,
// and safe for concurrent use.
type Calculator struct {
	tariff   Tariff
	location *time.Location
}

// Option configures a Calculator
type Option func(*Calculator)

// WithTariff overrides the default unit prices
func WithTariff(t Tariff) Option {
	return func(c *Calculator) {
		c.tariff = t
	}
}

// WithLocation sets the location in which due dates and return times are read.
// A nil location is ignored.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewCalculator creates a calculator with the default tariff in the local zone
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		tariff:   DefaultTariff(),
		location: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tariff returns the unit prices in use
func (c *Calculator) Tariff() Tariff {
	return c.tariff
}

// Location returns the reference location
func (c *Calculator) Location() *time.Location {
	return c.location
}

// DueInstant returns the last second of the contract end date
func (c *Calculator) DueInstant(contractEndDate time.Time) time.Time {
	y, m, d := contractEndDate.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, c.location)
}

// LateFee charges one daily rate for every started day past the due instant.
// Missing inputs, a non-positive rate, or an on-time return yield zero.
func (c *Calculator) LateFee(contractEndDate, returnDate time.Time, returnTime TimeOfDay, dailyRate decimal.Decimal) decimal.Decimal {
	if contractEndDate.IsZero() || returnDate.IsZero() || returnTime.IsZero() || !dailyRate.IsPositive() {
		return decimal.Zero
	}

	due := c.DueInstant(contractEndDate)
	returned := returnTime.On(returnDate, c.location)
	if !returned.After(due) {
		return decimal.Zero
	}

	return dailyRate.Mul(decimal.NewFromInt(ceilDays(returned.Sub(due))))
}

// FuelCharge bills every started quarter tank that is missing on return
func (c *Calculator) FuelCharge(start, end FuelLevel) decimal.Decimal {
	diff := start.Percent().Sub(end.Percent())
	if !diff.IsPositive() {
		return decimal.Zero
	}

	quarters := diff.Div(decimal.NewFromInt(fuelQuarterPercent)).Ceil()
	return nonNegative(quarters.Mul(c.tariff.PricePerFuelQuarter))
}

// MileageCharge bills the kilometres driven beyond allowedKmPerDay*days.
// Any missing (non-positive) input yields zero.
func (c *Calculator) MileageCharge(startMileage, endMileage, allowedKmPerDay, days int64) decimal.Decimal {
	if startMileage <= 0 || endMileage <= 0 || allowedKmPerDay <= 0 || days <= 0 {
		return decimal.Zero
	}

	excess := (endMileage - startMileage) - allowedKmPerDay*days
	if excess <= 0 {
		return decimal.Zero
	}

	return nonNegative(decimal.NewFromInt(excess).Mul(c.tariff.PricePerExcessKm))
}

// Settle computes every return charge for one contract
func (c *Calculator) Settle(facts ContractReturnFacts) Result {
	return Result{
		LateFee:              c.LateFee(facts.ContractEndDate, facts.ReturnDate, facts.ReturnTime, facts.DailyRate),
		FuelCharge:           c.FuelCharge(facts.FuelLevelStart, facts.FuelLevelEnd),
		MileageCharge:        c.MileageCharge(facts.StartMileage, facts.EndMileage, facts.AllowedKmPerDay, facts.ContractDays),
		ContractDurationDays: ContractDurationDays(facts.ContractStartDate, facts.ContractEndDate),
		DistanceTraveled:     DistanceTraveled(facts.StartMileage, facts.EndMileage),
	}
}

// ContractDurationDays returns the number of started days between two dates,
// regardless of order. Either date missing yields zero.
func ContractDurationDays(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	span := wallClock(end).Sub(wallClock(start))
	if span < 0 {
		span = -span
	}
	return ceilDays(span)
}

// DistanceTraveled returns the odometer delta, never negative
func DistanceTraveled(startMileage, endMileage int64) int64 {
	if endMileage <= startMileage {
		return 0
	}
	return endMileage - startMileage
}

// LateFee computes a late fee with the default calculator
func LateFee(contractEndDate, returnDate time.Time, returnTime TimeOfDay, dailyRate decimal.Decimal) decimal.Decimal {
	return NewCalculator().LateFee(contractEndDate, returnDate, returnTime, dailyRate)
}

// FuelCharge computes a fuel charge with the default tariff
func FuelCharge(start, end FuelLevel) decimal.Decimal {
	return NewCalculator().FuelCharge(start, end)
}

// MileageCharge computes an excess mileage charge with the default tariff
func MileageCharge(startMileage, endMileage, allowedKmPerDay, days int64) decimal.Decimal {
	return NewCalculator().MileageCharge(startMileage, endMileage, allowedKmPerDay, days)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
