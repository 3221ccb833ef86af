package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FuelLabel is a canonical tank reading recorded on the handover sheet
type FuelLabel string

const (
	FuelEmpty        FuelLabel = "empty"
	FuelQuarter      FuelLabel = "1/4"
	FuelHalf         FuelLabel = "1/2"
	FuelThreeQuarter FuelLabel = "3/4"
	FuelFull         FuelLabel = "full"
)

var fuelLabelPercent = map[FuelLabel]int64{
	FuelEmpty:        0,
	FuelQuarter:      25,
	FuelHalf:         50,
	FuelThreeQuarter: 75,
	FuelFull:         100,
}

// IsValid checks if the label is one of the canonical tank readings
func (l FuelLabel) IsValid() bool {
	_, ok := fuelLabelPercent[l]
	return ok
}

// String returns the string representation of FuelLabel
func (l FuelLabel) String() string {
	return string(l)
}

// FuelLevel is a tank reading that arrives either as a canonical label or as
// a raw percentage. Percent is the single conversion point between the two.
type FuelLevel struct {
	label   FuelLabel
	percent decimal.Decimal
	numeric bool
}

// FuelLevelFromLabel creates a label-based fuel level.
// Unknown labels are kept as-is and resolve to 0%.
func FuelLevelFromLabel(label FuelLabel) FuelLevel {
	return FuelLevel{label: label}
}

// FuelLevelFromPercent creates a percentage-based fuel level
func FuelLevelFromPercent(percent decimal.Decimal) FuelLevel {
	return FuelLevel{percent: percent, numeric: true}
}

// ParseFuelLabel normalizes free text (" Full ", "1/2") into a label-based level
func ParseFuelLabel(s string) FuelLevel {
	return FuelLevelFromLabel(FuelLabel(strings.ToLower(strings.TrimSpace(s))))
}

// IsPercentage returns true if the level was recorded as a number
func (f FuelLevel) IsPercentage() bool {
	return f.numeric
}

// Label returns the recorded label, if the level was recorded as one
func (f FuelLevel) Label() (FuelLabel, bool) {
	if f.numeric {
		return "", false
	}
	return f.label, true
}

// Percent resolves the level to a tank percentage
func (f FuelLevel) Percent() decimal.Decimal {
	if f.numeric {
		return f.percent
	}
	return decimal.NewFromInt(fuelLabelPercent[f.label])
}

// String returns the label or the percentage followed by "%"
func (f FuelLevel) String() string {
	if f.numeric {
		return f.percent.String() + "%"
	}
	return string(f.label)
}
