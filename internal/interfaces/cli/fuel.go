package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/settlement"
)

// FuelLevel accepts either a gauge label ("full", "3/4", ...) or a bare
// number read as a percentage.
type FuelLevel struct {
	level settlement.FuelLevel
}

// UnmarshalYAML implements yaml.Unmarshaler
func (f *FuelLevel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: fuel level must be a label or a percentage", node.Line)
	}

	switch node.ShortTag() {
	case "!!null":
		f.level = settlement.FuelLevel{}
	case "!!int", "!!float":
		pct, err := decimal.NewFromString(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: invalid fuel percentage %q: %w", node.Line, node.Value, err)
		}
		f.level = settlement.FuelLevelFromPercent(pct)
	default:
		f.level = settlement.ParseFuelLabel(node.Value)
	}
	return nil
}

// Level returns the domain value
func (f FuelLevel) Level() settlement.FuelLevel {
	return f.level
}
