package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChargeKind labels the settlement charge being recorded.
type ChargeKind string

const (
	ChargeLateFee ChargeKind = "late_fee"
	ChargeFuel    ChargeKind = "fuel"
	ChargeMileage ChargeKind = "mileage"
)

// EngineMetrics holds the instruments of the settlement, fiscal and
// arrears components.
type EngineMetrics struct {
	chargesTotal   *Counter
	amountTotal    *Counter
	fiscalFallback *Counter
	atRiskCustomer *Gauge
}

// NewEngineMetrics creates the engine instruments on meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	em := &EngineMetrics{}
	var err error

	em.chargesTotal, err = NewCounter(meter,
		"fleet_settlement_charges_total",
		"Number of non-zero settlement charges applied",
		"{charges}",
	)
	if err != nil {
		return nil, err
	}

	em.amountTotal, err = NewCounter(meter,
		"fleet_settlement_amount_total",
		"Settlement charge amount in minor currency units (halalas)",
		"{halalas}",
	)
	if err != nil {
		return nil, err
	}

	em.fiscalFallback, err = NewCounter(meter,
		"fleet_fiscal_fallback_total",
		"Number of invoice QR payloads emitted as a JSON fallback",
		"{payloads}",
	)
	if err != nil {
		return nil, err
	}

	em.atRiskCustomer, err = NewGauge(meter,
		"fleet_arrears_at_risk_customers",
		"Customers in an at-risk status at the last evaluation",
		"{customers}",
	)
	if err != nil {
		return nil, err
	}

	return em, nil
}

// RecordCharge counts a settlement charge and adds its amount.
// Zero and negative amounts are ignored.
func (em *EngineMetrics) RecordCharge(ctx context.Context, kind ChargeKind, currency string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	attrs := []attribute.KeyValue{AttrChargeKind.String(string(kind)), AttrCurrency.String(currency)}
	em.chargesTotal.Inc(ctx, attrs...)
	em.amountTotal.Add(ctx, amount.Shift(2).Round(0).IntPart(), attrs...)
}

// RecordFiscalFallback counts a QR payload that fell back to JSON.
func (em *EngineMetrics) RecordFiscalFallback(ctx context.Context) {
	em.fiscalFallback.Inc(ctx)
}

// RecordAtRisk records how many customers currently hold status.
func (em *EngineMetrics) RecordAtRisk(ctx context.Context, status string, count int64) {
	em.atRiskCustomer.Record(ctx, count, AttrRiskStatus.String(status))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
