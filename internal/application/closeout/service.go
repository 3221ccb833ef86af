package closeout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/fiscal"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/settlement"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/shared/valueobject"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/telemetry"
)

// DefaultVATRate is the standard VAT rate applied to return charges
var DefaultVATRate = decimal.RequireFromString("0.15")

const tracerName = "github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/closeout"

// Seller identifies the business issuing the invoice
type Seller struct {
	Name      string
	VATNumber string
}

// Service closes out a rental contract: it settles the return charges,
// adds VAT and produces the invoice QR payload.
type Service struct {
	seller     Seller
	calculator *settlement.Calculator
	vatRate    decimal.Decimal
	currency   valueobject.Currency
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *telemetry.EngineMetrics
	now        func() time.Time
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithCalculator sets the settlement calculator (tariff and location)
func WithCalculator(calc *settlement.Calculator) Option {
	return func(s *Service) {
		if calc != nil {
			s.calculator = calc
		}
	}
}

// WithVATRate overrides DefaultVATRate
func WithVATRate(rate decimal.Decimal) Option {
	return func(s *Service) {
		s.vatRate = rate
	}
}

// WithCurrency sets the invoice currency
func WithCurrency(c valueobject.Currency) Option {
	return func(s *Service) {
		if c != "" {
			s.currency = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer used for closeout spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics enables charge and fallback metrics
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the clock used when a request carries no issue time
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new closeout Service
func NewService(seller Seller, opts ...Option) *Service {
	s := &Service{
		seller:     seller,
		calculator: settlement.NewCalculator(),
		vatRate:    DefaultVATRate,
		currency:   valueobject.DefaultCurrency,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request is one contract ready to be closed
type Request struct {
	ContractNumber string
	Facts          settlement.ContractReturnFacts
	IssuedAt       time.Time // zero means now
}

// Statement is the outcome of a closeout
type Statement struct {
	ContractNumber string
	Settlement     settlement.Result
	Subtotal       valueobject.Money
	VAT            valueobject.Money
	Total          valueobject.Money
	Invoice        fiscal.InvoiceFields
	QRPayload      fiscal.Payload
}

// Close settles a returned contract and issues its invoice payload.
// VAT is charged on the sum of the return charges and rounded half up to
// two decimals.
func (s *Service) Close(ctx context.Context, req Request) (*Statement, error) {
	ctx, span := s.tracer.Start(ctx, "closeout.Close",
		trace.WithAttributes(attribute.String("contract.number", req.ContractNumber)))
	defer span.End()

	result := s.calculator.Settle(req.Facts)

	charges := []struct {
		kind   telemetry.ChargeKind
		amount decimal.Decimal
	}{
		{telemetry.ChargeLateFee, result.LateFee},
		{telemetry.ChargeFuel, result.FuelCharge},
		{telemetry.ChargeMileage, result.MileageCharge},
	}
	parts := make([]valueobject.Money, 0, len(charges))
	for _, c := range charges {
		parts = append(parts, s.money(c.amount))
		if s.metrics != nil {
			s.metrics.RecordCharge(ctx, c.kind, string(s.currency), c.amount)
		}
	}

	subtotal, err := valueobject.Sum(s.currency, parts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subtotal")
		return nil, fmt.Errorf("closeout %s: %w", req.ContractNumber, err)
	}
	subtotal = subtotal.Round(valueobject.MinorUnits)
	vat := subtotal.Multiply(s.vatRate).Round(valueobject.MinorUnits)
	total, err := subtotal.Add(vat)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "total")
		return nil, fmt.Errorf("closeout %s: %w", req.ContractNumber, err)
	}

	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = s.now()
	}
	invoice := fiscal.NewInvoiceFields(s.seller.Name, s.seller.VATNumber, issuedAt, total.Amount(), vat.Amount())
	payload := s.encodeTraced(ctx, invoice)

	span.SetAttributes(
		attribute.String("closeout.total", total.StringFixed(valueobject.MinorUnits)),
		attribute.Int64("closeout.duration_days", result.ContractDurationDays),
		attribute.Int64("closeout.distance_km", result.DistanceTraveled),
	)
	s.logger.Info("contract closed",
		zap.String("contract", req.ContractNumber),
		zap.String("late_fee", result.LateFee.String()),
		zap.String("fuel_charge", result.FuelCharge.String()),
		zap.String("mileage_charge", result.MileageCharge.String()),
		zap.String("total", total.String()),
	)

	return &Statement{
		ContractNumber: req.ContractNumber,
		Settlement:     result,
		Subtotal:       subtotal,
		VAT:            vat,
		Total:          total,
		Invoice:        invoice,
		QRPayload:      payload,
	}, nil
}

// EncodeInvoice produces the QR payload for externally computed invoice fields
func (s *Service) EncodeInvoice(ctx context.Context, fields fiscal.InvoiceFields) fiscal.Payload {
	return s.encodeTraced(ctx, fields)
}

// encodeTraced builds a per-call encoder so the fallback hook can reach
// the current span
func (s *Service) encodeTraced(ctx context.Context, fields fiscal.InvoiceFields) fiscal.Payload {
	ctx, span := s.tracer.Start(ctx, "fiscal.Encode")
	defer span.End()

	fallback := false
	payload := fiscal.NewEncoder(
		fiscal.WithLogger(s.logger.Named("fiscal")),
		fiscal.WithFallbackObserver(func(_ fiscal.InvoiceFields, cause error) {
			fallback = true
			span.RecordError(cause)
			if s.metrics != nil {
				s.metrics.RecordFiscalFallback(ctx)
			}
		}),
	).Encode(fields)

	span.SetAttributes(telemetry.AttrFallback.Bool(fallback))
	return payload
}

func (s *Service) money(amount decimal.Decimal) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, s.currency)
	return m
}
