package collections

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/telemetry"
)

const tracerName = "github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/collections"

// Service evaluates customer arrears and recommends collection work
type Service struct {
	policy  arrears.RiskPolicy
	titles  arrears.Titles
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *telemetry.EngineMetrics
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithPolicy overrides the default risk thresholds
func WithPolicy(policy arrears.RiskPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithTitles sets the localized collection step titles
func WithTitles(titles arrears.Titles) Option {
	return func(s *Service) {
		if titles != nil {
			s.titles = titles
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

// WithTracer sets the tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics enables the at-risk gauge
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new collections Service
func NewService(opts ...Option) *Service {
	s := &Service{
		policy: arrears.DefaultRiskPolicy(),
		titles: arrears.EnglishTitles{},
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assessment is the collection outlook for one at-risk customer
type Assessment struct {
	Customer    arrears.CustomerSummary
	OverdueDays int
	Plan        []arrears.CollectionAction
}

// Report is the result of one arrears evaluation
type Report struct {
	AsOf         time.Time
	Policy       arrears.RiskPolicy
	Evaluated    int
	StatusCounts map[arrears.RiskStatus]int
	AtRisk       []Assessment
}

// Evaluate classifies every customer and builds a collection plan for
// those at risk, largest outstanding balance first
func (s *Service) Evaluate(ctx context.Context, summaries []arrears.CustomerSummary, asOf time.Time) Report {
	ctx, span := s.tracer.Start(ctx, "collections.Evaluate",
		trace.WithAttributes(attribute.Int("arrears.customers", len(summaries))))
	defer span.End()

	classified := s.policy.Classify(summaries)

	counts := map[arrears.RiskStatus]int{
		arrears.RiskClear:  0,
		arrears.RiskLow:    0,
		arrears.RiskMedium: 0,
		arrears.RiskHigh:   0,
	}
	for _, c := range classified {
		counts[c.RiskStatus]++
	}

	selected := arrears.SelectAtRisk(classified, s.policy.Threshold)
	report := Report{
		AsOf:         asOf,
		Policy:       s.policy,
		Evaluated:    len(summaries),
		StatusCounts: counts,
		AtRisk:       make([]Assessment, 0, len(selected)),
	}
	for _, customer := range selected {
		days := customer.OverdueDays(asOf)
		report.AtRisk = append(report.AtRisk, Assessment{
			Customer:    customer,
			OverdueDays: days,
			Plan:        arrears.BuildCollectionPlanWith(s.titles, customer.OutstandingBalance, days),
		})
		s.logger.Debug("customer at risk",
			zap.String("customer_id", customer.CustomerID.String()),
			zap.String("outstanding", customer.OutstandingBalance.String()),
			zap.Int("overdue_days", days),
			zap.String("risk", customer.RiskStatus.String()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordAtRisk(ctx, arrears.RiskMedium.String(), int64(counts[arrears.RiskMedium]))
		s.metrics.RecordAtRisk(ctx, arrears.RiskHigh.String(), int64(counts[arrears.RiskHigh]))
	}
	span.SetAttributes(attribute.Int("arrears.at_risk", len(report.AtRisk)))
	s.logger.Info("arrears evaluated",
		zap.Int("customers", report.Evaluated),
		zap.Int("at_risk", len(report.AtRisk)),
		zap.Time("as_of", asOf),
	)

	return report
}
