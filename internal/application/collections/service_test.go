package collections

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/text/language"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/telemetry"
)

var asOf = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func customer(faker *gofakeit.Faker, contracted, paid int64, overdue int, overdueSince int) arrears.CustomerSummary {
	var oldest *time.Time
	if overdue > 0 {
		d := asOf.AddDate(0, 0, -overdueSince)
		oldest = &d
	}
	return arrears.NewCustomerSummary(uuid.New(), faker.Name(),
		decimal.NewFromInt(contracted), decimal.NewFromInt(paid), 1, overdue, oldest)
}

func TestService_Evaluate(t *testing.T) {
	faker := gofakeit.New(0)
	summaries := []arrears.CustomerSummary{
		customer(faker, 10000, 10000, 0, 0), // clear
		customer(faker, 5000, 4000, 1, 3),   // low
		customer(faker, 9000, 6000, 1, 10),  // medium, 3000
		customer(faker, 20000, 8000, 2, 40), // high, 12000
		customer(faker, 7000, 0, 0, 0),      // low, nothing overdue
	}

	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewEngineMetrics(
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	svc := NewService(
		WithTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")),
		WithMetrics(metrics),
	)

	report := svc.Evaluate(context.Background(), summaries, asOf)

	assert.Equal(t, 5, report.Evaluated)
	assert.Equal(t, map[arrears.RiskStatus]int{
		arrears.RiskClear:  1,
		arrears.RiskLow:    2,
		arrears.RiskMedium: 1,
		arrears.RiskHigh:   1,
	}, report.StatusCounts)

	require.Len(t, report.AtRisk, 2)

	high := report.AtRisk[0]
	assert.Equal(t, summaries[3].CustomerID, high.Customer.CustomerID)
	assert.Equal(t, arrears.RiskHigh, high.Customer.RiskStatus)
	assert.Equal(t, 40, high.OverdueDays)
	require.Len(t, high.Plan, 4)
	assert.Equal(t, arrears.ActionLegalCollection, high.Plan[0].Action)

	medium := report.AtRisk[1]
	assert.Equal(t, arrears.RiskMedium, medium.Customer.RiskStatus)
	assert.Equal(t, 10, medium.OverdueDays)
	require.Len(t, medium.Plan, 2)
	assert.Equal(t, arrears.ActionFinalNotice, medium.Plan[0].Action)

	assert.Equal(t, "", summaries[3].RiskStatus.String(), "input must not be modified")

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "collections.Evaluate", ended[0].Name())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	gauge, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, gauge.DataPoints, 2)
}

func TestService_Evaluate_CustomPolicyAndTitles(t *testing.T) {
	titles, err := arrears.NewCatalogTitles(language.Arabic)
	require.NoError(t, err)

	svc := NewService(
		WithPolicy(arrears.RiskPolicy{
			Threshold:     decimal.NewFromInt(500),
			HighThreshold: decimal.NewFromInt(900),
		}),
		WithTitles(titles),
	)

	faker := gofakeit.New(0)
	report := svc.Evaluate(context.Background(), []arrears.CustomerSummary{
		customer(faker, 5000, 4000, 1, 2),
	}, asOf)

	require.Len(t, report.AtRisk, 1)
	assert.Equal(t, arrears.RiskHigh, report.AtRisk[0].Customer.RiskStatus)
	require.Len(t, report.AtRisk[0].Plan, 1)
	assert.Equal(t, "التواصل مع العميل", report.AtRisk[0].Plan[0].Title)
}

func TestService_Evaluate_Empty(t *testing.T) {
	report := NewService().Evaluate(context.Background(), nil, asOf)

	assert.Equal(t, 0, report.Evaluated)
	assert.Empty(t, report.AtRisk)
	assert.Equal(t, asOf, report.AsOf)
}
