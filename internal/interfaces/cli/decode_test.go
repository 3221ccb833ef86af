package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/closeout"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/collections"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/settlement"
)

// ==================== SettleDocument ====================

const settleYAML = `
contractNumber: RC-2024-0042
contractStartDate: "2024-01-05"
contractEndDate: "2024-01-10"
returnDate: "2024-01-12"
returnTime: "10:00"
dailyRate: "100"
startMileage: 10000
endMileage: 11500
allowedKmPerDay: 200
contractDays: 5
fuelLevelStart: full
fuelLevelEnd: 1/2
issuedAt: "2024-01-12T10:00:00Z"
`

func TestDecode_SettleYAML(t *testing.T) {
	var doc SettleDocument
	require.NoError(t, Decode(strings.NewReader(settleYAML), &doc))

	req, err := doc.Request()
	require.NoError(t, err)

	assert.Equal(t, "RC-2024-0042", req.ContractNumber)
	assert.Equal(t, time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC), req.IssuedAt)
	assert.True(t, req.Facts.DailyRate.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "10:00:00", req.Facts.ReturnTime.String())

	result := settlement.NewCalculator(settlement.WithLocation(time.UTC)).Settle(req.Facts)
	assert.Equal(t, "200", result.LateFee.String())
	assert.Equal(t, "100", result.FuelCharge.String())
	assert.Equal(t, "250", result.MileageCharge.String())
	assert.Equal(t, int64(5), result.ContractDurationDays)
	assert.Equal(t, int64(1500), result.DistanceTraveled)
}

func TestDecode_SettleJSON(t *testing.T) {
	input := `{"contractNumber":"RC-1","fuelLevelStart":80,"fuelLevelEnd":"1/4","dailyRate":"75.5"}`

	var doc SettleDocument
	require.NoError(t, Decode(strings.NewReader(input), &doc))

	assert.True(t, doc.FuelLevelStart.Level().IsPercentage())
	assert.Equal(t, "80", doc.FuelLevelStart.Level().Percent().String())
	assert.Equal(t, "25", doc.FuelLevelEnd.Level().Percent().String())

	req, err := doc.Request()
	require.NoError(t, err)
	assert.True(t, req.Facts.ContractEndDate.IsZero())
	assert.True(t, req.IssuedAt.IsZero())
}

func TestFuelLevel_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		percent string
		wantErr bool
	}{
		{name: "label", value: "3/4", percent: "75"},
		{name: "label upper case", value: "FULL", percent: "100"},
		{name: "integer percent", value: "40", percent: "40"},
		{name: "fractional percent", value: "12.5", percent: "12.5"},
		{name: "unknown label", value: "half", percent: "0"},
		{name: "null", value: "~", percent: "0"},
		{name: "sequence", value: "[1, 2]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc SettleDocument
			err := Decode(strings.NewReader("contractNumber: C\nfuelLevelStart: "+tt.value+"\n"), &doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.percent, doc.FuelLevelStart.Level().Percent().String())
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{name: "empty", input: "", target: ErrEmptyDocument},
		{name: "missing contract number", input: "dailyRate: \"10\"\n", target: ErrInvalidDocument, message: `contractNumber failed the "required" check`},
		{name: "bad date", input: "contractNumber: C\nreturnDate: 12/01/2024\n", target: ErrInvalidDocument, message: `returnDate failed the "datetime" check`},
		{name: "negative mileage", input: "contractNumber: C\nendMileage: -5\n", target: ErrInvalidDocument, message: "endMileage"},
		{name: "non numeric rate", input: "contractNumber: C\ndailyRate: ten\n", target: ErrInvalidDocument, message: "dailyRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc SettleDocument
			err := Decode(strings.NewReader(tt.input), &doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestDecode_UnknownField(t *testing.T) {
	var doc SettleDocument
	err := Decode(strings.NewReader("contractNumber: C\nlateFee: 10\n"), &doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lateFee")
}

func TestDecodeFile_NotFound(t *testing.T) {
	var doc SettleDocument
	err := DecodeFile(filepath.Join(t.TempDir(), "missing.yaml"), &doc)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

// ==================== InvoiceDocument ====================

func TestDecode_Invoice(t *testing.T) {
	input := `{"sellerName":"Fleet Co","vatNumber":"300000000000003","timestamp":"2024-01-12T10:00:00Z","totalWithVat":"460.00","vatAmount":"60.00"}`

	var doc InvoiceDocument
	require.NoError(t, Decode(strings.NewReader(input), &doc))

	fields := doc.Fields()
	assert.Equal(t, "Fleet Co", fields.SellerName)
	assert.Equal(t, "460.00", fields.TotalWithVAT)

	err := Decode(strings.NewReader(`{"sellerName":"Fleet Co"}`), &InvoiceDocument{})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

// ==================== ArrearsDocument ====================

const arrearsYAML = `
asOf: "2024-06-30"
customers:
  - customerId: 6f1c2b1e-8a34-4d7e-9a55-3c1d2e4f5a6b
    customerName: Noura Al-Harbi
    totalContracted: "15000"
    totalPaid: "3000"
    activeContracts: 2
    overdueContracts: 2
    oldestOverdueDate: "2024-05-20"
  - customerId: 0b7d9c52-1f4e-4a0b-8e2d-5c6a7b8c9d0e
    customerName: Faisal Al-Qahtani
    totalContracted: "2000"
    totalPaid: "2000"
    activeContracts: 1
    overdueContracts: 0
`

func TestDecode_Arrears(t *testing.T) {
	var doc ArrearsDocument
	require.NoError(t, Decode(strings.NewReader(arrearsYAML), &doc))

	summaries, err := doc.Summaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "12000", summaries[0].OutstandingBalance.String())
	require.NotNil(t, summaries[0].OldestOverdueDate)
	assert.Nil(t, summaries[1].OldestOverdueDate)

	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), doc.AsOfDate(fallback))
	assert.Equal(t, fallback, ArrearsDocument{}.AsOfDate(fallback))
}

func TestDecode_ArrearsInvalidCustomer(t *testing.T) {
	input := "customers:\n  - customerId: not-a-uuid\n    customerName: X\n    totalContracted: \"1\"\n    totalPaid: \"0\"\n"

	var doc ArrearsDocument
	err := Decode(strings.NewReader(input), &doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "customers[0].customerId")
}

// ==================== Views ====================

func TestStatementView(t *testing.T) {
	var doc SettleDocument
	require.NoError(t, Decode(strings.NewReader(settleYAML), &doc))
	req, err := doc.Request()
	require.NoError(t, err)

	svc := closeout.NewService(closeout.Seller{Name: "Fleet Co", VATNumber: "300000000000003"},
		closeout.WithCalculator(settlement.NewCalculator(settlement.WithLocation(time.UTC))))
	st, err := svc.Close(t.Context(), req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewStatementView(st)))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "RC-2024-0042", out["contractNumber"])
	assert.Equal(t, map[string]any{"lateFee": "200.00", "fuelCharge": "100.00", "mileageCharge": "250.00"}, out["charges"])
	assert.Equal(t, map[string]any{"amount": "632.50", "currency": "SAR"}, out["total"])
	assert.NotEmpty(t, out["qrPayload"])
}

func TestReportView(t *testing.T) {
	var doc ArrearsDocument
	require.NoError(t, Decode(strings.NewReader(arrearsYAML), &doc))
	summaries, err := doc.Summaries()
	require.NoError(t, err)

	report := collections.NewService().Evaluate(t.Context(), summaries, doc.AsOfDate(time.Now()))
	view := NewReportView(report)

	assert.Equal(t, "2024-06-30", view.AsOf)
	assert.Equal(t, 2, view.Evaluated)
	require.Len(t, view.AtRisk, 1)
	assert.Equal(t, "12000.00", view.AtRisk[0].OutstandingBalance)
	assert.Equal(t, 41, view.AtRisk[0].OverdueDays)
	assert.Len(t, view.AtRisk[0].Plan, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, view))
	assert.Contains(t, buf.String(), `"riskStatus": "high"`)
}
