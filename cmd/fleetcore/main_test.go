package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "config.toml", `
[log]
output = "`+filepath.Join(dir, "fleetcore.log")+`"
format = "json"

[settlement]
timezone = "UTC"

[fiscal]
seller_name = "Fleet Co"
vat_number = "300000000000003"
`)
}

func runJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(t.Context(), args, &stdout, &stderr), stderr.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	return out
}

// ==================== settle ====================

func TestRun_Settle(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	in := writeFile(t, dir, "contract.yaml", `
contractNumber: RC-7
contractEndDate: "2024-01-10"
returnDate: "2024-01-12"
returnTime: "10:00"
dailyRate: "100"
fuelLevelStart: full
fuelLevelEnd: 1/2
issuedAt: "2024-01-12T10:00:00Z"
`)

	out := runJSON(t, "settle", "-config", cfg, "-in", in)

	assert.Equal(t, "RC-7", out["contractNumber"])
	assert.Equal(t, map[string]any{"amount": "300.00", "currency": "SAR"}, out["subtotal"])
	assert.Equal(t, map[string]any{"amount": "45.00", "currency": "SAR"}, out["vat"])
	assert.Equal(t, map[string]any{"amount": "345.00", "currency": "SAR"}, out["total"])

	invoice := out["invoice"].(map[string]any)
	assert.Equal(t, "Fleet Co", invoice["sellerName"])
	assert.Equal(t, "2024-01-12T10:00:00Z", invoice["timestamp"])

	decoded := runJSON(t, "qr", "-config", cfg, "-decode", out["qrPayload"].(string))
	assert.Equal(t, false, decoded["fallback"])
	assert.Equal(t, invoice, decoded["fields"])
}

// ==================== qr ====================

func TestRun_QREncode(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	in := writeFile(t, dir, "invoice.json",
		`{"sellerName":"Fleet Co","vatNumber":"300000000000003","timestamp":"2024-01-12T10:00:00Z","totalWithVat":"460.00","vatAmount":"60.00"}`)

	out := runJSON(t, "qr", "-config", cfg, "-in", in)

	assert.Equal(t, "AQhGbGVldCBDbwIPMzAwMDAwMDAwMDAwMDAzAxQyMDI0LTAxLTEyVDEwOjAwOjAwWgQGNDYwLjAwBQU2MC4wMA==", out["payload"])
	assert.Equal(t, false, out["fallback"])
}

func TestRun_QRDecodeMissingPayload(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"qr", "-config", testConfig(t, dir), "-decode"}, &stdout, &stderr)
	assert.Error(t, err)
}

// ==================== arrears ====================

func TestRun_Arrears(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	in := writeFile(t, dir, "customers.yaml", `
customers:
  - customerId: 6f1c2b1e-8a34-4d7e-9a55-3c1d2e4f5a6b
    customerName: Noura Al-Harbi
    totalContracted: "4000"
    totalPaid: "1000"
    activeContracts: 1
    overdueContracts: 1
    oldestOverdueDate: "2024-06-20"
`)
	xlsx := filepath.Join(dir, "arrears.xlsx")

	out := runJSON(t, "arrears", "-config", cfg, "-in", in, "-lang", "ar", "-as-of", "2024-06-30", "-xlsx", xlsx)

	assert.Equal(t, "2024-06-30", out["asOf"])
	atRisk := out["atRisk"].([]any)
	require.Len(t, atRisk, 1)
	customer := atRisk[0].(map[string]any)
	assert.Equal(t, "medium", customer["riskStatus"])
	assert.Equal(t, float64(10), customer["overdueDays"])

	plan := customer["plan"].([]any)
	require.Len(t, plan, 2)
	assert.Equal(t, "إنذار نهائي", plan[0].(map[string]any)["title"])

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("at_risk", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Noura Al-Harbi", name)
}

// ==================== usage ====================

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "no command", args: nil, wantErr: true},
		{name: "unknown command", args: []string{"invoice"}, wantErr: true},
		{name: "bad flag", args: []string{"settle", "-nope"}, wantErr: true},
		{name: "help", args: []string{"help"}},
		{name: "version", args: []string{"version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(t.Context(), tt.args, &stdout, &stderr)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"settle", "-config", filepath.Join(t.TempDir(), "absent.toml")}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
