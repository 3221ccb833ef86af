// Package export renders engine results into office documents.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/collections"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
)

// Sheet names of the arrears workbook
const (
	SummarySheet = "summary"
	AtRiskSheet  = "at_risk"
)

var atRiskHeader = []any{
	"Customer ID", "Customer", "Outstanding", "Overdue Contracts",
	"Overdue Days", "Risk", "Actions",
}

// WriteArrearsXLSX writes an arrears report workbook to w
func WriteArrearsXLSX(w io.Writer, report collections.Report) error {
	f, err := buildArrearsWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write arrears workbook: %w", err)
	}
	return nil
}

// BuildArrearsXLSX renders an arrears report workbook in memory
func BuildArrearsXLSX(report collections.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteArrearsXLSX(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildArrearsWorkbook(report collections.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(AtRiskSheet); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Arrears Report"},
		{},
		{"As of", report.AsOf.Format("2006-01-02")},
		{"Risk threshold", report.Policy.Threshold.InexactFloat64()},
		{"High risk threshold", report.Policy.HighThreshold.InexactFloat64()},
		{"Customers evaluated", report.Evaluated},
		{"At risk", len(report.AtRisk)},
		{},
		{"Status", "Customers"},
	}
	for _, status := range []arrears.RiskStatus{arrears.RiskHigh, arrears.RiskMedium, arrears.RiskLow, arrears.RiskClear} {
		summary = append(summary, []any{status.String(), report.StatusCounts[status]})
	}
	if err := setRows(f, SummarySheet, summary); err != nil {
		return nil, err
	}

	rows := [][]any{atRiskHeader}
	for _, a := range report.AtRisk {
		actions := make([]string, len(a.Plan))
		for i, step := range a.Plan {
			actions[i] = step.Title
		}
		rows = append(rows, []any{
			a.Customer.CustomerID.String(),
			a.Customer.CustomerName,
			a.Customer.OutstandingBalance.InexactFloat64(),
			a.Customer.OverdueContracts,
			a.OverdueDays,
			a.Customer.RiskStatus.String(),
			strings.Join(actions, "; "),
		})
	}
	if err := setRows(f, AtRiskSheet, rows); err != nil {
		return nil, err
	}
	if err := f.SetPanes(AtRiskSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	return f, nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
