package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/closeout"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/collections"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/fiscal"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/shared/valueobject"
)

// ChargesView lists the settlement charges
type ChargesView struct {
	LateFee       string `json:"lateFee"`
	FuelCharge    string `json:"fuelCharge"`
	MileageCharge string `json:"mileageCharge"`
}

// StatementView is the settle command's output
type StatementView struct {
	ContractNumber       string               `json:"contractNumber"`
	Charges              ChargesView          `json:"charges"`
	ContractDurationDays int64                `json:"contractDurationDays"`
	DistanceTraveled     int64                `json:"distanceTraveled"`
	Subtotal             valueobject.Money    `json:"subtotal"`
	VAT                  valueobject.Money    `json:"vat"`
	Total                valueobject.Money    `json:"total"`
	Invoice              fiscal.InvoiceFields `json:"invoice"`
	QRPayload            string               `json:"qrPayload"`
}

// NewStatementView converts a closeout statement for output
func NewStatementView(st *closeout.Statement) StatementView {
	r := st.Settlement
	return StatementView{
		ContractNumber: st.ContractNumber,
		Charges: ChargesView{
			LateFee:       r.LateFee.StringFixed(valueobject.MinorUnits),
			FuelCharge:    r.FuelCharge.StringFixed(valueobject.MinorUnits),
			MileageCharge: r.MileageCharge.StringFixed(valueobject.MinorUnits),
		},
		ContractDurationDays: r.ContractDurationDays,
		DistanceTraveled:     r.DistanceTraveled,
		Subtotal:             st.Subtotal,
		VAT:                  st.VAT,
		Total:                st.Total,
		Invoice:              st.Invoice,
		QRPayload:            string(st.QRPayload),
	}
}

// QRView is the qr command's output
type QRView struct {
	Payload  string                `json:"payload,omitempty"`
	Fields   *fiscal.InvoiceFields `json:"fields,omitempty"`
	Fallback bool                  `json:"fallback"`
}

// AssessmentView is one at-risk customer in a report
type AssessmentView struct {
	CustomerID         string                     `json:"customerId"`
	CustomerName       string                     `json:"customerName"`
	OutstandingBalance string                     `json:"outstandingBalance"`
	OverdueContracts   int                        `json:"overdueContracts"`
	OverdueDays        int                        `json:"overdueDays"`
	RiskStatus         arrears.RiskStatus         `json:"riskStatus"`
	Plan               []arrears.CollectionAction `json:"plan"`
}

// ReportView is the arrears command's output
type ReportView struct {
	AsOf              string                     `json:"asOf"`
	RiskThreshold     string                     `json:"riskThreshold"`
	HighRiskThreshold string                     `json:"highRiskThreshold"`
	Evaluated         int                        `json:"evaluated"`
	StatusCounts      map[arrears.RiskStatus]int `json:"statusCounts"`
	AtRisk            []AssessmentView           `json:"atRisk"`
}

// NewReportView converts a collections report for output
func NewReportView(report collections.Report) ReportView {
	view := ReportView{
		AsOf:              report.AsOf.Format(dateLayout),
		RiskThreshold:     report.Policy.Threshold.String(),
		HighRiskThreshold: report.Policy.HighThreshold.String(),
		Evaluated:         report.Evaluated,
		StatusCounts:      report.StatusCounts,
		AtRisk:            make([]AssessmentView, 0, len(report.AtRisk)),
	}
	for _, a := range report.AtRisk {
		view.AtRisk = append(view.AtRisk, AssessmentView{
			CustomerID:         a.Customer.CustomerID.String(),
			CustomerName:       a.Customer.CustomerName,
			OutstandingBalance: a.Customer.OutstandingBalance.StringFixed(valueobject.MinorUnits),
			OverdueContracts:   a.Customer.OverdueContracts,
			OverdueDays:        a.OverdueDays,
			RiskStatus:         a.Customer.RiskStatus,
			Plan:               a.Plan,
		})
	}
	return view
}

// WriteJSON writes v as indented JSON followed by a newline
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
