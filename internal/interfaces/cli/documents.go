package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/closeout"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/fiscal"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/settlement"
)

const dateLayout = "2006-01-02"

// SettleDocument describes one returned contract.
//
// Missing dates, times and rates are allowed and simply produce no charge.
type SettleDocument struct {
	ContractNumber    string    `yaml:"contractNumber" validate:"required,max=64"`
	ContractStartDate string    `yaml:"contractStartDate" validate:"omitempty,datetime=2006-01-02"`
	ContractEndDate   string    `yaml:"contractEndDate" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate        string    `yaml:"returnDate" validate:"omitempty,datetime=2006-01-02"`
	ReturnTime        string    `yaml:"returnTime"`
	DailyRate         string    `yaml:"dailyRate" validate:"omitempty,numeric"`
	StartMileage      int64     `yaml:"startMileage" validate:"gte=0"`
	EndMileage        int64     `yaml:"endMileage" validate:"gte=0"`
	AllowedKmPerDay   int64     `yaml:"allowedKmPerDay" validate:"gte=0"`
	ContractDays      int64     `yaml:"contractDays" validate:"gte=0"`
	FuelLevelStart    FuelLevel `yaml:"fuelLevelStart"`
	FuelLevelEnd      FuelLevel `yaml:"fuelLevelEnd"`
	IssuedAt          string    `yaml:"issuedAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Request converts the document into a closeout request
func (d SettleDocument) Request() (closeout.Request, error) {
	rate := decimal.Zero
	if d.DailyRate != "" {
		var err error
		if rate, err = decimal.NewFromString(d.DailyRate); err != nil {
			return closeout.Request{}, fmt.Errorf("%w: dailyRate: %v", ErrInvalidDocument, err)
		}
	}

	var issuedAt time.Time
	if d.IssuedAt != "" {
		var err error
		if issuedAt, err = time.Parse(time.RFC3339, d.IssuedAt); err != nil {
			return closeout.Request{}, fmt.Errorf("%w: issuedAt: %v", ErrInvalidDocument, err)
		}
	}

	return closeout.Request{
		ContractNumber: d.ContractNumber,
		IssuedAt:       issuedAt,
		Facts: settlement.ContractReturnFacts{
			ContractStartDate: settlement.ParseDate(d.ContractStartDate),
			ContractEndDate:   settlement.ParseDate(d.ContractEndDate),
			ReturnDate:        settlement.ParseDate(d.ReturnDate),
			ReturnTime:        settlement.ParseTimeOfDay(d.ReturnTime),
			DailyRate:         rate,
			StartMileage:      d.StartMileage,
			EndMileage:        d.EndMileage,
			AllowedKmPerDay:   d.AllowedKmPerDay,
			ContractDays:      d.ContractDays,
			FuelLevelStart:    d.FuelLevelStart.Level(),
			FuelLevelEnd:      d.FuelLevelEnd.Level(),
		},
	}, nil
}

// InvoiceDocument carries pre-formatted invoice fields for QR encoding.
// Lengths are not limited here; overlong values take the fallback path.
type InvoiceDocument struct {
	SellerName   string `yaml:"sellerName" validate:"required"`
	VATNumber    string `yaml:"vatNumber" validate:"required"`
	Timestamp    string `yaml:"timestamp" validate:"required"`
	TotalWithVAT string `yaml:"totalWithVat" validate:"required,numeric"`
	VATAmount    string `yaml:"vatAmount" validate:"required,numeric"`
}

// Fields converts the document into invoice fields
func (d InvoiceDocument) Fields() fiscal.InvoiceFields {
	return fiscal.InvoiceFields{
		SellerName:   d.SellerName,
		VATNumber:    d.VATNumber,
		Timestamp:    d.Timestamp,
		TotalWithVAT: d.TotalWithVAT,
		VATAmount:    d.VATAmount,
	}
}

// CustomerDocument is one customer's aggregated balances
type CustomerDocument struct {
	CustomerID        string `yaml:"customerId" validate:"required,uuid"`
	CustomerName      string `yaml:"customerName" validate:"required"`
	TotalContracted   string `yaml:"totalContracted" validate:"required,numeric"`
	TotalPaid         string `yaml:"totalPaid" validate:"required,numeric"`
	ActiveContracts   int    `yaml:"activeContracts" validate:"gte=0"`
	OverdueContracts  int    `yaml:"overdueContracts" validate:"gte=0"`
	OldestOverdueDate string `yaml:"oldestOverdueDate" validate:"omitempty,datetime=2006-01-02"`
}

// ArrearsDocument lists the customers to evaluate
type ArrearsDocument struct {
	AsOf      string             `yaml:"asOf" validate:"omitempty,datetime=2006-01-02"`
	Customers []CustomerDocument `yaml:"customers" validate:"dive"`
}

// Summaries converts the document into domain summaries
func (d ArrearsDocument) Summaries() ([]arrears.CustomerSummary, error) {
	out := make([]arrears.CustomerSummary, 0, len(d.Customers))
	for i, c := range d.Customers {
		s, err := c.summary()
		if err != nil {
			return nil, fmt.Errorf("%w: customers[%d]: %v", ErrInvalidDocument, i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// AsOfDate returns the evaluation date, or fallback if none was given
func (d ArrearsDocument) AsOfDate(fallback time.Time) time.Time {
	if d.AsOf == "" {
		return fallback
	}
	t, err := time.Parse(dateLayout, d.AsOf)
	if err != nil {
		return fallback
	}
	return t
}

func (c CustomerDocument) summary() (arrears.CustomerSummary, error) {
	id, err := uuid.Parse(c.CustomerID)
	if err != nil {
		return arrears.CustomerSummary{}, err
	}
	contracted, err := decimal.NewFromString(c.TotalContracted)
	if err != nil {
		return arrears.CustomerSummary{}, err
	}
	paid, err := decimal.NewFromString(c.TotalPaid)
	if err != nil {
		return arrears.CustomerSummary{}, err
	}

	var oldest *time.Time
	if c.OldestOverdueDate != "" {
		t, err := time.Parse(dateLayout, c.OldestOverdueDate)
		if err != nil {
			return arrears.CustomerSummary{}, err
		}
		oldest = &t
	}

	return arrears.NewCustomerSummary(id, c.CustomerName, contracted, paid,
		c.ActiveContracts, c.OverdueContracts, oldest), nil
}
