package fiscal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tag identifies a field inside the TLV stream
type Tag byte

// Tags in the order they are written
const (
	TagSellerName   Tag = 1
	TagVATNumber    Tag = 2
	TagTimestamp    Tag = 3
	TagTotalWithVAT Tag = 4
	TagVATAmount    Tag = 5
)

var tagNames = map[Tag]string{
	TagSellerName:   "sellerName",
	TagVATNumber:    "vatNumber",
	TagTimestamp:    "timestamp",
	TagTotalWithVAT: "totalWithVat",
	TagVATAmount:    "vatAmount",
}

// IsValid checks if the tag is one of the five invoice tags
func (t Tag) IsValid() bool {
	_, ok := tagNames[t]
	return ok
}

// String returns the field name carried by the tag
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}

// InvoiceFields are the five values printed in an invoice QR code.
// Amounts and the timestamp are pre-formatted text; the encoder does
// not reformat them.
type InvoiceFields struct {
	SellerName   string `json:"sellerName"`
	VATNumber    string `json:"vatNumber"`
	Timestamp    string `json:"timestamp"`
	TotalWithVAT string `json:"totalWithVat"`
	VATAmount    string `json:"vatAmount"`
}

// NewInvoiceFields formats an invoice for encoding: the timestamp as
// RFC 3339 in UTC and both amounts with two decimals.
func NewInvoiceFields(sellerName, vatNumber string, issuedAt time.Time, totalWithVAT, vatAmount decimal.Decimal) InvoiceFields {
	return InvoiceFields{
		SellerName:   sellerName,
		VATNumber:    vatNumber,
		Timestamp:    issuedAt.UTC().Format(time.RFC3339),
		TotalWithVAT: totalWithVAT.StringFixed(2),
		VATAmount:    vatAmount.StringFixed(2),
	}
}

// Record is a single tag/value pair
type Record struct {
	Tag   Tag
	Value string
}

// Records returns the fields in encoding order
func (f InvoiceFields) Records() []Record {
	return []Record{
		{Tag: TagSellerName, Value: f.SellerName},
		{Tag: TagVATNumber, Value: f.VATNumber},
		{Tag: TagTimestamp, Value: f.Timestamp},
		{Tag: TagTotalWithVAT, Value: f.TotalWithVAT},
		{Tag: TagVATAmount, Value: f.VATAmount},
	}
}

func (f *InvoiceFields) set(tag Tag, value string) {
	switch tag {
	case TagSellerName:
		f.SellerName = value
	case TagVATNumber:
		f.VATNumber = value
	case TagTimestamp:
		f.Timestamp = value
	case TagTotalWithVAT:
		f.TotalWithVAT = value
	case TagVATAmount:
		f.VATAmount = value
	}
}
