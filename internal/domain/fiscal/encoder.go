package fiscal

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/shared"
)

// Payload is the base64 text placed in the invoice QR code
type Payload string

// String returns the payload text
func (p Payload) String() string {
	return string(p)
}

// FallbackObserver is notified whenever Encode had to fall back to the
// JSON snapshot
type FallbackObserver func(fields InvoiceFields, cause error)

// Encoder turns invoice fields into a QR payload. Encoding never fails:
// when the TLV stream cannot be built the encoder logs a warning and
// emits the base64 of a JSON snapshot of the fields instead.
type Encoder struct {
	logger     *zap.Logger
	onFallback FallbackObserver
}

// EncoderOption configures an Encoder
type EncoderOption func(*Encoder)

// WithLogger sets the logger used to report fallbacks
func WithLogger(logger *zap.Logger) EncoderOption {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFallbackObserver registers a hook called on every fallback
func WithFallbackObserver(fn FallbackObserver) EncoderOption {
	return func(e *Encoder) {
		e.onFallback = fn
	}
}

// NewEncoder creates an encoder
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode builds the TLV stream for fields and returns it base64-encoded
func (e *Encoder) Encode(fields InvoiceFields) Payload {
	tlv, err := BuildTLV(fields)
	if err == nil {
		return Payload(base64.StdEncoding.EncodeToString(tlv))
	}

	e.logger.Warn("fiscal TLV encoding failed, emitting JSON fallback",
		zap.Error(err),
		zap.Int("seller_name_bytes", len(fields.SellerName)),
		zap.Int("vat_number_bytes", len(fields.VATNumber)),
		zap.Int("timestamp_bytes", len(fields.Timestamp)),
		zap.Int("total_bytes", len(fields.TotalWithVAT)),
		zap.Int("vat_amount_bytes", len(fields.VATAmount)),
	)
	if e.onFallback != nil {
		e.onFallback(fields, err)
	}

	snapshot, err := fallbackSnapshot(fields)
	if err != nil {
		e.logger.Error("fiscal JSON fallback failed", zap.Error(err))
		return ""
	}
	return Payload(base64.StdEncoding.EncodeToString(snapshot))
}

// Encode encodes fields with a silent default encoder
func Encode(fields InvoiceFields) Payload {
	return NewEncoder().Encode(fields)
}

// Decoded is the result of reading a payload back
type Decoded struct {
	Fields   InvoiceFields
	Fallback bool
}

// Decode reverses Encode. Both TLV payloads and JSON fallback payloads
// are accepted; Fallback reports which one was found.
func Decode(p Payload) (Decoded, error) {
	raw, err := base64.StdEncoding.DecodeString(string(p))
	if err != nil {
		return Decoded{}, fmt.Errorf("decode base64: %w", errors.Join(shared.ErrMalformedPayload, err))
	}

	if len(raw) > 0 && raw[0] == '{' {
		var fields InvoiceFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Decoded{}, fmt.Errorf("decode fallback snapshot: %w", errors.Join(shared.ErrMalformedPayload, err))
		}
		return Decoded{Fields: fields, Fallback: true}, nil
	}

	records, err := ParseTLV(raw)
	if err != nil {
		return Decoded{}, err
	}

	var fields InvoiceFields
	for _, r := range records {
		fields.set(r.Tag, r.Value)
	}
	return Decoded{Fields: fields}, nil
}

func fallbackSnapshot(fields InvoiceFields) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
