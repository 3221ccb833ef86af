package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is works
// against the sentinels below even when the message was specialised.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrFieldTooLong     = NewDomainError("FIELD_TOO_LONG", "Field value exceeds the encodable length")
	ErrInvalidTag       = NewDomainError("INVALID_TAG", "Field tag is out of range")
	ErrCurrencyMismatch = NewDomainError("CURRENCY_MISMATCH", "Amounts are in different currencies")
	ErrMalformedPayload = NewDomainError("MALFORMED_PAYLOAD", "Payload cannot be decoded")
)
