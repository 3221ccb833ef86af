package fiscal

import (
	"fmt"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/shared"
)

// MaxValueLength is the largest value a one-byte length prefix can describe
const MaxValueLength = 255

// AppendRecord appends [tag][len][value] to dst. The length is the UTF-8
// byte length of value.
func AppendRecord(dst []byte, tag Tag, value string) ([]byte, error) {
	if !tag.IsValid() {
		return dst, shared.NewDomainError(shared.ErrInvalidTag.Code,
			fmt.Sprintf("tag %d is not an invoice tag", tag))
	}
	if len(value) > MaxValueLength {
		return dst, shared.NewDomainError(shared.ErrFieldTooLong.Code,
			fmt.Sprintf("%s is %d bytes, the limit is %d", tag, len(value), MaxValueLength))
	}
	dst = append(dst, byte(tag), byte(len(value)))
	return append(dst, value...), nil
}

// BuildTLV serializes the five fields in tag order. A field longer than
// MaxValueLength bytes fails with ErrFieldTooLong.
func BuildTLV(fields InvoiceFields) ([]byte, error) {
	records := fields.Records()

	size := 0
	for _, r := range records {
		size += 2 + len(r.Value)
	}

	buf := make([]byte, 0, size)
	for _, r := range records {
		var err error
		if buf, err = AppendRecord(buf, r.Tag, r.Value); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// ParseTLV reads a TLV stream back into records. Truncated records and
// unknown tags are rejected.
func ParseTLV(data []byte) ([]Record, error) {
	var records []Record
	for pos := 0; pos < len(data); {
		if pos+2 > len(data) {
			return nil, shared.NewDomainError(shared.ErrMalformedPayload.Code,
				fmt.Sprintf("truncated record header at offset %d", pos))
		}
		tag, length := Tag(data[pos]), int(data[pos+1])
		if !tag.IsValid() {
			return nil, shared.NewDomainError(shared.ErrInvalidTag.Code,
				fmt.Sprintf("tag %d at offset %d is not an invoice tag", tag, pos))
		}
		pos += 2
		if pos+length > len(data) {
			return nil, shared.NewDomainError(shared.ErrMalformedPayload.Code,
				fmt.Sprintf("%s declares %d bytes, only %d remain", tag, length, len(data)-pos))
		}
		records = append(records, Record{Tag: tag, Value: string(data[pos : pos+length])})
		pos += length
	}
	return records, nil
}
