// Package cli maps the command line's input documents onto the engine and
// its results back onto output documents. Input may be YAML or JSON.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Errors returned while reading documents.
var (
	// ErrEmptyDocument is returned when the input holds no document.
	ErrEmptyDocument = errors.New("cli: empty document")
	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("cli: invalid document")
	// ErrDocumentNotFound is returned when the input file does not exist.
	ErrDocumentNotFound = errors.New("cli: document not found")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads one YAML or JSON document from r into out and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return fmt.Errorf("parsing document: %w", err)
	}
	return Validate(out)
}

// DecodeFile is Decode on the named file; "-" reads standard input.
func DecodeFile(path string, out any) error {
	if path == "-" {
		return Decode(os.Stdin, out)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return fmt.Errorf("reading document: %w", err)
	}
	defer f.Close()
	return Decode(f, out)
}

// Validate checks a decoded document against its struct tags.
func Validate(doc any) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed the %q check", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
