// Package persist serializes paper documents and defines the storage port
// used for autosave.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"paperbuilder/internal/model"
)

// ExportFileName is the name offered for downloaded papers
const ExportFileName = "paper.json"

var (
	ErrParseFailed   = errors.New("failed to parse JSON")
	ErrInvalidFormat = errors.New("invalid format: expected a JSON array of sections")
)

// ValidationError lists every structural problem found in an imported document
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("invalid document (%d problems): %s", len(e.Problems), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual problems to errors.Is and errors.As
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Encode writes the document as compact JSON. A nil document encodes as [].
func Encode(doc model.Document) ([]byte, error) {
	if doc == nil {
		doc = model.Document{}
	}
	return json.Marshal(doc)
}

// EncodePretty writes the document as indented JSON for export
func EncodePretty(doc model.Document) ([]byte, error) {
	if doc == nil {
		doc = model.Document{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a document, checking only that the top level is an array
func Decode(data []byte) (model.Document, error) {
	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	trimmed := bytes.TrimSpace(top)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var doc model.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return doc.Normalize(), nil
}

// DecodeStrict parses a document and validates every entity in it
func DecodeStrict(data []byte) (model.Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if problems := doc.Validate(); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return doc, nil
}
