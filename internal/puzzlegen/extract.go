package puzzlegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/escapebook/internal/llm"
)

// Reason classifies an extraction failure.
type Reason string

const (
	// ReasonNoStructure: the text has no opening bracket, no closing
	// bracket, or the last closer precedes the first opener.
	ReasonNoStructure Reason = "no_structure_found"

	// ReasonMalformedJSON: the bracketed span is not one JSON value.
	ReasonMalformedJSON Reason = "malformed_json"

	// ReasonWrongShape: the value parsed but is not an object (single
	// mode) or an array of objects (array mode).
	ReasonWrongShape Reason = "wrong_shape"
)

// ExtractionError reports why model output could not be turned into
// records. Raw is the text that failed: the whole reply for
// ReasonNoStructure, the bracketed span otherwise.
type ExtractionError struct {
	Reason Reason
	Raw    string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// LocatePayload returns the span from the first opening bracket to the
// last closing bracket, inclusive: '[' and ']' when expectArray is set,
// '{' and '}' otherwise. The match is greedy, not balanced. Prose after
// the payload that contains a closing bracket ends up inside the span.
func LocatePayload(raw string, expectArray bool) (string, error) {
	opener, closer := "{", "}"
	if expectArray {
		opener, closer = "[", "]"
	}

	start := strings.Index(raw, opener)
	end := strings.LastIndex(raw, closer)
	if start < 0 || end < start {
		return "", &ExtractionError{
			Reason: ReasonNoStructure,
			Raw:    raw,
			Err:    fmt.Errorf("no %s...%s span in model output", opener, closer),
		}
	}
	return raw[start : end+len(closer)], nil
}

// Extract parses model output into records. In array mode the result has
// one record per array element, in order; in single mode exactly one.
// Extract is pure.
func Extract(raw string, expectArray bool) ([]Record, error) {
	payload, err := LocatePayload(raw, expectArray)
	if err != nil {
		return nil, err
	}

	value, err := decodeValue(payload)
	if err != nil {
		return nil, &ExtractionError{Reason: ReasonMalformedJSON, Raw: payload, Err: err}
	}

	shape := objectShape
	if expectArray {
		shape = arrayShape
	}
	if err := checkShape(shape, value); err != nil {
		return nil, &ExtractionError{Reason: ReasonWrongShape, Raw: payload, Err: err}
	}

	if !expectArray {
		return []Record{decodeRecord(value.(map[string]any))}, nil
	}

	items := value.([]any)
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = decodeRecord(item.(map[string]any))
	}
	return records, nil
}

// decodeValue parses exactly one JSON value. Numbers are kept as
// json.Number so their text survives.
func decodeValue(payload string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	end := dec.InputOffset()
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", end)
	}
	return v, nil
}

func checkShape(shape *llm.Schema, value any) error {
	compiled, err := llm.CompileSchema(shape)
	if err != nil {
		return err
	}
	return compiled.Validate(value)
}
