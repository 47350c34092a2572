package puzzlegen

import (
	"encoding/json"
	"strconv"
)

// recordField binds a Record field to the keys the model may use for it.
// Keys are tried in order.
type recordField struct {
	keys []string
	ptr  func(*Record) *string
}

var recordFields = []recordField{
	{keys: []string{"nadpis", "Nadpis"}, ptr: func(r *Record) *string { return &r.Title }},
	{keys: []string{"zadani", "Zadani"}, ptr: func(r *Record) *string { return &r.Task }},
	{keys: []string{"kod", "Kod"}, ptr: func(r *Record) *string { return &r.Code }},
	{keys: []string{"prompt", "Prompt"}, ptr: func(r *Record) *string { return &r.ImagePrompt }},
}

// requiredKeys lists the canonical wire keys.
func requiredKeys() []string {
	keys := make([]string, len(recordFields))
	for i, f := range recordFields {
		keys[i] = f.keys[0]
	}
	return keys
}

// decodeRecord fills a Record from a decoded JSON object. The first key
// holding a non-empty scalar wins; a field with no usable key stays "".
func decodeRecord(obj map[string]any) Record {
	var r Record
	for _, f := range recordFields {
		for _, k := range f.keys {
			if s, ok := scalarText(obj[k]); ok {
				*f.ptr(&r) = s
				break
			}
		}
	}
	return r
}

// scalarText renders a JSON scalar as text. Numbers keep their literal
// form: a code sent as 1.50 stays "1.50".
func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
