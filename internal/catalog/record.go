package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one row of a catalog: an open mapping from column name to a
// scalar value. The key set is discovered from live data, not declared.
type Record map[string]any

// CellString renders a cell value for display, filtering and diffing.
// nil renders as the empty string, never as the literal "null".
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// collectionArray normalizes a collection payload to its bare JSON array.
// Accepted shapes: [...], {"data":[...]}, {"resultado":[...]}.
func collectionArray(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return trimmed
	}
	var wrap struct {
		Data      json.RawMessage `json:"data"`
		Resultado json.RawMessage `json:"resultado"`
	}
	if err := json.Unmarshal(trimmed, &wrap); err != nil {
		return nil
	}
	for _, inner := range []json.RawMessage{wrap.Data, wrap.Resultado} {
		t := bytes.TrimSpace(inner)
		if len(t) > 0 && t[0] == '[' {
			return t
		}
	}
	return nil
}

// DecodeCollection parses a catalog response into records plus the first
// record's column names in server order. Go maps drop JSON key order, so the
// order is recovered with a token-level scan of the raw array.
func DecodeCollection(raw json.RawMessage) ([]Record, []string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, nil
	}
	arr := collectionArray(raw)
	if arr == nil {
		return nil, nil, fmt.Errorf("unexpected collection payload")
	}
	var records []Record
	if err := json.Unmarshal(arr, &records); err != nil {
		return nil, nil, fmt.Errorf("decode collection: %w", err)
	}
	return records, firstObjectKeys(arr), nil
}

// firstObjectKeys returns the keys of the first object of a JSON array in
// document order. Empty array or non-object first element yields nil.
func firstObjectKeys(arr []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(arr))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil
	}
	if !dec.More() {
		return nil
	}
	tok, err = dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return keys
		}
	}
	return keys
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
