package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a loosely-typed row: field name -> string, number or nil.
// Key order is preserved from insertion (and from the JSON document when
// unmarshaled), because primary-key resolution depends on it.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value, appending the key at the end on first insert.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// StringValue returns the value for key rendered as a string, "" for nil or
// missing. Numbers render without a trailing ".0" for integral values.
func (r *Record) StringValue(key string) string {
	v, ok := r.values[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// NumberValue returns the value for key as float64 when it is numeric.
func (r *Record) NumberValue(key string) (float64, bool) {
	v, ok := r.values[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// PrimaryKey returns the first field, in insertion order, whose name starts
// with the "id_" convention. The second return is false when no field
// qualifies; callers must refuse update/delete in that case.
//
// When several fields carry the prefix (join-like rows) the first one wins;
// this mirrors the source behavior and is deliberate, not a tie-break rule.
func (r *Record) PrimaryKey() (string, bool) {
	for _, k := range r.keys {
		if strings.HasPrefix(strings.ToLower(k), "id_") {
			return k, true
		}
	}
	return "", false
}

// MarshalJSON renders the record as a JSON object preserving key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the document's key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected object key, got %v", keyTok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Set(key, normalizeValue(raw))
	}

	// Consume closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// normalizeValue collapses json.Number into float64 so values are always
// string, float64, bool or nil.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	default:
		return v
	}
}
