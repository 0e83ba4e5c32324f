// Package reading holds sensor observations: the immutable Record, the
// session Dataset, and the SQL store they are loaded from.
package reading

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// Field is one named scalar value of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered mapping of field names to scalar values.
// The zero Record has no fields. Records are never mutated after construction.
type Record struct {
	fields []Field
}

// NewRecord builds a Record from fields in order. A repeated name keeps its
// first position and its last value.
func NewRecord(fields ...Field) Record {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, ok := seen[f.Name]; ok {
			out[i].Value = f.Value
			continue
		}
		seen[f.Name] = len(out)
		out = append(out, f)
	}
	return Record{fields: out}
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the record's fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Text formats the value under name for display. Missing fields and nil
// values render as the empty string.
func (r Record) Text(name string) string {
	v, ok := r.Get(name)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Float returns the value under name as a float64 when it is numeric.
func (r Record) Float(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Schema describes a record in the OpenAPI document as a free-form object.
func (r Record) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:                 huma.TypeObject,
		Description:          "Sensor observation: date plus numeric readings, in field order",
		AdditionalProperties: true,
	}
}

// Dataset is an ordered, read-only sequence of records.
type Dataset []Record

// Fields returns the header for the dataset: the first record's field names,
// followed by any name first seen in a later record.
func (d Dataset) Fields() []string {
	if len(d) == 0 {
		return nil
	}
	var names []string
	seen := map[string]bool{}
	for _, r := range d {
		for _, f := range r.fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}
