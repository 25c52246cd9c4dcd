// Package table turns raw sheet grids into header-keyed records.
package table

import (
	"bytes"
	"encoding/json"
)

// Record is one data row keyed by header name. Field order follows the
// header the record was projected from.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord builds a record from alternating name/value pairs.
func NewRecord(pairs ...string) Record {
	r := Record{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Record) set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.fields = append(r.fields, name)
	}
	r.values[name] = value
}

// Get returns the value for name, or "" when the record has no such field.
func (r Record) Get(name string) string {
	return r.values[name]
}

// Fields returns the field names in header order.
func (r Record) Fields() []string {
	return r.fields
}

// MarshalJSON writes the record as a flat object keeping header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project converts a header+rows grid into records. Row 0 is the header.
// Short rows are padded with "" and a repeated header name keeps the value
// of its last column.
func Project(rows [][]string) []Record {
	if len(rows) == 0 {
		return []Record{}
	}
	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{values: make(map[string]string, len(header))}
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec.set(name, value)
		}
		records = append(records, rec)
	}
	return records
}

// Flatten lays records back out as rows in the column order of header.
func Flatten(header []string, records []Record) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for j, name := range header {
			row[j] = rec.Get(name)
		}
		rows[i] = row
	}
	return rows
}
