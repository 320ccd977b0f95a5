package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// RecordID is assigned by the endpoint on creation and never changes.
type RecordID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*id = ""
	case string:
		*id = RecordID(v)
	case json.Number:
		*id = RecordID(v.String())
	default:
		return fmt.Errorf("invalid record id: %s", data)
	}
	return nil
}

// Record is a single entity shown as a table row.
type Record struct {
	ID     RecordID
	Fields map[string]any
}

func NewRecord(id RecordID, fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Record{
		ID:     id,
		Fields: fields,
	}
}

func (r *Record) Get(field string) any {
	return r.Fields[field]
}

func (r *Record) clone() *Record {
	return &Record{
		ID:     r.ID,
		Fields: maps.Clone(r.Fields),
	}
}

// MarshalJSON flattens the record: {"id": ..., "<field>": ...}.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	if r.ID != "" {
		flat["id"] = r.ID
	}
	return json.Marshal(flat)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	rec := Record{Fields: make(map[string]any, len(flat))}
	for k, raw := range flat {
		if k == "id" {
			if err := json.Unmarshal(raw, &rec.ID); err != nil {
				return err
			}
			continue
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		rec.Fields[k] = v
	}

	*r = rec
	return nil
}
