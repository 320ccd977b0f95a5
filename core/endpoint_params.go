package core

import (
	"encoding/json"

	"github.com/google/uuid"
)

type EndpointID string

// EndpointParams describe where the records of a table live.
type EndpointParams struct {
	ID   EndpointID
	Name string
	// Type selects the adapter (http, sqlite, postgres, mysql, redis...)
	Type string
	URL  string
	// Table is used by database backed endpoints only
	Table string
}

// Expand returns a copy of the original parameters with expanded fields
func (p *EndpointParams) Expand() *EndpointParams {
	expanded := &EndpointParams{
		ID:    EndpointID(expandOrDefault(string(p.ID))),
		Name:  expandOrDefault(p.Name),
		Type:  expandOrDefault(p.Type),
		URL:   expandOrDefault(p.URL),
		Table: expandOrDefault(p.Table),
	}

	if expanded.ID == "" {
		expanded.ID = EndpointID(uuid.New().String())
	}

	return expanded
}

func (p *EndpointParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Type  string `json:"type"`
		URL   string `json:"url"`
		Table string `json:"table,omitempty"`
	}{
		ID:    string(p.ID),
		Name:  p.Name,
		Type:  p.Type,
		URL:   p.URL,
		Table: p.Table,
	})
}
