package core

import "context"

type (
	// FetchRequest asks for one page of records. An empty Query is unfiltered.
	FetchRequest struct {
		Query  string `json:"q"`
		Offset int    `json:"offset"`
		Limit  int    `json:"limit"`
	}

	FetchResponse struct {
		Data  []*Record `json:"data"`
		Total int       `json:"total"`
	}

	CreateRequest struct {
		Create *Record `json:"create"`
	}

	CreateResponse struct {
		ID RecordID `json:"id"`
	}

	// UpdateRequest persists a single field of a single record.
	UpdateRequest struct {
		ID        RecordID `json:"id"`
		FieldName string   `json:"fieldName"`
		FieldData any      `json:"fieldData"`
	}
)

type (
	// Adapter connects to a specific kind of endpoint
	Adapter interface {
		Connect(params *EndpointParams) (Endpoint, error)
	}

	// Endpoint is the remote side of a table: it serves pages, creates
	// records and updates single fields.
	Endpoint interface {
		Fetch(context.Context, *FetchRequest) (*FetchResponse, error)
		Create(context.Context, *Record) (RecordID, error)
		Update(context.Context, *UpdateRequest) error
		Close()
	}
)
