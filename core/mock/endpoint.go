package mock

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

var _ core.Endpoint = (*Endpoint)(nil)

// Endpoint is an in-memory endpoint that records every request it gets.
type Endpoint struct {
	config *endpointConfig

	mu      sync.Mutex
	records []*core.Record
	fetches []*core.FetchRequest
	creates []*core.Record
	updates []*core.UpdateRequest
	closed  bool
}

func NewEndpoint(records []*core.Record, opts ...EndpointOption) *Endpoint {
	counter := len(records)
	config := &endpointConfig{
		nextID: func() core.RecordID {
			counter++
			return core.RecordID(strconv.Itoa(counter))
		},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Endpoint{
		config:  config,
		records: records,
	}
}

// NewRecords returns records with ids from..to-1, each with a "title" and
// a "score" field.
func NewRecords(from, to int) []*core.Record {
	var records []*core.Record
	for i := from; i < to; i++ {
		records = append(records, core.NewRecord(core.RecordID(strconv.Itoa(i)), map[string]any{
			"title": fmt.Sprintf("record %d", i),
			"score": float64(i),
		}))
	}
	return records
}

func matches(r *core.Record, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, v := range r.Fields {
		if strings.Contains(strings.ToLower(core.ToText(v)), query) {
			return true
		}
	}
	return false
}

func (e *Endpoint) Fetch(ctx context.Context, req *core.FetchRequest) (*core.FetchResponse, error) {
	if e.config.fetchSideEffect != nil {
		if err := e.config.fetchSideEffect(ctx, req); err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.fetches = append(e.fetches, req)

	var matching []*core.Record
	for _, r := range e.records {
		if matches(r, req.Query) {
			matching = append(matching, r)
		}
	}

	total := len(matching)
	if e.config.totalOverride != nil {
		total = e.config.totalOverride(total)
	}

	from := min(max(req.Offset, 0), len(matching))
	to := min(from+req.Limit, len(matching))

	data := make([]*core.Record, 0, to-from)
	for _, r := range matching[from:to] {
		data = append(data, core.NewRecord(r.ID, maps.Clone(r.Fields)))
	}

	return &core.FetchResponse{
		Data:  data,
		Total: total,
	}, nil
}

func (e *Endpoint) Create(ctx context.Context, record *core.Record) (core.RecordID, error) {
	if e.config.createSideEffect != nil {
		if err := e.config.createSideEffect(ctx, record); err != nil {
			return "", fmt.Errorf("side effect error: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.creates = append(e.creates, record)

	id := e.config.nextID()
	e.records = append([]*core.Record{core.NewRecord(id, maps.Clone(record.Fields))}, e.records...)

	return id, nil
}

func (e *Endpoint) Update(ctx context.Context, req *core.UpdateRequest) error {
	if e.config.updateSideEffect != nil {
		if err := e.config.updateSideEffect(ctx, req); err != nil {
			return fmt.Errorf("side effect error: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.updates = append(e.updates, req)

	for _, r := range e.records {
		if r.ID == req.ID {
			r.Fields[req.FieldName] = req.FieldData
			return nil
		}
	}

	return fmt.Errorf("%w: %q", core.ErrRecordNotFound, req.ID)
}

func (e *Endpoint) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Fetches returns every fetch request received so far.
func (e *Endpoint) Fetches() []*core.FetchRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*core.FetchRequest(nil), e.fetches...)
}

func (e *Endpoint) Creates() []*core.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*core.Record(nil), e.creates...)
}

func (e *Endpoint) Updates() []*core.UpdateRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*core.UpdateRequest(nil), e.updates...)
}

func (e *Endpoint) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Adapter hands out the same endpoint on every Connect.
type Adapter struct {
	Endpoint *Endpoint
}

func (a *Adapter) Connect(*core.EndpointParams) (core.Endpoint, error) {
	return a.Endpoint, nil
}
