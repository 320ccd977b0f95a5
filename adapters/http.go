package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

// Register client
func init() {
	_ = register(&HTTP{}, "http", "https")
}

// DefaultHTTPTimeout bounds every request of the http endpoint.
const DefaultHTTPTimeout = 30 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 32 << 20

var (
	_ core.Adapter  = (*HTTP)(nil)
	_ core.Endpoint = (*HTTPEndpoint)(nil)
)

type HTTP struct{}

func (*HTTP) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	return NewHTTPEndpoint(params.URL, nil)
}

// HTTPEndpoint talks the JSON protocol: POST fetches pages and creates
// records, PUT updates a single field.
type HTTPEndpoint struct {
	url    string
	client *http.Client
}

// NewHTTPEndpoint creates an endpoint for url. A nil client uses a client
// with DefaultHTTPTimeout.
func NewHTTPEndpoint(url string, client *http.Client) (*HTTPEndpoint, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint url scheme: %q", u.Scheme)
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return &HTTPEndpoint{
		url:    u.String(),
		client: client,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// do sends body as JSON and decodes the response into out, if out is not
// nil. Error statuses are returned as *core.TransportError.
func (e *HTTPEndpoint) do(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &core.TransportError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		// any success body is fine
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (e *HTTPEndpoint) Fetch(ctx context.Context, req *core.FetchRequest) (*core.FetchResponse, error) {
	var resp core.FetchResponse
	if err := e.do(ctx, http.MethodPost, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *HTTPEndpoint) Create(ctx context.Context, record *core.Record) (core.RecordID, error) {
	var resp core.CreateResponse
	if err := e.do(ctx, http.MethodPost, &core.CreateRequest{Create: record}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("endpoint returned no id for the created record")
	}
	return resp.ID, nil
}

func (e *HTTPEndpoint) Update(ctx context.Context, req *core.UpdateRequest) error {
	return e.do(ctx, http.MethodPut, req, nil)
}

func (e *HTTPEndpoint) Close() {
	e.client.CloseIdleConnections()
}
