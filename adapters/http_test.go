package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

type recordedRequest struct {
	method      string
	contentType string
	body        map[string]any
}

func newTestHTTPEndpoint(t *testing.T, status int, response string) (*HTTPEndpoint, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      req.Method,
			contentType: req.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	endpoint, err := NewHTTPEndpoint(srv.URL, srv.Client())
	require.NoError(t, err)
	t.Cleanup(endpoint.Close)

	return endpoint, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestHTTPEndpoint_Fetch(t *testing.T) {
	r := require.New(t)

	endpoint, requests := newTestHTTPEndpoint(t, http.StatusOK,
		`{"data": [{"id": 1, "title": "one"}, {"id": "b", "tags": ["x"]}], "total": 42}`)

	resp, err := endpoint.Fetch(context.Background(), &core.FetchRequest{Query: "on", Offset: 10, Limit: 10})
	r.NoError(err)

	r.Equal(42, resp.Total)
	r.Equal([]*core.Record{
		core.NewRecord("1", map[string]any{"title": "one"}),
		core.NewRecord("b", map[string]any{"tags": []any{"x"}}),
	}, resp.Data)

	r.Len(requests(), 1)
	req := requests()[0]
	r.Equal(http.MethodPost, req.method)
	r.Equal("application/json; charset=utf-8", req.contentType)
	r.Equal(map[string]any{"q": "on", "offset": float64(10), "limit": float64(10)}, req.body)
}

func TestHTTPEndpoint_Create(t *testing.T) {
	r := require.New(t)

	endpoint, requests := newTestHTTPEndpoint(t, http.StatusCreated, `{"id": 77}`)

	id, err := endpoint.Create(context.Background(), core.NewRecord("", map[string]any{"title": "new"}))
	r.NoError(err)
	r.Equal(core.RecordID("77"), id)

	req := requests()[0]
	r.Equal(http.MethodPost, req.method)
	r.Equal(map[string]any{"create": map[string]any{"title": "new"}}, req.body)
}

func TestHTTPEndpoint_CreateWithoutID(t *testing.T) {
	endpoint, _ := newTestHTTPEndpoint(t, http.StatusOK, `{}`)

	_, err := endpoint.Create(context.Background(), core.NewRecord("", nil))
	require.Error(t, err)
}

func TestHTTPEndpoint_Update(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:     "json body",
			status:   http.StatusOK,
			response: `{"ok": true}`,
		},
		{
			name:     "non json success",
			status:   http.StatusOK,
			response: "saved!",
		},
		{
			name:     "empty success",
			status:   http.StatusNoContent,
			response: "",
		},
		{
			name:       "json error",
			status:     http.StatusBadRequest,
			response:   `{"error": "title too long"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "title too long",
		},
		{
			name:       "plain error",
			status:     http.StatusInternalServerError,
			response:   "<html>oops</html>",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
		{
			name:       "redirect is an error",
			status:     http.StatusNotModified,
			wantStatus: http.StatusNotModified,
			wantMsg:    "Not Modified",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			endpoint, requests := newTestHTTPEndpoint(t, tt.status, tt.response)

			err := endpoint.Update(context.Background(), &core.UpdateRequest{
				ID:        "1",
				FieldName: "tags",
				FieldData: []string{"a", "b"},
			})

			if tt.wantStatus == 0 {
				assert.NoError(t, err)
			} else {
				var terr *core.TransportError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, tt.wantStatus, terr.Status)
				assert.Equal(t, tt.wantMsg, terr.Message)
			}

			require.Len(t, requests(), 1)
			assert.Equal(t, http.MethodPut, requests()[0].method)
			assert.Equal(t, map[string]any{
				"id":        "1",
				"fieldName": "tags",
				"fieldData": []any{"a", "b"},
			}, requests()[0].body)
		})
	}
}

func TestHTTPEndpoint_MalformedFetch(t *testing.T) {
	endpoint, _ := newTestHTTPEndpoint(t, http.StatusOK, "not json")

	_, err := endpoint.Fetch(context.Background(), &core.FetchRequest{Limit: 10})
	require.Error(t, err)
}

func TestNewHTTPEndpoint_InvalidURL(t *testing.T) {
	r := require.New(t)

	_, err := NewHTTPEndpoint("ftp://example.com", nil)
	r.Error(err)

	_, err = NewHTTPEndpoint("://broken", nil)
	r.Error(err)

	endpoint, err := NewHTTPEndpoint("https://example.com/api/records", nil)
	r.NoError(err)
	r.Equal(DefaultHTTPTimeout, endpoint.client.Timeout)
}
