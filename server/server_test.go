package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kndndrj/nvim-dbedit/dbedit/adapters"
	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/mock"
)

func newTestServer(t *testing.T, opts ...mock.EndpointOption) (*httptest.Server, *mock.Endpoint) {
	t.Helper()

	endpoint := mock.NewEndpoint(mock.NewRecords(1, 26), opts...)
	srv := httptest.NewServer(New(endpoint, zap.NewNop().Sugar()))
	t.Cleanup(srv.Close)

	return srv, endpoint
}

func do(t *testing.T, srv *httptest.Server, method, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(out)
}

func TestServer_Fetch(t *testing.T) {
	r := require.New(t)

	srv, endpoint := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, `{"q": "record 2", "offset": 5, "limit": 1}`)
	r.Equal(http.StatusOK, code)
	r.JSONEq(`{"data": [{"id": "24", "title": "record 24", "score": 24}], "total": 7}`, body)

	// defaults
	code, _ = do(t, srv, http.MethodPost, `{}`)
	r.Equal(http.StatusOK, code)
	last := endpoint.Fetches()[len(endpoint.Fetches())-1]
	r.Equal(&core.FetchRequest{Limit: core.DefaultLimit}, last)

	code, body = do(t, srv, http.MethodPost, `{"q": "nothing", "limit": 10}`)
	r.Equal(http.StatusOK, code)
	r.JSONEq(`{"data": [], "total": 0}`, body)
}

func TestServer_Create(t *testing.T) {
	r := require.New(t)

	srv, endpoint := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, `{"create": {"title": "fresh", "tags": ["a"]}}`)
	r.Equal(http.StatusOK, code)
	r.JSONEq(`{"id": "26"}`, body)

	created := endpoint.Creates()
	r.Len(created, 1)
	r.Equal(map[string]any{"title": "fresh", "tags": []any{"a"}}, created[0].Fields)

	code, _ = do(t, srv, http.MethodPost, `{"create": null}`)
	r.Equal(http.StatusBadRequest, code)
}

func TestServer_Update(t *testing.T) {
	r := require.New(t)

	srv, endpoint := newTestServer(t)

	code, _ := do(t, srv, http.MethodPut, `{"id": 3, "fieldName": "title", "fieldData": "changed"}`)
	r.Equal(http.StatusOK, code)
	r.Equal(&core.UpdateRequest{ID: "3", FieldName: "title", FieldData: "changed"}, endpoint.Updates()[0])

	code, body := do(t, srv, http.MethodPut, `{"id": "404", "fieldName": "title", "fieldData": "x"}`)
	r.Equal(http.StatusNotFound, code)
	r.Contains(body, "record not found")

	code, _ = do(t, srv, http.MethodPut, `{"fieldName": "title"}`)
	r.Equal(http.StatusBadRequest, code)
}

func TestServer_Errors(t *testing.T) {
	errBroken := errors.New("storage is down")
	srv, _ := newTestServer(t, mock.EndpointWithFetchSideEffect(func(context.Context, *core.FetchRequest) error {
		return errBroken
	}))

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "wrong verb", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "delete", method: http.MethodDelete, want: http.StatusMethodNotAllowed},
		{name: "malformed json", method: http.MethodPost, body: `{"q":`, want: http.StatusBadRequest},
		{name: "not an object", method: http.MethodPost, body: `[1, 2]`, want: http.StatusBadRequest},
		{name: "wrong field type", method: http.MethodPost, body: `{"limit": "ten"}`, want: http.StatusBadRequest},
		{name: "endpoint failure", method: http.MethodPost, body: `{"limit": 10}`, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, tt.method, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestServer_Routing(t *testing.T) {
	r := require.New(t)

	srv, endpoint := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		req, err := http.NewRequest(method, srv.URL+"/entries", nil)
		r.NoError(err)

		resp, err := srv.Client().Do(req)
		r.NoError(err)
		resp.Body.Close()

		r.Equal(http.StatusMethodNotAllowed, resp.StatusCode, method)
		r.Equal("POST, PUT", resp.Header.Get("Allow"), method)
		r.Equal(contentTypeJSON, resp.Header.Get("Content-Type"), method)
	}

	// any path serves the endpoint
	resp, err := srv.Client().Post(srv.URL+"/api/entries", "application/json", strings.NewReader(`{"limit": 2}`))
	r.NoError(err)
	resp.Body.Close()
	r.Equal(http.StatusOK, resp.StatusCode)
	r.Len(endpoint.Fetches(), 1)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/entries", strings.NewReader(`{"id": "1", "fieldName": "title", "fieldData": "x"}`))
	r.NoError(err)
	resp, err = srv.Client().Do(req)
	r.NoError(err)
	resp.Body.Close()
	r.Equal(http.StatusOK, resp.StatusCode)
	r.Len(endpoint.Updates(), 1)
}

// TestServer_RoundTrip drives the server with the http adapter.
func TestServer_RoundTrip(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	srv, backend := newTestServer(t)

	endpoint, err := adapters.NewHTTPEndpoint(srv.URL, srv.Client())
	r.NoError(err)

	table := core.NewTable(&core.TableParams{
		Columns: []*core.Column{
			{Name: "title", Required: true},
			{Name: "score", Type: core.ColumnTypeNumber},
		},
	}, endpoint, nil)
	defer table.Close()

	r.NoError(table.Fetch(ctx))
	r.Equal(core.PageState{Current: 1, Count: 3, From: 1, To: 10, Total: 25}, table.Page())

	r.NoError(table.Navigate(ctx, core.NavigateLast))
	r.Len(table.Records(), 5)

	edit, err := table.StartEdit("21", "score")
	r.NoError(err)
	r.NoError(table.UpdateEdit(edit.ID, func(e *core.Edit) error {
		e.SetText("99.5 units")
		return nil
	}))
	commit, err := table.Commit(ctx, edit.ID)
	r.NoError(err)
	r.NoError(commit.Wait(ctx))

	r.Equal(99.5, backend.Updates()[0].FieldData)

	record, err := table.Create(ctx, map[string]string{"title": "over the wire", "score": "1"})
	r.NoError(err)
	r.Equal(core.RecordID("26"), record.ID)
}
