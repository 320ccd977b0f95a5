//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package adapters

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

func TestDuckEndpoint(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "entries.duckdb")

	db, err := sql.Open("duckdb", path)
	r.NoError(err)
	_, err = db.Exec(`
		CREATE TABLE entries (id VARCHAR PRIMARY KEY, title VARCHAR, score DOUBLE);
		INSERT INTO entries VALUES ('a', 'Alpha', 1.5), ('b', 'Beta', NULL), ('c', '100% gamma', 3);
	`)
	r.NoError(err)
	r.NoError(db.Close())

	endpoint, err := NewEndpoint(&core.EndpointParams{Type: "duckdb", URL: path, Table: "entries"})
	r.NoError(err)
	defer endpoint.Close()

	resp, err := endpoint.Fetch(ctx, &core.FetchRequest{Offset: 1, Limit: 1})
	r.NoError(err)
	r.Equal(3, resp.Total)
	r.Len(resp.Data, 1)
	r.Equal(core.RecordID("b"), resp.Data[0].ID)

	resp, err = endpoint.Fetch(ctx, &core.FetchRequest{Query: "0%", Limit: 10})
	r.NoError(err)
	r.Equal(1, resp.Total)
	r.Equal(core.RecordID("c"), resp.Data[0].ID)

	id, err := endpoint.Create(ctx, core.NewRecord("", map[string]any{"title": "Delta"}))
	r.NoError(err)
	r.NotEmpty(id)

	r.NoError(endpoint.Update(ctx, &core.UpdateRequest{ID: "b", FieldName: "score", FieldData: 7.25}))

	err = endpoint.Update(ctx, &core.UpdateRequest{ID: "missing", FieldName: "title", FieldData: "x"})
	r.ErrorIs(err, core.ErrRecordNotFound)

	resp, err = endpoint.Fetch(ctx, &core.FetchRequest{Query: "beta", Limit: 10})
	r.NoError(err)
	r.Equal(1, resp.Total)
	r.Equal(7.25, resp.Data[0].Get("score"))
}
