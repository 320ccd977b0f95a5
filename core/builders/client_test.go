package builders

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

func setupTestClient(t *testing.T, dialect *Dialect) (*Client, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := NewClient(db, "entries", dialect, WithIDGenerator(func() string { return "new-id" }))

	return client, mock
}

func expectColumns(mock sqlmock.Sqlmock, query string) {
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"name"}).AddRow("id").AddRow("title").AddRow("tags"))
}

func TestClient_Fetch(t *testing.T) {
	r := require.New(t)

	client, mock := setupTestClient(t, DialectSQLite)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT * FROM "entries" ORDER BY "id" LIMIT ? OFFSET ?`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "tags"}).
			AddRow("a", "first", `["x"]`).
			AddRow([]byte("b"), []byte("second"), nil))

	resp, err := client.Fetch(context.Background(), &core.FetchRequest{Limit: 10})
	r.NoError(err)
	r.NoError(mock.ExpectationsWereMet())

	r.Equal(12, resp.Total)
	r.Equal([]*core.Record{
		core.NewRecord("a", map[string]any{"title": "first", "tags": `["x"]`}),
		core.NewRecord("b", map[string]any{"title": "second", "tags": nil}),
	}, resp.Data)
}

func TestClient_FetchSearch(t *testing.T) {
	r := require.New(t)

	client, mock := setupTestClient(t, DialectSQLite)

	where := ` WHERE LOWER(CAST("id" AS TEXT)) LIKE ? ESCAPE '\'` +
		` OR LOWER(CAST("title" AS TEXT)) LIKE ? ESCAPE '\'` +
		` OR LOWER(CAST("tags" AS TEXT)) LIKE ? ESCAPE '\'`
	pattern := `%fi\_rst%`

	expectColumns(mock, "SELECT name FROM pragma_table_info('entries')")
	mock.ExpectQuery(`SELECT COUNT(*) FROM "entries"`+where).
		WithArgs(pattern, pattern, pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT * FROM "entries"`+where+` ORDER BY "id" LIMIT ? OFFSET ?`).
		WithArgs(pattern, pattern, pattern, 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "tags"}).AddRow("a", "fi_rst", nil))

	resp, err := client.Fetch(context.Background(), &core.FetchRequest{Query: "FI_rst", Offset: 5, Limit: 5})
	r.NoError(err)
	r.NoError(mock.ExpectationsWereMet())
	r.Len(resp.Data, 1)
	r.Equal(1, resp.Total)
}

func TestClient_FetchSearchPostgres(t *testing.T) {
	r := require.New(t)

	client, mock := setupTestClient(t, DialectPostgres)

	where := ` WHERE LOWER(CAST("id" AS TEXT)) LIKE $1 ESCAPE '\'` +
		` OR LOWER(CAST("title" AS TEXT)) LIKE $2 ESCAPE '\'` +
		` OR LOWER(CAST("tags" AS TEXT)) LIKE $3 ESCAPE '\'`

	expectColumns(mock, "SELECT column_name FROM information_schema.columns WHERE table_name = 'entries' ORDER BY ordinal_position")
	mock.ExpectQuery(`SELECT COUNT(*) FROM "entries"` + where).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT * FROM "entries"` + where + ` ORDER BY "id" LIMIT $4 OFFSET $5`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "tags"}))

	resp, err := client.Fetch(context.Background(), &core.FetchRequest{Query: "x", Limit: 10})
	r.NoError(err)
	r.NoError(mock.ExpectationsWereMet())
	r.Empty(resp.Data)
	r.Zero(resp.Total)
}

func TestClient_FetchOffsetFetch(t *testing.T) {
	testCases := []struct {
		name    string
		dialect *Dialect
		count   string
		query   string
	}{
		{
			name:    "sqlserver",
			dialect: DialectSQLServer,
			count:   `SELECT COUNT(*) FROM [entries]`,
			query:   `SELECT * FROM [entries] ORDER BY [id] OFFSET @p2 ROWS FETCH NEXT @p1 ROWS ONLY`,
		},
		{
			name:    "oracle",
			dialect: DialectOracle,
			count:   `SELECT COUNT(*) FROM "entries"`,
			query:   `SELECT * FROM "entries" ORDER BY "id" OFFSET :2 ROWS FETCH NEXT :1 ROWS ONLY`,
		},
		{
			name:    "duckdb",
			dialect: DialectDuckDB,
			count:   `SELECT COUNT(*) FROM "entries"`,
			query:   `SELECT * FROM "entries" ORDER BY "id" LIMIT ? OFFSET ?`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			client, mock := setupTestClient(t, tc.dialect)

			mock.ExpectQuery(tc.count).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			mock.ExpectQuery(tc.query).
				WithArgs(2, 2).
				WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("c", "third"))

			resp, err := client.Fetch(context.Background(), &core.FetchRequest{Offset: 2, Limit: 2})
			r.NoError(err)
			r.NoError(mock.ExpectationsWereMet())
			r.Equal(3, resp.Total)
			r.Equal([]*core.Record{core.NewRecord("c", map[string]any{"title": "third"})}, resp.Data)
		})
	}
}

func TestClient_FetchSearchSQLServer(t *testing.T) {
	r := require.New(t)

	client, mock := setupTestClient(t, DialectSQLServer)

	where := ` WHERE LOWER(CAST([id] AS NVARCHAR(MAX))) LIKE @p1 ESCAPE '\'` +
		` OR LOWER(CAST([title] AS NVARCHAR(MAX))) LIKE @p2 ESCAPE '\'` +
		` OR LOWER(CAST([tags] AS NVARCHAR(MAX))) LIKE @p3 ESCAPE '\'`

	expectColumns(mock, "SELECT column_name FROM information_schema.columns WHERE table_name = 'entries' ORDER BY ordinal_position")
	mock.ExpectQuery(`SELECT COUNT(*) FROM [entries]` + where).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT * FROM [entries]` + where + ` ORDER BY [id] OFFSET @p5 ROWS FETCH NEXT @p4 ROWS ONLY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "tags"}))

	resp, err := client.Fetch(context.Background(), &core.FetchRequest{Query: "x", Limit: 10})
	r.NoError(err)
	r.NoError(mock.ExpectationsWereMet())
	r.Empty(resp.Data)
}

func TestClient_Create(t *testing.T) {
	r := require.New(t)

	client, mock := setupTestClient(t, DialectMySQL)

	expectColumns(mock, "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = 'entries' ORDER BY ordinal_position")
	mock.ExpectExec("INSERT INTO `entries` (`id`, `tags`, `title`) VALUES (?, ?, ?)").
		WithArgs("new-id", `["a","b"]`, "hello").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := client.Create(context.Background(), core.NewRecord("", map[string]any{
		"title": "hello",
		"tags":  []string{"a", "b"},
	}))
	r.NoError(err)
	r.NoError(mock.ExpectationsWereMet())
	r.Equal(core.RecordID("new-id"), id)

	// unknown fields are rejected before anything is sent
	_, err = client.Create(context.Background(), core.NewRecord("", map[string]any{"nope": 1}))
	r.ErrorIs(err, core.ErrUnknownField)
	r.NoError(mock.ExpectationsWereMet())
}

func TestClient_Update(t *testing.T) {
	client, mock := setupTestClient(t, DialectSQLite)
	expectColumns(mock, "SELECT name FROM pragma_table_info('entries')")

	tests := []struct {
		name    string
		req     *core.UpdateRequest
		setup   func()
		wantErr error
	}{
		{
			name: "updated",
			req:  &core.UpdateRequest{ID: "a", FieldName: "title", FieldData: "changed"},
			setup: func() {
				mock.ExpectExec(`UPDATE "entries" SET "title" = ? WHERE "id" = ?`).
					WithArgs("changed", "a").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "list",
			req:  &core.UpdateRequest{ID: "a", FieldName: "tags", FieldData: []any{"x"}},
			setup: func() {
				mock.ExpectExec(`UPDATE "entries" SET "tags" = ? WHERE "id" = ?`).
					WithArgs(`["x"]`, "a").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing record",
			req:  &core.UpdateRequest{ID: "zzz", FieldName: "title", FieldData: "changed"},
			setup: func() {
				mock.ExpectExec(`UPDATE "entries" SET "title" = ? WHERE "id" = ?`).
					WithArgs("changed", "zzz").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: core.ErrRecordNotFound,
		},
		{
			name:    "unknown field",
			req:     &core.UpdateRequest{ID: "a", FieldName: "nope"},
			setup:   func() {},
			wantErr: core.ErrUnknownField,
		},
		{
			name:    "id is not editable",
			req:     &core.UpdateRequest{ID: "a", FieldName: "id", FieldData: "b"},
			setup:   func() {},
			wantErr: core.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			err := client.Update(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDialect(t *testing.T) {
	r := require.New(t)

	r.Equal(`"we""ird"`, DialectPostgres.Quote(`we"ird`))
	r.Equal("`we``ird`", DialectMySQL.Quote("we`ird"))
	r.Equal("$3", DialectPostgres.Placeholder(3))
	r.Equal("?", DialectSQLite.Placeholder(3))
	r.Equal("[we]]ird]", DialectSQLServer.Quote("we]ird"))
	r.Equal("@p2", DialectSQLServer.Placeholder(2))
	r.Equal(":2", DialectOracle.Placeholder(2))
	r.Equal("TO_CHAR(x)", DialectOracle.Text("x"))
	r.Equal(`100\%\_\\`, escapeLike(`100%_\`))
}
