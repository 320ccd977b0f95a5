//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package adapters

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/builders"
)

// Register client
func init() {
	_ = register(&Duck{}, "duck", "duckdb")
}

var _ core.Adapter = (*Duck)(nil)

type Duck struct{}

func (d *Duck) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	if params.Table == "" {
		return nil, ErrMissingTable
	}

	db, err := sql.Open("duckdb", params.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to duckdb database: %v", err)
	}

	return builders.NewClient(db, params.Table, builders.DialectDuckDB), nil
}
