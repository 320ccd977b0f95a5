package adapters

import (
	"database/sql"
	"fmt"

	_ "github.com/sijms/go-ora/v2"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/builders"
)

// Register client
func init() {
	_ = register(&Oracle{}, "oracle")
}

var _ core.Adapter = (*Oracle)(nil)

type Oracle struct{}

func (o *Oracle) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	if params.Table == "" {
		return nil, ErrMissingTable
	}

	db, err := sql.Open("oracle", params.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to oracle database: %v", err)
	}

	return builders.NewClient(db, params.Table, builders.DialectOracle), nil
}
