package adapters

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/builders"
)

// Register client
func init() {
	c := func(params *core.EndpointParams) (core.Endpoint, error) {
		return NewMySQL(params.URL, params.Table)
	}
	_ = register(adapterFunc(c), "mysql")
}

func NewMySQL(url, table string) (*builders.Client, error) {
	if table == "" {
		return nil, ErrMissingTable
	}

	cfg, err := mysql.ParseDSN(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}
	// updates that do not change the value still count as a match
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %w", err)
	}

	return builders.NewClient(sql.OpenDB(connector), table, builders.DialectMySQL), nil
}
