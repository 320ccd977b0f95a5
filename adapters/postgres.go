package adapters

import (
	"database/sql"
	"encoding/json"
	"fmt"
	nurl "net/url"

	_ "github.com/lib/pq"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/builders"
)

// Register client
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ core.Adapter = (*Postgres)(nil)

type Postgres struct{}

// postgresJSON decodes json columns, so lists stored as json arrays come
// back as lists.
func postgresJSON(a any) any {
	b, ok := a.([]byte)
	if !ok {
		return a
	}

	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return string(b)
	}
	return decoded
}

func (p *Postgres) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	if params.Table == "" {
		return nil, ErrMissingTable
	}

	u, err := nurl.Parse(params.URL)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w: ", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	return builders.NewClient(db, params.Table, builders.DialectPostgres,
		builders.WithCustomTypeProcessor("json", postgresJSON),
		builders.WithCustomTypeProcessor("jsonb", postgresJSON),
	), nil
}
