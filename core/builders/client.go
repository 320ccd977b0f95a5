package builders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

var _ core.Endpoint = (*Client)(nil)

// Client serves a single sql table as an endpoint. Used by the specific
// database adapters.
type Client struct {
	db             *sql.DB
	table          string
	dialect        *Dialect
	typeProcessors map[string]func(any) any
	idColumn       string
	newID          func() string

	columnsMu sync.Mutex
	columns   []string
}

func NewClient(db *sql.DB, table string, dialect *Dialect, opts ...ClientOption) *Client {
	config := clientConfig{
		typeProcessors: make(map[string]func(any) any),
		idColumn:       "id",
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		db:             db,
		table:          table,
		dialect:        dialect,
		typeProcessors: config.typeProcessors,
		idColumn:       config.idColumn,
		newID:          config.newID,
	}
}

// Columns returns the column names of the table. The result is cached after
// the first successful call.
func (c *Client) Columns(ctx context.Context) ([]string, error) {
	c.columnsMu.Lock()
	defer c.columnsMu.Unlock()

	if c.columns != nil {
		return c.columns, nil
	}

	query := fmt.Sprintf(c.dialect.ColumnsQuery, strings.ReplaceAll(c.table, "'", "''"))
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", c.table)
	}

	c.columns = columns
	return columns, nil
}

// where builds the search clause: a case-insensitive substring match over
// every column cast to text.
func (c *Client) where(ctx context.Context, query string, args []any) (string, []any, error) {
	if query == "" {
		return "", args, nil
	}

	columns, err := c.Columns(ctx)
	if err != nil {
		return "", nil, err
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	conditions := make([]string, len(columns))
	for i, col := range columns {
		args = append(args, pattern)
		conditions[i] = fmt.Sprintf("LOWER(%s) LIKE %s%s",
			c.dialect.Text(c.dialect.Quote(col)),
			c.dialect.Placeholder(len(args)),
			c.dialect.LikeEscape,
		)
	}

	return " WHERE " + strings.Join(conditions, " OR "), args, nil
}

func (c *Client) Fetch(ctx context.Context, req *core.FetchRequest) (*core.FetchResponse, error) {
	table := c.dialect.Quote(c.table)

	where, args, err := c.where(ctx, req.Query, nil)
	if err != nil {
		return nil, err
	}

	var total int
	err = c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	args = append(args, req.Limit, req.Offset)
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s %s",
		table, where, c.dialect.Quote(c.idColumn),
		c.dialect.paginate(c.dialect.Placeholder(len(args)-1), c.dialect.Placeholder(len(args))))

	records, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &core.FetchResponse{
		Data:  records,
		Total: total,
	}, nil
}

func (c *Client) getTypeProcessor(typ string) func(any) any {
	proc, ok := c.typeProcessors[strings.ToLower(typ)]
	if ok {
		return proc
	}

	return func(val any) any {
		valb, ok := val.([]byte)
		if ok {
			return string(valb)
		}
		return val
	}
}

// query executes a query and converts every row to a record.
func (c *Client) query(ctx context.Context, query string, args ...any) ([]*core.Record, error) {
	dbRows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	dbCols, err := dbRows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var records []*core.Record
	for dbRows.Next() {
		columns := make([]any, len(dbCols))
		columnPointers := make([]any, len(dbCols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := dbRows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		record := core.NewRecord("", nil)
		for i, col := range dbCols {
			val := c.getTypeProcessor(col.DatabaseTypeName())(columns[i])

			if col.Name() == c.idColumn {
				record.ID = core.RecordID(core.ToText(val))
				continue
			}
			record.Fields[col.Name()] = val
		}
		records = append(records, record)
	}

	return records, dbRows.Err()
}

// encode converts a field value to something the driver accepts. Lists are
// stored as JSON text.
func encode(value any) (any, error) {
	switch v := value.(type) {
	case []string, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}

func (c *Client) Create(ctx context.Context, record *core.Record) (core.RecordID, error) {
	columns, err := c.Columns(ctx)
	if err != nil {
		return "", err
	}

	id := c.newID()

	fields := []string{c.dialect.Quote(c.idColumn)}
	args := []any{id}

	names := make([]string, 0, len(record.Fields))
	for name := range record.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if name == c.idColumn {
			continue
		}
		if !slices.Contains(columns, name) {
			return "", fmt.Errorf("%w: %q", core.ErrUnknownField, name)
		}

		value, err := encode(record.Fields[name])
		if err != nil {
			return "", fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, c.dialect.Quote(name))
		args = append(args, value)
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = c.dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.dialect.Quote(c.table), strings.Join(fields, ", "), strings.Join(placeholders, ", "))

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return "", err
	}

	return core.RecordID(id), nil
}

func (c *Client) Update(ctx context.Context, req *core.UpdateRequest) error {
	columns, err := c.Columns(ctx)
	if err != nil {
		return err
	}
	if req.FieldName == c.idColumn || !slices.Contains(columns, req.FieldName) {
		return fmt.Errorf("%w: %q", core.ErrUnknownField, req.FieldName)
	}

	value, err := encode(req.FieldData)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		c.dialect.Quote(c.table),
		c.dialect.Quote(req.FieldName), c.dialect.Placeholder(1),
		c.dialect.Quote(c.idColumn), c.dialect.Placeholder(2))

	res, err := c.db.ExecContext(ctx, query, value, string(req.ID))
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", core.ErrRecordNotFound, req.ID)
	}

	return nil
}

func (c *Client) Close() {
	c.db.Close()
}

