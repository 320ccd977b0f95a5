package builders

import (
	"fmt"
	"strings"
)

// Dialect holds the bits of SQL that differ between databases.
type Dialect struct {
	// Placeholder returns the n-th (1 based) bind parameter
	Placeholder func(n int) string
	// Quote quotes an identifier
	Quote func(ident string) string
	// Text casts a column expression to text
	Text func(expr string) string
	// LikeEscape is appended to LIKE clauses, empty if backslash already
	// is the default escape character
	LikeEscape string
	// ColumnsQuery lists the column names of a table, it is sprintf-ed with
	// the table name
	ColumnsQuery string
	// Paginate returns the clause following ORDER BY, nil means
	// "LIMIT <limit> OFFSET <offset>"
	Paginate func(limit, offset string) string
}

func (d *Dialect) paginate(limit, offset string) string {
	if d.Paginate != nil {
		return d.Paginate(limit, offset)
	}
	return fmt.Sprintf("LIMIT %s OFFSET %s", limit, offset)
}

func offsetFetch(limit, offset string) string {
	return fmt.Sprintf("OFFSET %s ROWS FETCH NEXT %s ROWS ONLY", offset, limit)
}

func quoteWith(q string) func(string) string {
	return func(ident string) string {
		return q + strings.ReplaceAll(ident, q, q+q) + q
	}
}

func questionMark(int) string { return "?" }

var (
	DialectSQLite = &Dialect{
		Placeholder:  questionMark,
		Quote:        quoteWith(`"`),
		Text:         func(expr string) string { return fmt.Sprintf("CAST(%s AS TEXT)", expr) },
		LikeEscape:   ` ESCAPE '\'`,
		ColumnsQuery: "SELECT name FROM pragma_table_info('%s')",
	}

	DialectPostgres = &Dialect{
		Placeholder:  func(n int) string { return fmt.Sprintf("$%d", n) },
		Quote:        quoteWith(`"`),
		Text:         func(expr string) string { return fmt.Sprintf("CAST(%s AS TEXT)", expr) },
		LikeEscape:   ` ESCAPE '\'`,
		ColumnsQuery: "SELECT column_name FROM information_schema.columns WHERE table_name = '%s' ORDER BY ordinal_position",
	}

	DialectMySQL = &Dialect{
		Placeholder:  questionMark,
		Quote:        quoteWith("`"),
		Text:         func(expr string) string { return fmt.Sprintf("CAST(%s AS CHAR)", expr) },
		ColumnsQuery: "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = '%s' ORDER BY ordinal_position",
	}

	DialectSQLServer = &Dialect{
		Placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		Quote: func(ident string) string {
			return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
		},
		Text:         func(expr string) string { return fmt.Sprintf("CAST(%s AS NVARCHAR(MAX))", expr) },
		LikeEscape:   ` ESCAPE '\'`,
		ColumnsQuery: "SELECT column_name FROM information_schema.columns WHERE table_name = '%s' ORDER BY ordinal_position",
		Paginate:     offsetFetch,
	}

	DialectOracle = &Dialect{
		Placeholder:  func(n int) string { return fmt.Sprintf(":%d", n) },
		Quote:        quoteWith(`"`),
		Text:         func(expr string) string { return fmt.Sprintf("TO_CHAR(%s)", expr) },
		LikeEscape:   ` ESCAPE '\'`,
		ColumnsQuery: "SELECT column_name FROM user_tab_columns WHERE table_name = '%s' ORDER BY column_id",
		Paginate:     offsetFetch,
	}

	DialectDuckDB = &Dialect{
		Placeholder:  questionMark,
		Quote:        quoteWith(`"`),
		Text:         func(expr string) string { return fmt.Sprintf("CAST(%s AS VARCHAR)", expr) },
		LikeEscape:   ` ESCAPE '\'`,
		ColumnsQuery: "SELECT column_name FROM information_schema.columns WHERE table_name = '%s' ORDER BY ordinal_position",
	}
)

// escapeLike escapes the LIKE wildcards of s with a backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
