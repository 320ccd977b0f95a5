package core

type (
	// FormatterOptions provide various options for formatters
	FormatterOptions struct {
		// index of the first row in the whole (unpaged) record set
		ChunkStart int
		// display widths of the columns, 0 means unlimited
		Widths []int
	}

	// Formatter converts header and rows to bytes
	Formatter interface {
		Format(header Header, rows []Row, opts *FormatterOptions) ([]byte, error)
	}
)

type (
	// Row and Header are what formatters consume
	Row    []any
	Header []string
)
