package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

// ColumnOptions is the column configuration sent from lua. Converters,
// parsers and constraints can't cross the rpc boundary, so they are picked
// from named presets.
type ColumnOptions struct {
	Name         string `msgpack:"name"`
	Width        int    `msgpack:"width"`
	Label        string `msgpack:"label"`
	Type         string `msgpack:"type"`
	ReadOnly     bool   `msgpack:"read_only"`
	NewEntry     *bool  `msgpack:"new_entry"`
	Required     bool   `msgpack:"required"`
	RequiredText string `msgpack:"required_text"`
	Convert      string `msgpack:"convert"`
	Parse        string `msgpack:"parse"`
	Constraint   string `msgpack:"constraint"`
}

// TableOptions is the table configuration sent from lua.
type TableOptions struct {
	ID       string           `msgpack:"id"`
	Name     string           `msgpack:"name"`
	Type     string           `msgpack:"type"`
	URL      string           `msgpack:"url"`
	Table    string           `msgpack:"table"`
	ReadOnly bool             `msgpack:"read_only"`
	NewEntry *bool            `msgpack:"new_entry"`
	Limit    int              `msgpack:"limit"`
	Convert  string           `msgpack:"convert"`
	Columns  []*ColumnOptions `msgpack:"columns"`
}

func (o *TableOptions) endpointParams() *core.EndpointParams {
	return &core.EndpointParams{
		ID:    core.EndpointID(o.ID),
		Name:  o.Name,
		Type:  o.Type,
		URL:   o.URL,
		Table: o.Table,
	}
}

func (o *TableOptions) tableParams(id core.TableID) (*core.TableParams, error) {
	if len(o.Columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", o.Name)
	}

	convert, err := converterPreset(o.Convert, 0)
	if err != nil {
		return nil, err
	}

	columns := make([]*core.Column, len(o.Columns))
	for i, opts := range o.Columns {
		col, err := opts.column()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", opts.Name, err)
		}
		columns[i] = col
	}

	return &core.TableParams{
		ID:       id,
		Name:     o.Name,
		Columns:  columns,
		ReadOnly: o.ReadOnly,
		NewEntry: o.NewEntry,
		Convert:  convert,
		Limit:    o.Limit,
	}, nil
}

func (o *ColumnOptions) column() (*core.Column, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("missing name")
	}

	convert, err := converterPreset(o.Convert, o.Width)
	if err != nil {
		return nil, err
	}
	parse, err := parserPreset(o.Parse)
	if err != nil {
		return nil, err
	}
	constraint, err := constraintPreset(o.Constraint)
	if err != nil {
		return nil, err
	}

	return &core.Column{
		Name:         o.Name,
		Width:        o.Width,
		Label:        o.Label,
		Type:         core.ColumnTypeFromString(o.Type),
		ReadOnly:     o.ReadOnly,
		NewEntry:     o.NewEntry,
		Required:     o.Required,
		RequiredText: o.RequiredText,
		Convert:      convert,
		Parse:        parse,
		Constraint:   constraint,
	}, nil
}

// converterPreset returns the named converter. An empty name means none.
func converterPreset(name string, width int) (core.Converter, error) {
	switch name {
	case "":
		return nil, nil
	case "markdown":
		return newMarkdownConverter(width)
	case "number":
		return convertNumber, nil
	case "list":
		return func(value any) string {
			return strings.Join(core.ToList(value), "\n")
		}, nil
	case "upper":
		return func(value any) string {
			return strings.ToUpper(core.ToText(value))
		}, nil
	case "lower":
		return func(value any) string {
			return strings.ToLower(core.ToText(value))
		}, nil
	default:
		return nil, fmt.Errorf("unknown converter: %q", name)
	}
}

func convertNumber(value any) string {
	switch v := value.(type) {
	case float64:
		if math.Trunc(v) == v && !math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	case string:
		f, err := core.ParseFloat(v)
		if err != nil {
			return v
		}
		return convertNumber(f)
	default:
		return core.ToText(value)
	}
}

// newMarkdownConverter renders markdown as plain text wrapped to width.
func newMarkdownConverter(width int) (core.Converter, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("glamour.NewTermRenderer: %w", err)
	}

	var mu sync.Mutex
	return func(value any) string {
		text := core.ToText(value)

		mu.Lock()
		out, err := renderer.Render(text)
		mu.Unlock()
		if err != nil {
			return text
		}
		return strings.TrimSpace(out)
	}, nil
}

func parserPreset(name string) (core.Parser, error) {
	switch name {
	case "":
		return nil, nil
	case "float":
		return core.ParseFloat, nil
	case "int":
		return core.ParseInt, nil
	case "list":
		return core.ParseList, nil
	case "trim":
		return func(raw string) (any, error) {
			return strings.TrimSpace(raw), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown parser: %q", name)
	}
}

func constraintPreset(name string) (core.Constraint, error) {
	switch name {
	case "":
		return nil, nil
	case "non_empty":
		return core.Truthy, nil
	case "positive":
		return func(value any) bool {
			switch v := value.(type) {
			case float64:
				return v > 0
			case int64:
				return v > 0
			default:
				return false
			}
		}, nil
	case "datetime":
		return core.IsDateTime, nil
	default:
		return nil, fmt.Errorf("unknown constraint: %q", name)
	}
}
