package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type (
	// Converter renders a stored value for display.
	Converter func(value any) string
	// Parser turns editor text into the value that gets stored.
	Parser func(raw string) (any, error)
	// Constraint reports whether a value is acceptable for a required column.
	Constraint func(value any) bool
)

// Column is the static configuration of a single field.
type Column struct {
	Name  string
	Width int
	// Label defaults to the title-cased name
	Label    string
	Type     ColumnType
	ReadOnly bool
	// NewEntry set to false hides the column in the new entry form
	NewEntry     *bool
	Required     bool
	RequiredText string

	Convert    Converter
	Parse      Parser
	Constraint Constraint
}

// Title returns the label shown in headers and forms.
func (c *Column) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return toTitle(c.Name)
}

func (c *Column) requiredMessage() string {
	if c.RequiredText != "" {
		return c.RequiredText
	}
	return c.Title() + " is required."
}

func (c *Column) eligibleForNewEntry() bool {
	return c.NewEntry == nil || *c.NewEntry
}

func (c *Column) parser() Parser {
	if c.Parse != nil {
		return c.Parse
	}

	switch c.Type {
	case ColumnTypeNumber:
		return ParseFloat
	case ColumnTypeList:
		return ParseList
	default:
		return nil
	}
}

// parse converts editor text to the value for this column. Blank text of
// parsed columns is stored as nil.
func (c *Column) parse(raw string) (any, error) {
	parse := c.parser()
	if parse == nil {
		return raw, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	value, err := parse(raw)
	if err != nil {
		return nil, &ValidationError{Column: c.Name, Message: err.Error()}
	}
	return value, nil
}

// validate applies the constraint gate. Only required columns are checked,
// the default constraint is Truthy.
func (c *Column) validate(value any) error {
	if !c.Required {
		return nil
	}

	constraint := c.Constraint
	if constraint == nil {
		constraint = Truthy
	}

	if !constraint(value) {
		return &ValidationError{Column: c.Name, Message: c.requiredMessage()}
	}
	return nil
}

// render returns the display text of value. Columns without their own
// converter fall back to the table wide one, except lists and date/times
// which are always shown as plain text.
func (c *Column) render(value any, fallback Converter) string {
	convert := c.Convert
	if convert == nil && c.Type != ColumnTypeList && c.Type != ColumnTypeDateTime {
		convert = fallback
	}

	if convert != nil {
		return convert(value)
	}
	return ToText(value)
}

func toTitle(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func totalWidth(columns []*Column) int {
	w := 0
	for _, c := range columns {
		w += c.Width
	}
	return w
}

func findColumn(columns []*Column, name string) (*Column, bool) {
	for _, c := range columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
