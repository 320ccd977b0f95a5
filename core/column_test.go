package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumn_Title(t *testing.T) {
	r := require.New(t)

	r.Equal("Title", (&Column{Name: "title"}).Title())
	r.Equal("Custom", (&Column{Name: "title", Label: "Custom"}).Title())
	r.Equal("Über", (&Column{Name: "über"}).Title())
	r.Equal("", (&Column{}).Title())
}

func TestColumn_Validate(t *testing.T) {
	t.Run("optional columns accept anything", func(t *testing.T) {
		r := require.New(t)

		col := &Column{Name: "notes"}
		r.NoError(col.validate(nil))
		r.NoError(col.validate(""))
	})

	t.Run("required columns default to truthy", func(t *testing.T) {
		r := require.New(t)

		col := &Column{Name: "title", Required: true}

		err := col.validate("")
		r.ErrorIs(err, ErrValidation)
		var verr *ValidationError
		r.True(errors.As(err, &verr))
		r.Equal("title", verr.Column)
		r.Equal("Title is required.", verr.Message)

		r.NoError(col.validate("x"))
		// default constraint is not stored on the column
		r.Nil(col.Constraint)
	})

	t.Run("custom constraint and message", func(t *testing.T) {
		r := require.New(t)

		col := &Column{
			Name:         "score",
			Required:     true,
			RequiredText: "Score must be positive.",
			Constraint: func(value any) bool {
				f, ok := value.(float64)
				return ok && f > 0
			},
		}

		err := col.validate(float64(-1))
		r.ErrorIs(err, ErrValidation)
		r.Contains(err.Error(), "Score must be positive.")
		r.NoError(col.validate(float64(2)))
	})
}

func TestColumn_Parse(t *testing.T) {
	r := require.New(t)

	number := &Column{Name: "score", Type: ColumnTypeNumber}

	value, err := number.parse("3.14abc")
	r.NoError(err)
	r.Equal(3.14, value)

	value, err = number.parse("   ")
	r.NoError(err)
	r.Nil(value)

	_, err = number.parse("abc")
	r.ErrorIs(err, ErrValidation)

	list := &Column{Name: "tags", Type: ColumnTypeList}
	value, err = list.parse("b\na")
	r.NoError(err)
	r.Equal([]string{"a", "b"}, value)

	text := &Column{Name: "title"}
	value, err = text.parse("  spaced  ")
	r.NoError(err)
	r.Equal("  spaced  ", value)

	custom := &Column{Name: "title", Parse: func(raw string) (any, error) {
		return strings.ToUpper(raw), nil
	}}
	value, err = custom.parse("abc")
	r.NoError(err)
	r.Equal("ABC", value)
}

func TestColumn_Render(t *testing.T) {
	r := require.New(t)

	upper := func(value any) string { return strings.ToUpper(ToText(value)) }
	own := func(value any) string { return "own" }

	r.Equal("ABC", (&Column{Name: "title"}).render("abc", upper))
	r.Equal("own", (&Column{Name: "title", Convert: own}).render("abc", upper))
	r.Equal("abc", (&Column{Name: "title"}).render("abc", nil))

	// lists and date/times ignore the table wide converter
	r.Equal("a\nb", (&Column{Name: "tags", Type: ColumnTypeList}).render([]string{"a", "b"}, upper))
	r.Equal("2024-Mar-05 13:45", (&Column{Name: "due", Type: ColumnTypeDateTime}).render("2024-Mar-05 13:45", upper))
	r.Equal("own", (&Column{Name: "tags", Type: ColumnTypeList, Convert: own}).render([]string{"a"}, upper))
}

func TestColumnType(t *testing.T) {
	r := require.New(t)

	for _, typ := range []ColumnType{
		ColumnTypeOneLine,
		ColumnTypeMultiLine,
		ColumnTypeMarkdown,
		ColumnTypeNumber,
		ColumnTypeDateTime,
		ColumnTypeList,
	} {
		r.Equal(typ, ColumnTypeFromString(typ.String()))
	}
	r.Equal(ColumnTypeOneLine, ColumnTypeFromString("whatever"))

	r.Equal(EditorKindInline, ColumnTypeOneLine.EditorKind())
	r.Equal(EditorKindInline, ColumnTypeMultiLine.EditorKind())
	r.Equal(EditorKindInline, ColumnTypeNumber.EditorKind())
	r.Equal(EditorKindMarkdown, ColumnTypeMarkdown.EditorKind())
	r.Equal(EditorKindList, ColumnTypeList.EditorKind())
	r.Equal(EditorKindDateTime, ColumnTypeDateTime.EditorKind())
}
