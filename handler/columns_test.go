package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConverterPreset(t *testing.T) {
	r := require.New(t)

	list, err := converterPreset("list", 10)
	r.NoError(err)
	r.Equal("a\nb", list([]string{"a", "b"}))
	r.Equal("x\ny", list(`["x","y"]`))
	r.Equal("", list(nil))

	number, err := converterPreset("number", 0)
	r.NoError(err)
	r.Equal("3", number(3.0))
	r.Equal("3.14", number("3.14159 units"))

	upper, err := converterPreset("upper", 0)
	r.NoError(err)
	r.Equal("ABC", upper("abc"))

	none, err := converterPreset("", 0)
	r.NoError(err)
	r.Nil(none)

	_, err = converterPreset("sparkles", 0)
	r.Error(err)
}
