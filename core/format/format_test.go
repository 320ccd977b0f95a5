package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/format"
)

func TestCSV_Format(t *testing.T) {
	r := require.New(t)

	out, err := format.NewCSV().Format(
		core.Header{"id", "title", "score"},
		[]core.Row{
			{"1", "first, with comma", 3.5},
			{"2", nil, 10.0},
		},
		&core.FormatterOptions{},
	)
	r.NoError(err)
	r.Equal("id,title,score\n1,\"first, with comma\",3.5\n2,,10\n", string(out))
}

func TestJSON_Format(t *testing.T) {
	r := require.New(t)

	out, err := format.NewJSON().Format(
		core.Header{"id", "title"},
		[]core.Row{{"1", "first"}},
		&core.FormatterOptions{},
	)
	r.NoError(err)
	r.JSONEq(`[{"id": "1", "title": "first"}]`, string(out))

	out, err = format.NewJSON().Format(core.Header{"id"}, nil, &core.FormatterOptions{})
	r.NoError(err)
	r.JSONEq(`[]`, string(out))
}
