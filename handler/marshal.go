package handler

import (
	"github.com/neovim/go-client/msgpack"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// tableWrap is a wrapper around core.Table with msgpack marshaling capabilities
type tableWrap struct {
	table *core.Table
}

func WrapTable(table *core.Table) *tableWrap {
	return &tableWrap{
		table: table,
	}
}

func WrapTables(tables []*core.Table) []*tableWrap {
	wraps := make([]*tableWrap, len(tables))

	for i := range tables {
		wraps[i] = &tableWrap{
			table: tables[i],
		}
	}

	return wraps
}

func (tw *tableWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	if tw.table == nil {
		return enc.Encode(nil)
	}
	return enc.Encode(&struct {
		ID       string        `msgpack:"id"`
		Name     string        `msgpack:"name"`
		ReadOnly bool          `msgpack:"read_only"`
		NewEntry bool          `msgpack:"new_entry"`
		Limit    int           `msgpack:"limit"`
		Width    int           `msgpack:"width"`
		Query    string        `msgpack:"query"`
		Page     *pageWrap     `msgpack:"page"`
		Columns  []*columnWrap `msgpack:"columns"`
	}{
		ID:       string(tw.table.GetID()),
		Name:     tw.table.GetName(),
		ReadOnly: tw.table.IsReadOnly(),
		NewEntry: tw.table.NewEntryEnabled(),
		Limit:    tw.table.Limit(),
		Width:    tw.table.Width(),
		Query:    tw.table.Query(),
		Page:     WrapPage(tw.table.Page()),
		Columns:  WrapColumns(tw.table.Columns()),
	})
}

// pageWrap is a wrapper around core.PageState with msgpack marshaling capabilities
type pageWrap struct {
	page core.PageState
}

func WrapPage(page core.PageState) *pageWrap {
	return &pageWrap{
		page: page,
	}
}

func (pw *pageWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	return enc.Encode(&struct {
		Current     int  `msgpack:"current"`
		Count       int  `msgpack:"count"`
		From        int  `msgpack:"from"`
		To          int  `msgpack:"to"`
		Total       int  `msgpack:"total"`
		HasPrevious bool `msgpack:"has_previous"`
		HasNext     bool `msgpack:"has_next"`
	}{
		Current:     pw.page.Current,
		Count:       pw.page.Count,
		From:        pw.page.From,
		To:          pw.page.To,
		Total:       pw.page.Total,
		HasPrevious: pw.page.HasPrevious(),
		HasNext:     pw.page.HasNext(),
	})
}

// columnWrap is a wrapper around core.Column with msgpack marshaling capabilities
type columnWrap struct {
	column *core.Column
}

func WrapColumns(columns []*core.Column) []*columnWrap {
	wraps := make([]*columnWrap, len(columns))

	for i := range columns {
		wraps[i] = &columnWrap{
			column: columns[i],
		}
	}

	return wraps
}

func (cw *columnWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	if cw.column == nil {
		return enc.Encode(nil)
	}
	return enc.Encode(&struct {
		Name     string `msgpack:"name"`
		Title    string `msgpack:"title"`
		Type     string `msgpack:"type"`
		Editor   string `msgpack:"editor"`
		Width    int    `msgpack:"width"`
		ReadOnly bool   `msgpack:"read_only"`
		Required bool   `msgpack:"required"`
	}{
		Name:     cw.column.Name,
		Title:    cw.column.Title(),
		Type:     cw.column.Type.String(),
		Editor:   cw.column.Type.EditorKind().String(),
		Width:    cw.column.Width,
		ReadOnly: cw.column.ReadOnly,
		Required: cw.column.Required,
	})
}

// rowWrap is a record of the current page along with the display text of its cells
type rowWrap struct {
	record *core.Record
	cells  core.Row
}

func (rw *rowWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	cells := make([]string, len(rw.cells))
	for i, c := range rw.cells {
		cells[i] = core.ToText(c)
	}

	return enc.Encode(&struct {
		ID    string   `msgpack:"id"`
		Cells []string `msgpack:"cells"`
	}{
		ID:    string(rw.record.ID),
		Cells: cells,
	})
}

// pageContentWrap is what the ui needs to draw the current page.
type pageContentWrap struct {
	page   core.PageState
	header core.Header
	rows   []*rowWrap
}

func WrapPageContent(table *core.Table) *pageContentWrap {
	records, rows := table.View()

	wraps := make([]*rowWrap, len(records))
	for i := range records {
		wraps[i] = &rowWrap{
			record: records[i],
			cells:  rows[i],
		}
	}

	return &pageContentWrap{
		page:   table.Page(),
		header: table.Header(),
		rows:   wraps,
	}
}

func (pw *pageContentWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	return enc.Encode(&struct {
		Page   *pageWrap  `msgpack:"page"`
		Header []string   `msgpack:"header"`
		Rows   []*rowWrap `msgpack:"rows"`
	}{
		Page:   WrapPage(pw.page),
		Header: pw.header,
		Rows:   pw.rows,
	})
}

// editWrap is a wrapper around core.EditState with msgpack marshaling capabilities
type editWrap struct {
	edit *core.EditState
}

func WrapEdit(edit *core.EditState) *editWrap {
	return &editWrap{
		edit: edit,
	}
}

func (ew *editWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	if ew.edit == nil {
		return enc.Encode(nil)
	}
	return enc.Encode(&struct {
		ID       string      `msgpack:"id"`
		RecordID string      `msgpack:"record_id"`
		Field    string      `msgpack:"field"`
		Kind     string      `msgpack:"kind"`
		Text     string      `msgpack:"text"`
		List     []string    `msgpack:"list,omitempty"`
		Invalid  string      `msgpack:"invalid,omitempty"`
		Commit   *commitWrap `msgpack:"commit,omitempty"`
	}{
		ID:       string(ew.edit.ID),
		RecordID: string(ew.edit.RecordID),
		Field:    ew.edit.Field,
		Kind:     ew.edit.Kind.String(),
		Text:     ew.edit.Text,
		List:     ew.edit.List,
		Invalid:  errorMessage(ew.edit.Invalid),
		Commit:   WrapCommit(ew.edit.Commit),
	})
}

// commitWrap is a wrapper around core.Commit with msgpack marshaling capabilities
type commitWrap struct {
	commit *core.Commit
}

// WrapCommit returns nil for a nil commit.
func WrapCommit(commit *core.Commit) *commitWrap {
	if commit == nil {
		return nil
	}
	return &commitWrap{
		commit: commit,
	}
}

func WrapCommits(commits []*core.Commit) []*commitWrap {
	wraps := make([]*commitWrap, len(commits))

	for i := range commits {
		wraps[i] = &commitWrap{
			commit: commits[i],
		}
	}

	return wraps
}

func (cw *commitWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	if cw == nil || cw.commit == nil {
		return enc.Encode(nil)
	}

	return enc.Encode(&struct {
		ID        string `msgpack:"id"`
		EditID    string `msgpack:"edit_id"`
		RecordID  string `msgpack:"record_id"`
		Field     string `msgpack:"field"`
		State     string `msgpack:"state"`
		TimeTaken int64  `msgpack:"time_taken_us"`
		Timestamp int64  `msgpack:"timestamp_us"`
		Error     string `msgpack:"error,omitempty"`
	}{
		ID:        string(cw.commit.GetID()),
		EditID:    string(cw.commit.GetEditID()),
		RecordID:  string(cw.commit.GetRecordID()),
		Field:     cw.commit.GetFieldName(),
		State:     cw.commit.GetState().String(),
		TimeTaken: cw.commit.GetTimeTaken().Microseconds(),
		Timestamp: cw.commit.GetTimestamp().UnixMicro(),
		Error:     errorMessage(cw.commit.Err()),
	})
}

// recordWrap is a wrapper around core.Record with msgpack marshaling capabilities
type recordWrap struct {
	record *core.Record
}

func WrapRecord(record *core.Record) *recordWrap {
	return &recordWrap{
		record: record,
	}
}

func (rw *recordWrap) MarshalMsgPack(enc *msgpack.Encoder) error {
	if rw.record == nil {
		return enc.Encode(nil)
	}
	return enc.Encode(&struct {
		ID     string         `msgpack:"id"`
		Fields map[string]any `msgpack:"fields"`
	}{
		ID:     string(rw.record.ID),
		Fields: rw.record.Fields,
	})
}
