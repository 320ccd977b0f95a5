package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type TableID string

// TableParams is the configuration of a table, fixed for its lifetime.
type TableParams struct {
	ID       TableID
	Name     string
	Columns  []*Column
	ReadOnly bool
	// NewEntry set to false disables record creation
	NewEntry *bool
	// Convert is the default converter of columns without one
	Convert Converter
	Limit   int
}

type EventType int

const (
	EventPageChanged EventType = iota
	EventCommitStateChanged
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventPageChanged:
		return "page_changed"
	case EventCommitStateChanged:
		return "commit_state_changed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to the single sink of a table.
type Event struct {
	Type    EventType
	TableID TableID
	Page    PageState
	Commit  *Commit
	Err     error
}

type cellKey struct {
	record RecordID
	column string
}

// Table is the state of one editor instance: the current page, its records
// and the pending edits of its cells.
type Table struct {
	params   *TableParams
	endpoint Endpoint
	onEvent  func(*Event)

	// parent context of all commits
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	current  int
	page     PageState
	query    string
	records  []*Record
	edits    map[EditID]*Edit
	cells    map[cellKey]EditID
	commits  map[CommitID]*Commit
	fetchSeq uint64
}

// NewTable creates a table on top of endpoint. onEvent receives page changes,
// commit state changes and errors; it is never called with the table locked.
func NewTable(params *TableParams, endpoint Endpoint, onEvent func(*Event)) *Table {
	p := *params
	p.Columns = slices.Clone(params.Columns)
	if p.ID == "" {
		p.ID = TableID(uuid.New().String())
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Table{
		params:   &p,
		endpoint: endpoint,
		onEvent:  onEvent,

		ctx:    ctx,
		cancel: cancel,

		current: 1,
		edits:   make(map[EditID]*Edit),
		cells:   make(map[cellKey]EditID),
		commits: make(map[CommitID]*Commit),
	}
}

func (t *Table) GetID() TableID {
	return t.params.ID
}

func (t *Table) GetName() string {
	return t.params.Name
}

func (t *Table) IsReadOnly() bool {
	return t.params.ReadOnly
}

func (t *Table) Limit() int {
	return t.params.Limit
}

func (t *Table) Columns() []*Column {
	return slices.Clone(t.params.Columns)
}

// Width is the sum of all column widths.
func (t *Table) Width() int {
	return totalWidth(t.params.Columns)
}

func (t *Table) Page() PageState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

func (t *Table) Query() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// Records returns a copy of the records on the current page.
func (t *Table) Records() []*Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.clone()
	}
	return out
}

func (t *Table) emit(ev *Event) {
	if t.onEvent == nil {
		return
	}
	ev.TableID = t.params.ID
	t.onEvent(ev)
}

func (t *Table) emitError(err error) {
	t.emit(&Event{Type: EventError, Err: err})
}

// Fetch reloads the current page and replaces all records on it.
func (t *Table) Fetch(ctx context.Context) error {
	return t.fetch(ctx, true)
}

func (t *Table) fetch(ctx context.Context, followUp bool) error {
	t.mu.Lock()
	t.fetchSeq++
	seq := t.fetchSeq
	req := &FetchRequest{
		Query:  t.query,
		Offset: Offset(t.current, t.params.Limit),
		Limit:  t.params.Limit,
	}
	t.mu.Unlock()

	resp, err := t.endpoint.Fetch(ctx, req)
	if err != nil {
		err = fmt.Errorf("endpoint.Fetch: %w", err)
		t.emitError(err)
		return err
	}

	t.mu.Lock()
	if seq != t.fetchSeq {
		t.mu.Unlock()
		return ErrStaleResponse
	}

	page := ComputePage(t.current, t.params.Limit, resp.Total)
	if followUp && page.Total > 0 && page.From-1 != req.Offset {
		// the requested page no longer exists, load the resolved one instead
		t.current = page.Current
		t.mu.Unlock()
		return t.fetch(ctx, false)
	}

	t.page = page
	if page.Current > 0 {
		t.current = page.Current
	}
	t.records = make([]*Record, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r == nil {
			continue
		}
		if r.Fields == nil {
			r.Fields = make(map[string]any)
		}
		t.records = append(t.records, r)
	}
	t.edits = make(map[EditID]*Edit)
	t.cells = make(map[cellKey]EditID)
	t.mu.Unlock()

	t.emit(&Event{Type: EventPageChanged, Page: page})
	return nil
}

// Navigate moves to another page. Disabled directions do nothing.
func (t *Table) Navigate(ctx context.Context, nav Navigation) error {
	t.mu.Lock()
	target, enabled := nav.target(t.page)
	if !enabled {
		t.mu.Unlock()
		return nil
	}
	t.current = target
	t.mu.Unlock()

	return t.Fetch(ctx)
}

// Search sets the search text and reloads from the first page.
func (t *Table) Search(ctx context.Context, query string) error {
	t.mu.Lock()
	t.query = query
	t.current = 1
	t.mu.Unlock()

	return t.Fetch(ctx)
}

func (t *Table) findRecord(id RecordID) (*Record, bool) {
	for _, r := range t.records {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// removeEdit must be called with the table locked.
func (t *Table) removeEdit(id EditID) {
	e, ok := t.edits[id]
	if !ok {
		return
	}
	delete(t.edits, id)

	key := cellKey{record: e.recordID, column: e.column.Name}
	if t.cells[key] == id {
		delete(t.cells, key)
	}
}

// StartEdit opens an editor on a cell and returns its state. An edit already
// open on the same cell is reused. Inline editors left open on other cells are
// discarded without a commit. Edits are only changed through UpdateEdit,
// HandleKey, Commit and Cancel.
func (t *Table) StartEdit(recordID RecordID, field string) (*EditState, error) {
	if t.params.ReadOnly {
		return nil, ErrReadOnly
	}

	column, ok := findColumn(t.params.Columns, field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if column.ReadOnly {
		return nil, fmt.Errorf("%w: %q", ErrReadOnly, field)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.findRecord(recordID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRecordNotFound, recordID)
	}

	key := cellKey{record: recordID, column: field}
	if id, ok := t.cells[key]; ok {
		return t.edits[id].state(), nil
	}

	for id, e := range t.edits {
		if e.kind == EditorKindInline && !e.isCommitting() {
			t.removeEdit(id)
		}
	}

	e := newEdit(record, column)
	t.edits[e.id] = e
	t.cells[key] = e.id

	return e.state(), nil
}

// EditState returns a copy of a pending edit.
func (t *Table) EditState(id EditID) (*EditState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.edits[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdit, id)
	}
	return e.state(), nil
}

// UpdateEdit runs fn on a pending edit with the table locked.
func (t *Table) UpdateEdit(id EditID, fn func(*Edit) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.edits[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEdit, id)
	}
	if e.isCommitting() {
		return ErrEditInFlight
	}
	return fn(e)
}

// HandleKey feeds a keystroke to an inline editor and commits or cancels
// the edit when the keystroke asks for it. The returned commit is nil unless
// a commit was started.
func (t *Table) HandleKey(ctx context.Context, id EditID, k Key) (*Commit, error) {
	var action KeyAction
	err := t.UpdateEdit(id, func(e *Edit) error {
		action = e.HandleKey(k)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch action {
	case KeyActionCommit:
		return t.Commit(ctx, id)
	case KeyActionCancel:
		return nil, t.Cancel(id)
	default:
		return nil, nil
	}
}

// Commit validates the edit and sends the update in the background.
// A validation failure leaves the editor open and issues no request.
func (t *Table) Commit(ctx context.Context, id EditID) (*Commit, error) {
	t.mu.Lock()
	e, ok := t.edits[id]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdit, id)
	}
	if e.isCommitting() {
		t.mu.Unlock()
		return nil, ErrEditInFlight
	}

	value, err := e.value()
	if err == nil {
		err = e.column.validate(value)
	}
	if err != nil {
		e.invalid = err
		t.mu.Unlock()
		return nil, err
	}

	c := newCommit(id, &UpdateRequest{
		ID:        e.recordID,
		FieldName: e.column.Name,
		FieldData: value,
	})
	e.commit = c
	t.commits[c.id] = c
	t.mu.Unlock()

	commitCtx, release := commitContext(ctx, t.ctx)
	c.start(commitCtx, t.endpoint, func(state CommitState, c *Commit) {
		if state.IsFinished() {
			release()
		}
		t.commitEvent(state, c)
	})

	return c, nil
}

// commitContext keeps the values of the caller context but ties the
// lifetime of the request to the table instead of the caller.
func commitContext(caller, table context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(caller))
	stop := context.AfterFunc(table, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (t *Table) commitEvent(state CommitState, c *Commit) {
	if state.IsFinished() {
		t.mu.Lock()
		if state == CommitStateCommitted {
			if r, ok := t.findRecord(c.GetRecordID()); ok {
				r.Fields[c.GetFieldName()] = c.GetValue()
			}
		}
		// the editor closes regardless of the outcome
		t.removeEdit(c.GetEditID())
		delete(t.commits, c.GetID())
		t.mu.Unlock()
	}

	t.emit(&Event{Type: EventCommitStateChanged, Commit: c})
	if state == CommitStateFailed {
		t.emitError(c.Err())
	}
}

// Cancel discards a pending edit without sending anything.
func (t *Table) Cancel(id EditID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.edits[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEdit, id)
	}
	if e.isCommitting() {
		return ErrEditInFlight
	}

	t.removeEdit(id)
	return nil
}

// Blur commits every open inline editor, as when the user clicks outside of
// them. Editors that fail validation stay open and their errors are returned.
func (t *Table) Blur(ctx context.Context) ([]*Commit, error) {
	t.mu.Lock()
	var ids []EditID
	for id, e := range t.edits {
		if e.kind == EditorKindInline && !e.isCommitting() {
			ids = append(ids, id)
		}
	}
	t.mu.Unlock()

	var (
		commits []*Commit
		errs    []error
	)
	for _, id := range ids {
		c, err := t.Commit(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		commits = append(commits, c)
	}

	return commits, errors.Join(errs...)
}

// NewEntryEnabled reports whether records can be created.
func (t *Table) NewEntryEnabled() bool {
	return t.params.NewEntry == nil || *t.params.NewEntry
}

// NewEntryFields lists the columns shown in the new entry form.
func (t *Table) NewEntryFields() []*Column {
	if !t.NewEntryEnabled() {
		return nil
	}

	var cols []*Column
	for _, c := range t.params.Columns {
		if c.eligibleForNewEntry() {
			cols = append(cols, c)
		}
	}
	return cols
}

// Create validates every field of the new entry form, creates the record
// and puts it at the top of the current page.
func (t *Table) Create(ctx context.Context, values map[string]string) (*Record, error) {
	if !t.NewEntryEnabled() {
		return nil, ErrNewEntryDisabled
	}

	record := NewRecord("", nil)
	var errs []error
	for _, col := range t.NewEntryFields() {
		raw := values[col.Name]

		var value any = raw
		if col.Type != ColumnTypeMarkdown {
			v, err := col.parse(raw)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			value = v
		}

		if err := col.validate(value); err != nil {
			errs = append(errs, err)
			continue
		}

		record.Fields[col.Name] = value
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	id, err := t.endpoint.Create(ctx, record)
	if err != nil {
		err = fmt.Errorf("endpoint.Create: %w", err)
		t.emitError(err)
		return nil, err
	}
	record.ID = id

	t.mu.Lock()
	t.records = slices.Insert(t.records, 0, record)
	page := t.page
	t.mu.Unlock()

	t.emit(&Event{Type: EventPageChanged, Page: page})

	return record.clone(), nil
}

// Header returns the column titles.
func (t *Table) Header() Header {
	header := make(Header, len(t.params.Columns))
	for i, c := range t.params.Columns {
		header[i] = c.Title()
	}
	return header
}

func (t *Table) renderRecord(r *Record) Row {
	row := make(Row, len(t.params.Columns))
	for j, c := range t.params.Columns {
		row[j] = c.render(r.Get(c.Name), t.params.Convert)
	}
	return row
}

// RenderedRows returns the display text of every cell on the current page.
func (t *Table) RenderedRows() []Row {
	_, rows := t.View()
	return rows
}

// View returns a copy of the records on the current page together with the
// display text of their cells, both taken from the same page.
func (t *Table) View() ([]*Record, []Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]*Record, len(t.records))
	rows := make([]Row, len(t.records))
	for i, r := range t.records {
		records[i] = r.clone()
		rows[i] = t.renderRecord(r)
	}
	return records, rows
}

// RenderCell returns the display text of a single cell.
func (t *Table) RenderCell(recordID RecordID, field string) (string, error) {
	column, ok := findColumn(t.params.Columns, field)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.findRecord(recordID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRecordNotFound, recordID)
	}
	return column.render(r.Get(field), t.params.Convert), nil
}

func (t *Table) formatterOptions() *FormatterOptions {
	widths := make([]int, len(t.params.Columns))
	for i, c := range t.params.Columns {
		widths[i] = c.Width
	}

	return &FormatterOptions{
		ChunkStart: max(t.Page().From-1, 0),
		Widths:     widths,
	}
}

// Format renders the current page for display.
func (t *Table) Format(formatter Formatter) ([]byte, error) {
	out, err := formatter.Format(t.Header(), t.RenderedRows(), t.formatterOptions())
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}
	return out, nil
}

// Export formats the raw values of the current page, identifiers included.
func (t *Table) Export(formatter Formatter) ([]byte, error) {
	header := Header{"id"}
	for _, c := range t.params.Columns {
		header = append(header, c.Name)
	}

	var rows []Row
	for _, r := range t.Records() {
		row := Row{string(r.ID)}
		for _, c := range t.params.Columns {
			value := r.Get(c.Name)
			if c.Type == ColumnTypeList {
				value = strings.Join(ToList(value), "\n")
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}

	out, err := formatter.Format(header, rows, &FormatterOptions{ChunkStart: max(t.Page().From-1, 0)})
	if err != nil {
		return nil, fmt.Errorf("formatter.Format: %w", err)
	}
	return out, nil
}

// Close waits for unfinished commits and closes the endpoint.
func (t *Table) Close() {
	t.mu.Lock()
	pending := make([]*Commit, 0, len(t.commits))
	for _, c := range t.commits {
		pending = append(pending, c)
	}
	t.mu.Unlock()

	for _, c := range pending {
		select {
		case <-c.Done():
		case <-time.After(10 * time.Second):
		}
	}

	t.cancel()
	t.endpoint.Close()
}
