package handler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/neovim/go-client/nvim"
	"golang.org/x/sync/errgroup"

	"github.com/kndndrj/nvim-dbedit/dbedit/adapters"
	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/core/format"
)

// Logger is satisfied by *plugin.Logger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type Handler struct {
	vim    *nvim.Nvim
	log    Logger
	events *eventBus

	// connect creates the endpoint of a new table
	connect func(*core.EndpointParams) (core.Endpoint, error)

	mu          sync.RWMutex
	lookupTable map[core.TableID]*core.Table
}

func New(vim *nvim.Nvim, logger Logger) *Handler {
	h := newHandler(nil, logger)
	if vim != nil {
		h.vim = vim
		h.events.vim = vim
	}
	return h
}

func newHandler(lua luaExecutor, logger Logger) *Handler {
	return &Handler{
		log: logger,
		events: &eventBus{
			vim: lua,
			log: logger,
		},
		connect:     adapters.NewEndpoint,
		lookupTable: make(map[core.TableID]*core.Table),
	}
}

// Close waits for unfinished commits of every table and closes the endpoints.
func (h *Handler) Close() {
	h.mu.Lock()
	tables := make([]*core.Table, 0, len(h.lookupTable))
	for _, t := range h.lookupTable {
		tables = append(tables, t)
	}
	h.lookupTable = make(map[core.TableID]*core.Table)
	h.mu.Unlock()

	var g errgroup.Group
	for _, t := range tables {
		t := t
		g.Go(func() error {
			t.Close()
			return nil
		})
	}
	_ = g.Wait()
}

func (h *Handler) getTable(id core.TableID) (*core.Table, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	t, ok := h.lookupTable[id]
	if !ok {
		return nil, fmt.Errorf("unknown table with id: %q", id)
	}
	return t, nil
}

// CreateTable connects to the endpoint and registers a new table. The first
// page is loaded in the background and announced with a page_changed event.
func (h *Handler) CreateTable(opts *TableOptions) (core.TableID, error) {
	id := core.TableID(opts.ID)
	if id == "" {
		id = core.TableID(uuid.New().String())
	}

	params, err := opts.tableParams(id)
	if err != nil {
		return "", err
	}

	endpoint, err := h.connect(opts.endpointParams())
	if err != nil {
		return "", fmt.Errorf("adapters.NewEndpoint: %w", err)
	}

	t := core.NewTable(params, endpoint, h.events.Send)

	h.mu.Lock()
	old, ok := h.lookupTable[id]
	h.lookupTable[id] = t
	h.mu.Unlock()

	if ok {
		go old.Close()
	}

	go func() {
		if err := h.fetch(context.Background(), t); err != nil {
			h.log.Infof("table %q: initial fetch: %s", id, err)
		}
	}()

	return id, nil
}

// fetch swallows responses that arrived after a newer request.
func (h *Handler) fetch(ctx context.Context, t *core.Table) error {
	err := t.Fetch(ctx)
	if errors.Is(err, core.ErrStaleResponse) {
		h.log.Debugf("table %q: %s", t.GetID(), err)
		return nil
	}
	return err
}

func (h *Handler) DeleteTable(id core.TableID) error {
	h.mu.Lock()
	t, ok := h.lookupTable[id]
	delete(h.lookupTable, id)
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown table with id: %q", id)
	}

	go t.Close()
	return nil
}

// GetTables returns the tables with the given ids, or all of them.
func (h *Handler) GetTables(ids []core.TableID) []*core.Table {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var tables []*core.Table
	for _, t := range h.lookupTable {
		if len(ids) > 0 && !slices.Contains(ids, t.GetID()) {
			continue
		}
		tables = append(tables, t)
	}

	slices.SortFunc(tables, func(a, b *core.Table) int {
		return cmp.Compare(a.GetName(), b.GetName())
	})

	return tables
}

func (h *Handler) TableFetch(id core.TableID) error {
	t, err := h.getTable(id)
	if err != nil {
		return err
	}
	return h.fetch(context.Background(), t)
}

func (h *Handler) TableNavigate(id core.TableID, direction string) error {
	t, err := h.getTable(id)
	if err != nil {
		return err
	}

	nav := core.NavigationFromString(direction)
	if nav.String() != direction {
		return fmt.Errorf("unknown direction: %q", direction)
	}

	err = t.Navigate(context.Background(), nav)
	if errors.Is(err, core.ErrStaleResponse) {
		return nil
	}
	return err
}

func (h *Handler) TableSearch(id core.TableID, query string) error {
	t, err := h.getTable(id)
	if err != nil {
		return err
	}

	err = t.Search(context.Background(), query)
	if errors.Is(err, core.ErrStaleResponse) {
		return nil
	}
	return err
}

func (h *Handler) TableGetPage(id core.TableID) (*pageContentWrap, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}
	return WrapPageContent(t), nil
}

// TableRender formats the current page as a text table.
func (h *Handler) TableRender(id core.TableID) ([]byte, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}
	return t.Format(newTable())
}

// TableDisplay writes the rendered page into buffer.
func (h *Handler) TableDisplay(id core.TableID, buffer nvim.Buffer) error {
	text, err := h.TableRender(id)
	if err != nil {
		return err
	}

	_, err = newBuffer(h.vim, buffer).Write(text)
	if err != nil {
		return fmt.Errorf("buffer.Write: %w", err)
	}
	return nil
}

func (h *Handler) TableStartEdit(id core.TableID, recordID core.RecordID, field string) (*core.EditState, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}

	return t.StartEdit(recordID, field)
}

// EditKey feeds a keystroke in vim notation to an inline editor. The returned
// state is nil once the editor closed.
func (h *Handler) EditKey(id core.TableID, editID core.EditID, key string) (*core.EditState, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}

	c, err := t.HandleKey(context.Background(), editID, core.ParseKey(key))
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			// the editor stays open with the invalid marker
			return t.EditState(editID)
		}
		return nil, err
	}

	state, err := t.EditState(editID)
	if errors.Is(err, core.ErrUnknownEdit) {
		if c != nil {
			// commit already finished
			return &core.EditState{ID: editID, Commit: c}, nil
		}
		return nil, nil
	}
	return state, err
}

func (h *Handler) updateList(id core.TableID, editID core.EditID, fn func(*core.ListEditor) error) (*core.EditState, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}

	err = t.UpdateEdit(editID, func(e *core.Edit) error {
		if e.List() == nil {
			return fmt.Errorf("edit %q is not a list editor", editID)
		}
		return fn(e.List())
	})
	if err != nil {
		return nil, err
	}
	return t.EditState(editID)
}

func (h *Handler) EditListAdd(id core.TableID, editID core.EditID) (*core.EditState, error) {
	return h.updateList(id, editID, func(le *core.ListEditor) error {
		le.Add()
		return nil
	})
}

func (h *Handler) EditListSet(id core.TableID, editID core.EditID, index int, value string) (*core.EditState, error) {
	return h.updateList(id, editID, func(le *core.ListEditor) error {
		return le.Set(index, value)
	})
}

func (h *Handler) EditListRemove(id core.TableID, editID core.EditID, index int) (*core.EditState, error) {
	return h.updateList(id, editID, func(le *core.ListEditor) error {
		return le.Remove(index)
	})
}

// EditCommit commits an edit. Modal and picker editors send their final
// text along, nil keeps the text of the editor.
func (h *Handler) EditCommit(id core.TableID, editID core.EditID, text *string) (*core.Commit, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}

	if text != nil {
		err := t.UpdateEdit(editID, func(e *core.Edit) error {
			e.SetText(*text)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return t.Commit(context.Background(), editID)
}

func (h *Handler) EditCancel(id core.TableID, editID core.EditID) error {
	t, err := h.getTable(id)
	if err != nil {
		return err
	}
	return t.Cancel(editID)
}

func (h *Handler) TableBlur(id core.TableID) ([]*core.Commit, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}
	return t.Blur(context.Background())
}

func (h *Handler) TableNewEntryFields(id core.TableID) ([]*core.Column, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}
	if !t.NewEntryEnabled() {
		return nil, core.ErrNewEntryDisabled
	}
	return t.NewEntryFields(), nil
}

func (h *Handler) TableCreate(id core.TableID, values map[string]string) (*core.Record, error) {
	t, err := h.getTable(id)
	if err != nil {
		return nil, err
	}
	return t.Create(context.Background(), values)
}

// TableStore exports the current page in the given format to a file, a
// buffer or a yank register.
func (h *Handler) TableStore(id core.TableID, fmat, out string, arg ...any) error {
	t, err := h.getTable(id)
	if err != nil {
		return err
	}

	var formatter core.Formatter
	switch fmat {
	case "json":
		formatter = format.NewJSON()
	case "csv":
		formatter = format.NewCSV()
	case "table":
		formatter = newTable()
	default:
		return fmt.Errorf("store output: %q is not supported", fmat)
	}

	writer, cleanup, err := h.getStoreWriter(out, arg...)
	if err != nil {
		return err
	}
	defer cleanup()

	text, err := t.Export(formatter)
	if err != nil {
		return err
	}

	_, err = writer.Write(text)
	if err != nil {
		return fmt.Errorf("writer.Write: %w", err)
	}

	return nil
}

func (h *Handler) getStoreWriter(output string, arg ...any) (writer io.Writer, cleanup func(), err error) {
	switch output {
	case "file":
		if len(arg) < 1 || arg[0] == "" {
			return nil, func() {}, fmt.Errorf("no output path provided")
		}

		path, ok := arg[0].(string)
		if !ok {
			return nil, func() {}, fmt.Errorf("invalid output path: not a string")
		}

		writer, err := os.Create(path)
		if err != nil {
			return nil, func() {}, err
		}

		return writer, func() { writer.Close() }, nil
	case "buffer":
		if len(arg) < 1 {
			return nil, func() {}, fmt.Errorf("no buffer provided")
		}

		buf, ok := arg[0].(int64)
		if ok {
			return newBuffer(h.vim, nvim.Buffer(buf)), func() {}, nil
		}

		bufstr, ok := arg[0].(string)
		if ok {
			buf, err := strconv.ParseInt(bufstr, 10, 64)
			return newBuffer(h.vim, nvim.Buffer(buf)), func() {}, err
		}

		return nil, func() {}, fmt.Errorf("buffer number not an int")

	case "yank":
		register := ""
		if len(arg) > 0 {
			register, _ = arg[0].(string)
		}

		return newYankRegister(h.vim, register), func() {}, nil
	}

	return nil, func() {}, fmt.Errorf("store output: %q is not supported", output)
}
