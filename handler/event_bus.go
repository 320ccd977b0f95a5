package handler

import (
	"errors"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

// luaExecutor is satisfied by *nvim.Nvim.
type luaExecutor interface {
	ExecLua(code string, result any, args ...any) error
}

type eventBus struct {
	vim luaExecutor
	log Logger
}

// callLua passes the event data as an argument, the encoder turns it into a
// lua table.
func (eb *eventBus) callLua(event string, data map[string]any) {
	if eb.vim == nil {
		return
	}

	err := eb.vim.ExecLua(`require("dbedit.handler.__events").trigger(...)`, nil, event, data)
	if err != nil {
		eb.log.Infof("eb.vim.ExecLua: %s", err)
	}
}

// Send forwards an event of a table to lua.
func (eb *eventBus) Send(ev *core.Event) {
	switch ev.Type {
	case core.EventPageChanged:
		eb.PageChanged(ev.TableID, ev.Page)
	case core.EventCommitStateChanged:
		eb.CommitStateChanged(ev.TableID, ev.Commit)
	case core.EventError:
		eb.Error(ev.TableID, ev.Err)
	}
}

func (eb *eventBus) PageChanged(id core.TableID, page core.PageState) {
	eb.callLua(core.EventPageChanged.String(), map[string]any{
		"table_id": string(id),
		"page":     WrapPage(page),
	})
}

func (eb *eventBus) CommitStateChanged(id core.TableID, commit *core.Commit) {
	eb.callLua(core.EventCommitStateChanged.String(), map[string]any{
		"table_id": string(id),
		"commit":   WrapCommit(commit),
	})
}

func (eb *eventBus) Error(id core.TableID, err error) {
	if errors.Is(err, core.ErrStaleResponse) {
		eb.log.Debugf("table %q: %s", id, err)
		return
	}

	eb.callLua(core.EventError.String(), map[string]any{
		"table_id": string(id),
		"error":    errorMessage(err),
	})
}
