package main

import (
	"github.com/neovim/go-client/nvim"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
	"github.com/kndndrj/nvim-dbedit/dbedit/handler"
	"github.com/kndndrj/nvim-dbedit/dbedit/plugin"
)

func mountEndpoints(p *plugin.Plugin, h *handler.Handler) {
	p.RegisterEndpoint(
		"DbeditCreateTable",
		func(args *struct {
			Opts *handler.TableOptions `msgpack:",array"`
		},
		) (core.TableID, error) {
			return h.CreateTable(args.Opts)
		})

	p.RegisterEndpoint(
		"DbeditDeleteTable",
		func(args *struct {
			ID core.TableID `msgpack:",array"`
		},
		) error {
			return h.DeleteTable(args.ID)
		})

	p.RegisterEndpoint(
		"DbeditGetTables",
		func(args *struct {
			IDs []core.TableID `msgpack:",array"`
		},
		) (any, error) {
			return handler.WrapTables(h.GetTables(args.IDs)), nil
		})

	p.RegisterEndpoint(
		"DbeditTableFetch",
		func(args *struct {
			ID core.TableID `msgpack:",array"`
		},
		) error {
			return h.TableFetch(args.ID)
		})

	p.RegisterEndpoint(
		"DbeditTableNavigate",
		func(args *struct {
			ID        core.TableID `msgpack:",array"`
			Direction string
		},
		) error {
			return h.TableNavigate(args.ID, args.Direction)
		})

	p.RegisterEndpoint(
		"DbeditTableSearch",
		func(args *struct {
			ID    core.TableID `msgpack:",array"`
			Query string
		},
		) error {
			return h.TableSearch(args.ID, args.Query)
		})

	p.RegisterEndpoint(
		"DbeditTableGetPage",
		func(args *struct {
			ID core.TableID `msgpack:",array"`
		},
		) (any, error) {
			content, err := h.TableGetPage(args.ID)
			if err != nil {
				return nil, err
			}
			return content, nil
		})

	p.RegisterEndpoint(
		"DbeditTableDisplay",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			Buffer int
		},
		) error {
			return h.TableDisplay(args.ID, nvim.Buffer(args.Buffer))
		})

	p.RegisterEndpoint(
		"DbeditTableStartEdit",
		func(args *struct {
			ID       core.TableID `msgpack:",array"`
			RecordID core.RecordID
			Column   string
		},
		) (any, error) {
			edit, err := h.TableStartEdit(args.ID, args.RecordID, args.Column)
			return handler.WrapEdit(edit), err
		})

	p.RegisterEndpoint(
		"DbeditEditKey",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
			Key    string
		},
		) (any, error) {
			edit, err := h.EditKey(args.ID, args.EditID, args.Key)
			return handler.WrapEdit(edit), err
		})

	p.RegisterEndpoint(
		"DbeditEditListAdd",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
		},
		) (any, error) {
			edit, err := h.EditListAdd(args.ID, args.EditID)
			return handler.WrapEdit(edit), err
		})

	p.RegisterEndpoint(
		"DbeditEditListSet",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
			Index  int
			Value  string
		},
		) (any, error) {
			edit, err := h.EditListSet(args.ID, args.EditID, args.Index, args.Value)
			return handler.WrapEdit(edit), err
		})

	p.RegisterEndpoint(
		"DbeditEditListRemove",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
			Index  int
		},
		) (any, error) {
			edit, err := h.EditListRemove(args.ID, args.EditID, args.Index)
			return handler.WrapEdit(edit), err
		})

	p.RegisterEndpoint(
		"DbeditEditCommit",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
			// text of modal and picker editors, optional
			Value *string
		},
		) (any, error) {
			commit, err := h.EditCommit(args.ID, args.EditID, args.Value)
			return handler.WrapCommit(commit), err
		})

	p.RegisterEndpoint(
		"DbeditEditCancel",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			EditID core.EditID
		},
		) error {
			return h.EditCancel(args.ID, args.EditID)
		})

	p.RegisterEndpoint(
		"DbeditTableBlur",
		func(args *struct {
			ID core.TableID `msgpack:",array"`
		},
		) (any, error) {
			commits, err := h.TableBlur(args.ID)
			return handler.WrapCommits(commits), err
		})

	p.RegisterEndpoint(
		"DbeditTableNewEntryFields",
		func(args *struct {
			ID core.TableID `msgpack:",array"`
		},
		) (any, error) {
			columns, err := h.TableNewEntryFields(args.ID)
			return handler.WrapColumns(columns), err
		})

	p.RegisterEndpoint(
		"DbeditTableCreate",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			Values map[string]string
		},
		) (any, error) {
			record, err := h.TableCreate(args.ID, args.Values)
			return handler.WrapRecord(record), err
		})

	p.RegisterEndpoint(
		"DbeditTableStore",
		func(args *struct {
			ID     core.TableID `msgpack:",array"`
			Format string
			Output string
			Arg    any
		},
		) error {
			return h.TableStore(args.ID, args.Format, args.Output, args.Arg)
		})
}
