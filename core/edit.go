package core

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyEscape
)

// Key is a single keystroke sent to an inline editor.
type Key struct {
	Code  KeyCode
	Rune  rune
	Shift bool
	Meta  bool
}

// ParseKey reads vim style key notation: "<CR>", "<S-CR>", "<M-CR>",
// "<D-CR>", "<BS>", "<Esc>" or a single character.
func ParseKey(s string) Key {
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2 {
		inner := s[1 : len(s)-1]
		k := Key{}

		for {
			prefix, rest, ok := strings.Cut(inner, "-")
			if !ok || rest == "" {
				break
			}
			switch strings.ToUpper(prefix) {
			case "S":
				k.Shift = true
			case "M", "A", "D":
				k.Meta = true
			}
			inner = rest
		}

		switch strings.ToLower(inner) {
		case "cr", "enter", "return":
			k.Code = KeyEnter
			return k
		case "bs", "backspace":
			k.Code = KeyBackspace
			return k
		case "esc":
			k.Code = KeyEscape
			return k
		case "space":
			k.Rune = ' '
			return k
		case "tab":
			k.Rune = '\t'
			return k
		}
	}

	r, _ := utf8.DecodeRuneInString(s)
	return Key{Code: KeyRune, Rune: r}
}

// KeyAction tells the caller what an inline editor wants after a keystroke.
type KeyAction int

const (
	KeyActionNone KeyAction = iota
	KeyActionCommit
	KeyActionCancel
)

type EditID string

// Edit is a pending, not yet committed change of a single cell.
type Edit struct {
	id       EditID
	recordID RecordID
	column   *Column
	kind     EditorKind

	buffer []rune
	list   *ListEditor

	// last validation failure, shown as the "invalid" marker
	invalid error
	commit  *Commit
}

func newEdit(record *Record, column *Column) *Edit {
	e := &Edit{
		id:       EditID(uuid.New().String()),
		recordID: record.ID,
		column:   column,
		kind:     column.Type.EditorKind(),
	}

	value := record.Get(column.Name)
	if e.kind == EditorKindList {
		e.list = newListEditor(ToList(value))
	} else {
		e.buffer = []rune(ToText(value))
	}

	return e
}

func (e *Edit) GetID() EditID {
	return e.id
}

func (e *Edit) GetRecordID() RecordID {
	return e.recordID
}

func (e *Edit) GetColumn() *Column {
	return e.column
}

func (e *Edit) GetKind() EditorKind {
	return e.kind
}

// Text is the in-progress value of text based editors.
func (e *Edit) Text() string {
	return string(e.buffer)
}

func (e *Edit) SetText(s string) {
	e.buffer = []rune(s)
	e.invalid = nil
}

// List returns the list editor, nil for non list columns.
func (e *Edit) List() *ListEditor {
	return e.list
}

// Invalid returns the last validation failure, if any.
func (e *Edit) Invalid() error {
	return e.invalid
}

// Commit returns the commit of this edit once it was started.
func (e *Edit) Commit() *Commit {
	return e.commit
}

func (e *Edit) isCommitting() bool {
	return e.commit != nil
}

// HandleKey applies a keystroke to an inline editor. Enter without Shift or
// Meta asks for a commit, Shift+Enter and Meta+Enter insert a newline.
// Modal and picker editors only react to Escape.
func (e *Edit) HandleKey(k Key) KeyAction {
	if k.Code == KeyEscape {
		return KeyActionCancel
	}
	if e.kind != EditorKindInline {
		return KeyActionNone
	}

	switch k.Code {
	case KeyEnter:
		if k.Shift || k.Meta {
			e.buffer = append(e.buffer, '\n')
			return KeyActionNone
		}
		return KeyActionCommit
	case KeyBackspace:
		if len(e.buffer) > 0 {
			e.buffer = e.buffer[:len(e.buffer)-1]
		}
	case KeyRune:
		if k.Rune != 0 {
			e.buffer = append(e.buffer, k.Rune)
		}
	}

	e.invalid = nil
	return KeyActionNone
}

// EditState is a copy of an edit, safe to read without the table lock.
type EditState struct {
	ID       EditID
	RecordID RecordID
	Field    string
	Kind     EditorKind
	Text     string
	// List holds the entries of list editors, blanks included
	List    []string
	Invalid error
	Commit  *Commit
}

func (e *Edit) state() *EditState {
	s := &EditState{
		ID:       e.id,
		RecordID: e.recordID,
		Field:    e.column.Name,
		Kind:     e.kind,
		Text:     e.Text(),
		Invalid:  e.invalid,
		Commit:   e.commit,
	}
	if e.list != nil {
		s.List = e.list.Entries()
	}
	return s
}

// value returns the payload to commit.
func (e *Edit) value() (any, error) {
	switch e.kind {
	case EditorKindList:
		return e.list.Values(), nil
	case EditorKindMarkdown, EditorKindDateTime:
		return e.Text(), nil
	default:
		return e.column.parse(e.Text())
	}
}
