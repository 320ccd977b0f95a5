package core

type ColumnType int

const (
	ColumnTypeOneLine ColumnType = iota
	ColumnTypeMultiLine
	ColumnTypeMarkdown
	ColumnTypeNumber
	ColumnTypeDateTime
	ColumnTypeList
)

func ColumnTypeFromString(s string) ColumnType {
	switch s {
	case ColumnTypeMultiLine.String():
		return ColumnTypeMultiLine
	case ColumnTypeMarkdown.String():
		return ColumnTypeMarkdown
	case ColumnTypeNumber.String():
		return ColumnTypeNumber
	case ColumnTypeDateTime.String():
		return ColumnTypeDateTime
	case ColumnTypeList.String():
		return ColumnTypeList
	default:
		return ColumnTypeOneLine
	}
}

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeOneLine:
		return "one-line"
	case ColumnTypeMultiLine:
		return "multi-line"
	case ColumnTypeMarkdown:
		return "markdown"
	case ColumnTypeNumber:
		return "number"
	case ColumnTypeDateTime:
		return "datetime"
	case ColumnTypeList:
		return "list"
	default:
		return "one-line"
	}
}

// EditorKind returns the kind of transient editor used for this column type.
func (t ColumnType) EditorKind() EditorKind {
	switch t {
	case ColumnTypeMarkdown:
		return EditorKindMarkdown
	case ColumnTypeList:
		return EditorKindList
	case ColumnTypeDateTime:
		return EditorKindDateTime
	default:
		return EditorKindInline
	}
}

type EditorKind int

const (
	// EditorKindInline is a text area placed over the cell
	EditorKindInline EditorKind = iota
	// EditorKindMarkdown is a modal with a markdown editor
	EditorKindMarkdown
	// EditorKindList is a modal with one input per list value
	EditorKindList
	// EditorKindDateTime is a date/time picker
	EditorKindDateTime
)

func (k EditorKind) String() string {
	switch k {
	case EditorKindInline:
		return "inline"
	case EditorKindMarkdown:
		return "markdown"
	case EditorKindList:
		return "list"
	case EditorKindDateTime:
		return "datetime"
	default:
		return "inline"
	}
}
