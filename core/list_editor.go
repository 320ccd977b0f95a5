package core

import "slices"

// ListEditor holds one input per value of a list column.
type ListEditor struct {
	entries []string
}

// newListEditor starts with the existing values plus one blank entry.
func newListEditor(values []string) *ListEditor {
	entries := make([]string, 0, len(values)+1)
	entries = append(entries, values...)
	entries = append(entries, "")

	return &ListEditor{entries: entries}
}

func (le *ListEditor) Entries() []string {
	return slices.Clone(le.entries)
}

func (le *ListEditor) Len() int {
	return len(le.entries)
}

// Add appends a blank entry and returns its index.
func (le *ListEditor) Add() int {
	le.entries = append(le.entries, "")
	return len(le.entries) - 1
}

func (le *ListEditor) Set(i int, value string) error {
	if i < 0 || i >= len(le.entries) {
		return ErrInvalidEntry(i, len(le.entries))
	}
	le.entries[i] = value
	return nil
}

// CanRemove reports whether the delete control of entry i is enabled.
func (le *ListEditor) CanRemove(i int) bool {
	return i >= 0 && i < len(le.entries) && le.entries[i] != ""
}

func (le *ListEditor) Remove(i int) error {
	if !le.CanRemove(i) {
		return ErrInvalidEntry(i, len(le.entries))
	}
	le.entries = slices.Delete(le.entries, i, i+1)
	return nil
}

// Values returns the non-empty entries sorted lexicographically.
// Duplicates are kept.
func (le *ListEditor) Values() []string {
	values := make([]string, 0, len(le.entries))
	for _, e := range le.entries {
		if e != "" {
			values = append(values, e)
		}
	}
	slices.Sort(values)
	return values
}
