package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListFull    = errors.New("list is full")
	ErrEmptyEntry  = errors.New("entry is empty")
	ErrOutOfBounds = errors.New("index out of range")
)

// EditableList is a bounded, ordered list of text entries the user can edit in place
type EditableList struct {
	entries []string
	max     int
}

// NewEditableList seeds a list with up to max non-empty entries
func NewEditableList(max int, seed []string) *EditableList {
	l := &EditableList{max: max}
	for _, s := range seed {
		if err := l.Add(s); errors.Is(err, ErrListFull) {
			break
		}
	}
	return l
}

// Add appends a trimmed entry
func (l *EditableList) Add(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ErrEmptyEntry
	}
	if l.max > 0 && len(l.entries) >= l.max {
		return fmt.Errorf("%w: at most %d entries", ErrListFull, l.max)
	}
	l.entries = append(l.entries, entry)
	return nil
}

// Set replaces the entry at index i
func (l *EditableList) Set(i int, entry string) error {
	if i < 0 || i >= len(l.entries) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, i)
	}
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ErrEmptyEntry
	}
	l.entries[i] = entry
	return nil
}

// Remove deletes the entry at index i, keeping the order of the others
func (l *EditableList) Remove(i int) error {
	if i < 0 || i >= len(l.entries) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, i)
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return nil
}

// Len returns the number of entries
func (l *EditableList) Len() int { return len(l.entries) }

// Entries returns a copy of the entries
func (l *EditableList) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
