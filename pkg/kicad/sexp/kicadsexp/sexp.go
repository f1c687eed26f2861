// Package kicadsexp provides a lightweight streaming S-expression parser
// for KiCad board files, plus the navigation helpers the board reader needs.
package kicadsexp

import (
	"strconv"
	"strings"
)

// Sexp represents an S-expression node: an atom or a list.
type Sexp interface {
	IsLeaf() bool
	String() string
}

// Symbol is a bare atom (identifier, number, keyword).
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// String is an atom that appeared double-quoted in the source.
type String string

func (s String) IsLeaf() bool   { return true }
func (s String) String() string { return strconv.Quote(string(s)) }

// List represents a parenthesised list of S-expressions
type List struct {
	elements []Sexp
}

// NewList builds a list from elements. Mostly useful in tests.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	parts := make([]string, len(l.elements))
	for i, elem := range l.elements {
		parts[i] = elem.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Get returns the element at the given index, or nil when out of range
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Name returns the leading keyword of the list, e.g. "pad" for (pad "1" smd ...).
func (l *List) Name() string {
	name, _ := l.Atom(0)
	return name
}

// Atom returns the text of the atom at index, unquoted.
func (l *List) Atom(index int) (string, bool) {
	switch v := l.Get(index).(type) {
	case Symbol:
		return string(v), true
	case String:
		return string(v), true
	default:
		return "", false
	}
}

// Int returns the atom at index parsed as an integer.
func (l *List) Int(index int) (int, bool) {
	s, ok := l.Atom(index)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Find returns the first child list whose keyword is key.
func (l *List) Find(key string) (*List, bool) {
	for _, elem := range l.elements {
		if child, ok := elem.(*List); ok && child.Name() == key {
			return child, true
		}
	}
	return nil, false
}

// FindAll returns every child list whose keyword is key.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, elem := range l.elements {
		if child, ok := elem.(*List); ok && child.Name() == key {
			out = append(out, child)
		}
	}
	return out
}
