package rdflist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Cell is one element of the external nested-list encoding: either a term
// or an ordered list of cells. The zero value is the empty list.
type Cell struct {
	term  string
	items []Cell
	atom  bool
}

// Term returns a terminal cell.
func Term(s string) Cell { return Cell{term: s, atom: true} }

// List returns a list cell.
func List(items ...Cell) Cell { return Cell{items: slices.Clone(items)} }

// IsTerm reports whether c is a terminal cell.
func (c Cell) IsTerm() bool { return c.atom }

// IsList reports whether c is a list cell.
func (c Cell) IsList() bool { return !c.atom }

// Text returns the term of a terminal cell.
func (c Cell) Text() (string, bool) { return c.term, c.atom }

// Items returns a copy of the items of a list cell.
func (c Cell) Items() []Cell { return slices.Clone(c.items) }

// Len returns the number of list items, or 0 for a term.
func (c Cell) Len() int { return len(c.items) }

// At returns item i of a list cell without copying the list.
func (c Cell) At(i int) Cell { return c.items[i] }

// Is reports whether c is the term s.
func (c Cell) Is(s string) bool { return c.atom && c.term == s }

// Equal reports whether c and o are structurally identical.
func (c Cell) Equal(o Cell) bool {
	type pair struct{ a, b Cell }
	stack := []pair{{c, o}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.atom != p.b.atom || p.a.term != p.b.term || len(p.a.items) != len(p.b.items) {
			return false
		}
		for i := range p.a.items {
			stack = append(stack, pair{p.a.items[i], p.b.items[i]})
		}
	}
	return true
}

// String renders c as an s-expression. Terms containing spaces or
// parentheses are quoted.
func (c Cell) String() string {
	var b strings.Builder
	walk(c, func(t string) { b.WriteString(quoteTerm(t)) },
		func() { b.WriteByte('(') },
		func() { b.WriteByte(')') },
		func() { b.WriteByte(' ') })
	return b.String()
}

// MarshalJSON encodes terms as JSON strings and lists as arrays.
func (c Cell) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	var err error
	walk(c, func(t string) {
		if err != nil {
			return
		}
		var q []byte
		q, err = json.Marshal(t)
		buf.Write(q)
	},
		func() { buf.WriteByte('[') },
		func() { buf.WriteByte(']') },
		func() { buf.WriteByte(',') })
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes nested arrays of strings.
func (c *Cell) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	v, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("rdflist: trailing data after cell")
	}
	*c = v
	return nil
}

func decodeJSON(dec *json.Decoder) (Cell, error) {
	var stack [][]Cell
	for {
		tok, err := dec.Token()
		if err != nil {
			return Cell{}, fmt.Errorf("rdflist: %w", err)
		}
		var done Cell
		switch t := tok.(type) {
		case json.Delim:
			if t == '[' {
				stack = append(stack, []Cell{})
				continue
			}
			if t != ']' {
				return Cell{}, fmt.Errorf("rdflist: unexpected %q", t)
			}
			done = Cell{items: stack[len(stack)-1]}
			stack = stack[:len(stack)-1]
		case string:
			done = Term(t)
		default:
			return Cell{}, fmt.Errorf("rdflist: cells must be strings or arrays, got %T", tok)
		}
		if len(stack) == 0 {
			return done, nil
		}
		stack[len(stack)-1] = append(stack[len(stack)-1], done)
	}
}

// walk visits c in document order without recursion.
func walk(c Cell, term func(string), enter, leave, sep func()) {
	type frame struct {
		items []Cell
		next  int
	}
	if c.atom {
		term(c.term)
		return
	}
	enter()
	stack := []frame{{items: c.items}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.items) {
			leave()
			stack = stack[:len(stack)-1]
			continue
		}
		if top.next > 0 {
			sep()
		}
		item := top.items[top.next]
		top.next++
		if item.atom {
			term(item.term)
			continue
		}
		enter()
		stack = append(stack, frame{items: item.items})
	}
}

func quoteTerm(t string) string {
	if t == "" || strings.ContainsFunc(t, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"'
	}) {
		return strconv.Quote(t)
	}
	return t
}
