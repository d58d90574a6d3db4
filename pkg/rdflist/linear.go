package rdflist

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Terms of the first/rest list vocabulary.
const (
	First = "rdf:first"
	Rest  = "rdf:rest"
	Nil   = "rdf:nil"

	blankPrefix = "_:"
)

// Statement is one subject, predicate, object triple.
type Statement struct {
	Subject   string `json:"s"`
	Predicate string `json:"p"`
	Object    string `json:"o"`
}

func (s Statement) String() string {
	return s.Subject + " " + s.Predicate + " " + s.Object + " ."
}

// Linearize renders c as a first/rest linked list. It returns the term
// naming the root: the term itself for a terminal cell, [Nil] for the
// empty list, or a blank node "_:bN". Blank nodes are numbered in
// breadth-first order.
func Linearize(c Cell) (root string, stmts []Statement, err error) {
	type job struct {
		id   string
		cell Cell
	}

	n := 0
	fresh := func() string {
		id := fmt.Sprintf("%sb%d", blankPrefix, n)
		n++
		return id
	}
	object := func(c Cell, queue *[]job) (string, error) {
		if t, ok := c.Text(); ok {
			if t == Nil || strings.HasPrefix(t, blankPrefix) {
				return "", fmt.Errorf("%w: %q", ErrReservedTerm, t)
			}
			return t, nil
		}
		if c.Len() == 0 {
			return Nil, nil
		}
		id := fresh()
		*queue = append(*queue, job{id, c})
		return id, nil
	}

	var queue []job
	if root, err = object(c, &queue); err != nil {
		return "", nil, err
	}
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		subject := j.id
		for i, item := range j.cell.items {
			obj, err := object(item, &queue)
			if err != nil {
				return "", nil, err
			}
			rest := Nil
			if i < len(j.cell.items)-1 {
				rest = fresh()
			}
			stmts = append(stmts,
				Statement{subject, First, obj},
				Statement{subject, Rest, rest},
			)
			subject = rest
		}
	}
	return root, stmts, nil
}

// Relink rebuilds the cell named by root from first/rest statements. Every
// statement must belong to the list; shared or cyclic structure is rejected.
func Relink(root string, stmts []Statement) (Cell, error) {
	type links struct {
		first, rest       string
		hasFirst, hasRest bool
	}
	byID := make(map[string]*links, len(stmts)/2)
	for _, s := range stmts {
		if !strings.HasPrefix(s.Subject, blankPrefix) {
			return Cell{}, fmt.Errorf("%w: subject %q is not a blank node", tree.ErrMalformedInput, s.Subject)
		}
		l := byID[s.Subject]
		if l == nil {
			l = &links{}
			byID[s.Subject] = l
		}
		switch s.Predicate {
		case First:
			if l.hasFirst {
				return Cell{}, fmt.Errorf("%w: %s has two %s", tree.ErrMalformedInput, s.Subject, First)
			}
			l.first, l.hasFirst = s.Object, true
		case Rest:
			if l.hasRest {
				return Cell{}, fmt.Errorf("%w: %s has two %s", tree.ErrMalformedInput, s.Subject, Rest)
			}
			l.rest, l.hasRest = s.Object, true
		default:
			return Cell{}, fmt.Errorf("%w: unexpected predicate %q", tree.ErrMalformedInput, s.Predicate)
		}
	}

	used := make(map[string]bool, len(byID))
	// members follows rest links from id and returns the first objects.
	members := func(id string) ([]string, error) {
		var out []string
		for id != Nil {
			l, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: dangling list node %s", tree.ErrMalformedInput, id)
			}
			if used[id] {
				return nil, fmt.Errorf("%w: list node %s is reached twice", tree.ErrMalformedInput, id)
			}
			if !l.hasFirst || !l.hasRest {
				return nil, fmt.Errorf("%w: list node %s needs both %s and %s", tree.ErrMalformedInput, id, First, Rest)
			}
			used[id] = true
			out = append(out, l.first)
			id = l.rest
		}
		return out, nil
	}

	type frame struct {
		objs []string
		next int
		out  []Cell
	}

	var result Cell
	switch {
	case root == Nil:
		result = List()
	case !strings.HasPrefix(root, blankPrefix):
		result = Term(root)
	default:
		objs, err := members(root)
		if err != nil {
			return Cell{}, err
		}
		stack := []frame{{objs: objs}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.objs) {
				done := Cell{items: top.out}
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					result = done
				} else {
					parent := &stack[len(stack)-1]
					parent.out = append(parent.out, done)
				}
				continue
			}
			obj := top.objs[top.next]
			top.next++
			switch {
			case obj == Nil:
				top.out = append(top.out, List())
			case strings.HasPrefix(obj, blankPrefix):
				objs, err := members(obj)
				if err != nil {
					return Cell{}, err
				}
				stack = append(stack, frame{objs: objs})
			default:
				top.out = append(top.out, Term(obj))
			}
		}
	}

	if len(used) != len(byID) {
		return Cell{}, fmt.Errorf("%w: %d list nodes are unreachable from %s", tree.ErrMalformedInput, len(byID)-len(used), root)
	}
	return result, nil
}

// WriteStatements writes one statement per line.
func WriteStatements(w io.Writer, stmts []Statement) error {
	for _, s := range stmts {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
