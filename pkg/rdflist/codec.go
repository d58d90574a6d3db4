package rdflist

import (
	"fmt"

	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Encode converts a tree value into its nested-list encoding. Nodes are
// rendered by b; a forest becomes a list headed by the blank term.
func Encode[K node.Key[K]](v tree.Value[K], b Binder[K]) (Cell, error) {
	type frame struct {
		items []tree.Value[K]
		next  int
		out   []Cell
	}

	if v.IsLeaf() {
		k, _ := v.Node()
		return b.EncodeNode(k)
	}

	var result Cell
	open := func(v tree.Value[K], top bool) (frame, error) {
		f := frame{items: v.Items()}
		switch {
		case v.IsBlank():
			if !top {
				return f, fmt.Errorf("%w: nested blank head in %s", tree.ErrMalformedInput, v)
			}
			f.out = append(f.out, Term(tree.BlankTerm))
		default:
			if _, ok := v.Head(); !ok {
				return f, fmt.Errorf("%w: sequence has no node head: %s", tree.ErrMalformedInput, v)
			}
		}
		return f, nil
	}

	first, err := open(v, true)
	if err != nil {
		return Cell{}, err
	}
	stack := []frame{first}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.items) {
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
		item := top.items[top.next]
		top.next++
		if k, ok := item.Node(); ok {
			c, err := b.EncodeNode(k)
			if err != nil {
				return Cell{}, err
			}
			top.out = append(top.out, c)
			continue
		}
		f, err := open(item, false)
		if err != nil {
			return Cell{}, err
		}
		stack = append(stack, f)
	}
	return result, nil
}

// Decode converts a nested-list encoding back into a tree value.
//
// Each cell is first offered to b.IsNode; only cells that are not a node
// are treated as nested sequences. A list headed by the blank term is a
// forest and is only accepted at the top level. A sequence whose head is
// not a node fails with [tree.ErrMalformedInput].
func Decode[K node.Key[K]](c Cell, b Binder[K]) (tree.Value[K], error) {
	type frame struct {
		items  []Cell
		next   int
		out    []tree.Value[K]
		forest bool
	}

	open := func(c Cell, top bool) (frame, error) {
		switch {
		case c.IsTerm():
			return frame{}, fmt.Errorf("%w: term %s is not a node", tree.ErrMalformedInput, c)
		case c.Len() > 0 && c.At(0).Is(tree.BlankTerm):
			if !top {
				return frame{}, fmt.Errorf("%w: nested blank head in %s", tree.ErrMalformedInput, c)
			}
			return frame{items: c.items[1:], forest: true}, nil
		case c.Len() == 0:
			return frame{}, fmt.Errorf("%w: empty list", tree.ErrMalformedInput)
		case !b.IsNode(c.At(0)):
			return frame{}, fmt.Errorf("%w: sequence head is not a node: %s", tree.ErrMalformedInput, c)
		}
		return frame{items: c.items}, nil
	}

	if b.IsNode(c) {
		k, err := b.DecodeNode(c)
		if err != nil {
			return tree.Value[K]{}, err
		}
		return tree.Leaf(k), nil
	}

	first, err := open(c, true)
	if err != nil {
		return tree.Value[K]{}, err
	}
	var result tree.Value[K]
	stack := []frame{first}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.items) {
			done := tree.List(top.out...)
			if top.forest {
				done = tree.Forest(top.out...)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = done
			} else {
				parent := &stack[len(stack)-1]
				parent.out = append(parent.out, done)
			}
			continue
		}
		item := top.items[top.next]
		top.next++
		if b.IsNode(item) {
			k, err := b.DecodeNode(item)
			if err != nil {
				return tree.Value[K]{}, err
			}
			top.out = append(top.out, tree.Leaf(k))
			continue
		}
		f, err := open(item, false)
		if err != nil {
			return tree.Value[K]{}, err
		}
		stack = append(stack, f)
	}
	return result, nil
}
