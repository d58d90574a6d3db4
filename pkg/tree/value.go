package tree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/neuronpath/pkg/node"
)

// Kind tags the variant held by a [Value].
type Kind uint8

const (
	// KindForest is a Blank-headed list of independent top-level trees.
	KindForest Kind = iota
	// KindLeaf is a single node.
	KindLeaf
	// KindSeq is an ordered list whose first element names the parent.
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindForest:
		return "forest"
	case KindLeaf:
		return "leaf"
	case KindSeq:
		return "seq"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// BlankTerm is the text used for the synthetic Blank head in String output.
const BlankTerm = "blank"

// Value is an immutable nested tree value: a Leaf(node), a Seq whose first
// item is the parent, or a Forest of independent trees under a Blank head.
// The zero value is an empty Forest.
type Value[K node.Key[K]] struct {
	kind  Kind
	node  K
	items []Value[K]
}

// Leaf returns a single-node value.
func Leaf[K node.Key[K]](k K) Value[K] { return Value[K]{kind: KindLeaf, node: k} }

// Seq returns a tree rooted at head with the given children.
func Seq[K node.Key[K]](head K, children ...Value[K]) Value[K] {
	items := make([]Value[K], 0, len(children)+1)
	items = append(items, Leaf(head))
	items = append(items, children...)
	return Value[K]{kind: KindSeq, items: items}
}

// List returns a sequence built from raw items. Unlike [Seq] it does not
// check that the first item is a node; [Collapse] rejects such values.
func List[K node.Key[K]](items ...Value[K]) Value[K] {
	return Value[K]{kind: KindSeq, items: slices.Clone(items)}
}

// Forest returns a Blank-headed sequence of independent trees.
func Forest[K node.Key[K]](trees ...Value[K]) Value[K] {
	return Value[K]{kind: KindForest, items: slices.Clone(trees)}
}

// Kind reports which variant v holds.
func (v Value[K]) Kind() Kind { return v.kind }

// IsLeaf reports whether v is a single node.
func (v Value[K]) IsLeaf() bool { return v.kind == KindLeaf }

// IsBlank reports whether v is a Blank-headed forest.
func (v Value[K]) IsBlank() bool { return v.kind == KindForest }

// Node returns the node of a leaf.
func (v Value[K]) Node() (K, bool) {
	if v.kind != KindLeaf {
		var zero K
		return zero, false
	}
	return v.node, true
}

// Head returns the node naming v: the leaf itself, or the first item of a
// sequence when that item is a leaf. Forests have no head.
func (v Value[K]) Head() (K, bool) {
	switch v.kind {
	case KindLeaf:
		return v.node, true
	case KindSeq:
		if len(v.items) > 0 {
			return v.items[0].Node()
		}
	}
	var zero K
	return zero, false
}

// Items returns a copy of the sequence items. For a Seq the first item is
// the parent; for a Forest every item is a top-level tree.
func (v Value[K]) Items() []Value[K] { return slices.Clone(v.items) }

// Children returns the items of a Seq after its head.
func (v Value[K]) Children() []Value[K] {
	if v.kind != KindSeq || len(v.items) == 0 {
		return nil
	}
	return slices.Clone(v.items[1:])
}

// Len returns the number of items, or 0 for a leaf.
func (v Value[K]) Len() int { return len(v.items) }

// Equal reports whether v and o are structurally identical.
func (v Value[K]) Equal(o Value[K]) bool {
	type pair struct{ a, b Value[K] }
	stack := []pair{{v, o}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.kind != p.b.kind {
			return false
		}
		if p.a.kind == KindLeaf {
			if p.a.node != p.b.node {
				return false
			}
			continue
		}
		if len(p.a.items) != len(p.b.items) {
			return false
		}
		for i := range p.a.items {
			stack = append(stack, pair{p.a.items[i], p.b.items[i]})
		}
	}
	return true
}

// String renders v as an s-expression, e.g. "(a (b c) d)". Forests render
// with the Blank head: "(blank (a b) (c d))".
func (v Value[K]) String() string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue[K node.Key[K]](b *strings.Builder, v Value[K]) {
	type frame struct {
		items []Value[K]
		next  int
	}
	if v.kind == KindLeaf {
		fmt.Fprint(b, v.node)
		return
	}
	openList := func(v Value[K]) frame {
		b.WriteByte('(')
		if v.kind == KindForest {
			b.WriteString(BlankTerm)
			if len(v.items) > 0 {
				b.WriteByte(' ')
			}
		}
		return frame{items: v.items}
	}
	stack := []frame{openList(v)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.items) {
			b.WriteByte(')')
			stack = stack[:len(stack)-1]
			continue
		}
		if top.next > 0 {
			b.WriteByte(' ')
		}
		item := top.items[top.next]
		top.next++
		if item.kind == KindLeaf {
			fmt.Fprint(b, item.node)
			continue
		}
		stack = append(stack, openList(item))
	}
}

// Nodes returns every distinct node mentioned in v, in key order.
func Nodes[K node.Key[K]](v Value[K]) []K {
	seen := make(map[K]bool)
	var out []K
	stack := []Value[K]{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.kind == KindLeaf {
			if !seen[cur.node] {
				seen[cur.node] = true
				out = append(out, cur.node)
			}
			continue
		}
		stack = append(stack, cur.items...)
	}
	node.Sort(out)
	return out
}

// Depth returns the nesting depth of v: 0 for a leaf, 1 for a flat list.
func Depth[K node.Key[K]](v Value[K]) int {
	type frame struct {
		v     Value[K]
		depth int
	}
	deepest := 0
	stack := []frame{{v, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.v.kind == KindLeaf {
			continue
		}
		d := f.depth + 1
		deepest = max(deepest, d)
		for _, it := range f.v.items {
			stack = append(stack, frame{it, d})
		}
	}
	return deepest
}

// Map returns a copy of v with every node replaced by f(node). The shape of
// v is kept, so the result may no longer be in canonical order.
func Map[K node.Key[K]](v Value[K], f func(K) K) Value[K] {
	type frame struct {
		src  Value[K]
		next int
		out  []Value[K]
	}
	if v.kind == KindLeaf {
		return Leaf(f(v.node))
	}
	var result Value[K]
	stack := []frame{{src: v}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.src.items) {
			done := Value[K]{kind: top.src.kind, items: top.out}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = done
			} else {
				parent := &stack[len(stack)-1]
				parent.out = append(parent.out, done)
			}
			continue
		}
		item := top.src.items[top.next]
		top.next++
		if item.kind == KindLeaf {
			top.out = append(top.out, Leaf(f(item.node)))
			continue
		}
		stack = append(stack, frame{src: item})
	}
	return result
}
