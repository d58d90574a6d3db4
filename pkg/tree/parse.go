package tree

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/neuronpath/pkg/node"
)

// Parse reads the s-expression form produced by [Value.String]. Atoms are
// converted with parseNode. A list whose first atom is [BlankTerm] becomes
// a [Forest].
func Parse[K node.Key[K]](s string, parseNode func(string) (K, error)) (Value[K], error) {
	type frame struct {
		items []Value[K]
		blank bool
		first bool
	}

	var (
		stack  []frame
		result []Value[K]
	)
	emit := func(v Value[K]) {
		if len(stack) == 0 {
			result = append(result, v)
			return
		}
		top := &stack[len(stack)-1]
		top.items = append(top.items, v)
		top.first = false
	}

	for _, tok := range tokenize(s) {
		switch tok {
		case "(":
			stack = append(stack, frame{first: true})
		case ")":
			if len(stack) == 0 {
				return Value[K]{}, fmt.Errorf("%w: unexpected ')'", ErrMalformedInput)
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.blank {
				emit(Forest(f.items...))
			} else {
				emit(List(f.items...))
			}
		default:
			if len(stack) > 0 && stack[len(stack)-1].first && tok == BlankTerm {
				top := &stack[len(stack)-1]
				top.blank, top.first = true, false
				continue
			}
			k, err := parseNode(tok)
			if err != nil {
				return Value[K]{}, fmt.Errorf("%w: atom %q: %v", ErrMalformedInput, tok, err)
			}
			emit(Leaf(k))
		}
	}

	if len(stack) > 0 {
		return Value[K]{}, fmt.Errorf("%w: %d unclosed '('", ErrMalformedInput, len(stack))
	}
	switch len(result) {
	case 0:
		return Forest[K](), nil
	case 1:
		return result[0], nil
	}
	return Value[K]{}, fmt.Errorf("%w: %d top-level values, want 1", ErrMalformedInput, len(result))
}

func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
