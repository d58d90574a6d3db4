package rdflist

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Parse reads the s-expression form produced by [Cell.String]. Quoted
// terms use Go string syntax.
func Parse(s string) (Cell, error) {
	var (
		stack  [][]Cell
		result []Cell
	)
	emit := func(c Cell) {
		if len(stack) == 0 {
			result = append(result, c)
			return
		}
		stack[len(stack)-1] = append(stack[len(stack)-1], c)
	}

	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			stack = append(stack, []Cell{})
			i++
		case r == ')':
			if len(stack) == 0 {
				return Cell{}, fmt.Errorf("%w: unexpected ')'", tree.ErrMalformedInput)
			}
			done := Cell{items: stack[len(stack)-1]}
			stack = stack[:len(stack)-1]
			emit(done)
			i++
		case r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				if rs[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(rs) {
				return Cell{}, fmt.Errorf("%w: unterminated quoted term", tree.ErrMalformedInput)
			}
			t, err := strconv.Unquote(string(rs[i : j+1]))
			if err != nil {
				return Cell{}, fmt.Errorf("%w: quoted term %s: %v", tree.ErrMalformedInput, string(rs[i:j+1]), err)
			}
			emit(Term(t))
			i = j + 1
		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) && rs[j] != '(' && rs[j] != ')' && rs[j] != '"' {
				j++
			}
			emit(Term(string(rs[i:j])))
			i = j
		}
	}

	if len(stack) > 0 {
		return Cell{}, fmt.Errorf("%w: %d unclosed '('", tree.ErrMalformedInput, len(stack))
	}
	if len(result) != 1 {
		return Cell{}, fmt.Errorf("%w: %d top-level cells, want 1", tree.ErrMalformedInput, len(result))
	}
	return result[0], nil
}
