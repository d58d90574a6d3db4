package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/neuronpath/pkg/chain"
	"github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/tree"
)

// Classify maps codec sentinel errors to coded errors. Errors that already
// carry a code and context errors are returned unchanged; anything else is
// INTERNAL_ERROR.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != "" {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case stderrors.Is(err, rdflist.ErrReservedTerm):
		return errors.Wrap(errors.ErrCodeInvalidNode, err, "reserved node")
	case stderrors.Is(err, rdflist.ErrAmbiguousLayer):
		return errors.Wrap(errors.ErrCodeUnresolvedAmbiguity, err, "ambiguous layer")
	case stderrors.Is(err, chain.ErrDuplicateEdge):
		return errors.Wrap(errors.ErrCodeDuplicateEdge, err, "recompose")
	case stderrors.Is(err, chain.ErrEmptyChain), stderrors.Is(err, tree.ErrMalformedInput):
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "invalid input")
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "internal error")
}
