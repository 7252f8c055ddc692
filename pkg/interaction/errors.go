package interaction

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrParsing           = errors.New("parsing error")
	ErrUnknownType       = fmt.Errorf("%w: unrecognized interaction type", ErrParsing)
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// Error is a failure to decode or route a specific [Kind] of interaction.
// It allows handler authors to distinguish between a payload whose shape
// doesn't match its declared type, and a generic [ErrParsing] error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindError(k Kind, err error) error {
	return &Error{Kind: k, Err: err}
}
