package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned when an expression divides by zero
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownIdentifier is returned when the evaluation context does not
	// supply a referenced variable or ordered reference
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrEmptyExpression is returned when the source text contains no tokens
	ErrEmptyExpression = errors.New("empty expression")
)

// SyntaxError is a tokenizer or parser failure with its byte offset in the
// source text
type SyntaxError struct {
	Pos int
	Msg string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

func newSyntaxError(pos int, msg string) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: msg}
}

// ValidationResult reports expression validity without surfacing an error
// through the regular control flow
type ValidationResult struct {
	IsValid bool
	Errors  []string
}
