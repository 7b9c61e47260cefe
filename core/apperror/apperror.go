// Package apperror defines the failure kinds returned by the catalog engine.
// Every error carries one of the sentinel kinds so callers can branch with
// errors.Is and still render the offending id or attribute name.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrConflict              = errors.New("conflict")
	ErrMissingAttribute      = errors.New("missing attribute")
	ErrInvalidAttributeValue = errors.New("invalid attribute value")
)

// Error is a tree-integrity or lookup failure.
type Error struct {
	Kind   error
	Entity string // "category", "product"
	ID     uint
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Entity != "":
		return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Msg)
	case e.Msg != "":
		return e.Msg
	default:
		return fmt.Sprintf("%s %d: %v", e.Entity, e.ID, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound reports a missing category or product.
func NotFound(entity string, id uint) *Error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

// InvalidOperation reports a request that would break a tree or ordering invariant.
func InvalidOperation(entity string, id uint, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidOperation, Entity: entity, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a request blocked by existing state (children, duplicate alias).
func Conflict(entity string, id uint, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrConflict, Entity: entity, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// AttributeError is a product attribute validation failure.
type AttributeError struct {
	Kind      error // ErrMissingAttribute or ErrInvalidAttributeValue
	Attribute string
	Reason    string
}

func (e *AttributeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Attribute)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Attribute, e.Reason)
}

func (e *AttributeError) Unwrap() error { return e.Kind }

func MissingAttribute(name string) *AttributeError {
	return &AttributeError{Kind: ErrMissingAttribute, Attribute: name}
}

func InvalidAttributeValue(name, format string, args ...interface{}) *AttributeError {
	return &AttributeError{Kind: ErrInvalidAttributeValue, Attribute: name, Reason: fmt.Sprintf(format, args...)}
}

// AttributeName returns the attribute an error refers to, if any.
func AttributeName(err error) (string, bool) {
	var ae *AttributeError
	if errors.As(err, &ae) {
		return ae.Attribute, true
	}
	return "", false
}
