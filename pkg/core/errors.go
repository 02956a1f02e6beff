package core

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Every typed error below unwraps to one of these so callers
// can branch with errors.Is without holding the concrete type.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrQuery        = errors.New("invalid query")
	ErrLockTimeout  = errors.New("lock timeout")
	ErrIO           = errors.New("io failure")
)

// NotFoundError reports a missing document or collection.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("collection %q not found", e.Collection)
	}
	return fmt.Sprintf("document %q not found in collection %q", e.ID, e.Collection)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports an operator or type mismatch, such as $inc against
// a non-numeric field.
type ValidationError struct {
	Collection string
	Operator   string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Operator != "" {
		msg = fmt.Sprintf("%s on field %q: %s", e.Operator, e.Field, e.Reason)
	}
	if e.Collection != "" {
		msg = fmt.Sprintf("collection %q: %s", e.Collection, msg)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateKeyError reports an insert whose identifier already exists.
type DuplicateKeyError struct {
	Collection string
	ID         string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("document %q already exists in collection %q", e.ID, e.Collection)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// QueryError reports a malformed predicate, update spec, or pipeline. Stage
// is the zero-based pipeline stage index, or -1 outside a pipeline.
type QueryError struct {
	Stage  int
	Detail string
}

func (e *QueryError) Error() string {
	if e.Stage >= 0 {
		return fmt.Sprintf("pipeline stage %d: %s", e.Stage, e.Detail)
	}
	return e.Detail
}

func (e *QueryError) Unwrap() error { return ErrQuery }

// LockTimeoutError reports a collection lock that could not be acquired
// within its budget.
type LockTimeoutError struct {
	Collection string
	Timeout    time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not lock collection %q within %s", e.Collection, e.Timeout)
}

func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }

// IOError reports a persistence failure: unreadable or corrupt collection
// file, failed atomic write, failed backup copy.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return ErrIO }
