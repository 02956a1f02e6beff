package montu

import (
	"context"
	"log/slog"
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/montudb"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// DB is a handle to a document store rooted at one data directory.
type DB = montudb.DB

// Document is a raw JSON document.
type Document = core.Document

// FindOptions shape the result of DB.FindWithOptions.
type FindOptions = montudb.FindOptions

// SortKey names one sort field with its direction.
type SortKey = core.SortKey

// Operation is one declarative write, for bulk writes and transactions.
type Operation = core.Operation

// Event is a change notification emitted by DB.Watch.
type Event = core.Event

// Operation kinds.
const (
	OpInsert = core.OpInsert
	OpUpdate = core.OpUpdate
	OpDelete = core.OpDelete
)

// --- Errors ---

// Sentinel errors, matchable with errors.Is.
var (
	ErrNotFound     = core.ErrNotFound
	ErrValidation   = core.ErrValidation
	ErrDuplicateKey = core.ErrDuplicateKey
	ErrQuery        = core.ErrQuery
	ErrLockTimeout  = core.ErrLockTimeout
	ErrIO           = core.ErrIO
)

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = montudb.Option

// WithMustExist requires the data directory to already exist.
func WithMustExist(must bool) Option {
	return montudb.WithMustExist(must)
}

// WithLockTimeout bounds how long operations wait for collection locks.
func WithLockTimeout(timeout time.Duration) Option {
	return montudb.WithLockTimeout(timeout)
}

// WithPipelineBudget caps aggregation pipeline output size.
func WithPipelineBudget(budget int) Option {
	return montudb.WithPipelineBudget(budget)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return montudb.WithLogger(logger)
}

// --- Factory ---

// Open opens (and by default creates) the store at dir.
func Open(dir string, opts ...Option) (*DB, error) {
	return montudb.Open(dir, opts...)
}

// --- Utils ---

// Watch emits change events for collections matching pattern (doublestar
// syntax, empty for all) until ctx is cancelled.
func Watch(ctx context.Context, db *DB, pattern string) (<-chan Event, error) {
	return db.Watch(ctx, pattern)
}
