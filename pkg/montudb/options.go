package montudb

import (
	"log/slog"
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/adapters/fs"
	"github.com/katha-begin/Montu-sub000/pkg/aggregate"
)

// options holds the internal configuration for a DB handle.
type options struct {
	mustExist      bool
	lockTimeout    time.Duration
	pipelineBudget int
	logger         *slog.Logger
}

// Option defines a functional option for configuring the store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		mustExist:      false,
		lockTimeout:    fs.DefaultLockTimeout,
		pipelineBudget: aggregate.DefaultBudget,
		logger:         nil,
	}
}

// WithMustExist requires the data directory to already exist instead of
// creating it lazily.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithLockTimeout bounds how long any operation waits for a collection lock
// before failing with a lock-timeout error.
func WithLockTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.lockTimeout = timeout
		}
	}
}

// WithPipelineBudget caps the number of documents an aggregation pipeline may
// produce across its stages before it is aborted.
func WithPipelineBudget(budget int) Option {
	return func(o *options) {
		if budget > 0 {
			o.pipelineBudget = budget
		}
	}
}

// WithLogger sets the logger for the store. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
