package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"vocabdrill/internal/config"
	"vocabdrill/internal/logger"
)

// GuardConfig bounds storage calls
type GuardConfig struct {
	// Timeout is the deadline of a single attempt
	Timeout time.Duration
	// Retries is how many extra attempts a failed read gets
	Retries int
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// OpenTimeout is how long the open breaker rejects calls
	OpenTimeout time.Duration
	// MaxConcurrent caps in-flight storage calls
	MaxConcurrent int
	// InitialBackoff is the delay before the first read retry
	InitialBackoff time.Duration
}

// DefaultGuardConfig returns the limits used when nothing is configured
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:          5 * time.Second,
		Retries:          2,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxConcurrent:    20,
		InitialBackoff:   50 * time.Millisecond,
	}
}

// Guard runs storage calls under a deadline, a circuit breaker and a
// concurrency cap, and converts their failures into ErrStorageUnavailable or
// ErrIntegrityViolation. Reads are retried; writes run exactly once on a
// context that the caller cannot cancel, so an accumulate that has been
// handed to the database is never abandoned half way.
type Guard struct {
	cfg        GuardConfig
	isConflict func(error) bool
	breaker    circuitbreaker.CircuitBreaker[struct{}]
	retrier    retry.Retry[struct{}]
	bulkhead   bulkhead.Bulkhead[struct{}]
	log        *logger.Logger
}

// NewGuard creates a guard. isConflict classifies uniqueness violations;
// those are never retried and never count against the breaker.
func NewGuard(cfg GuardConfig, isConflict func(error) bool, log *logger.Logger) *Guard {
	def := DefaultGuardConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if isConflict == nil {
		isConflict = func(error) bool { return false }
	}
	if log == nil {
		log = logger.NewNop()
	}

	g := &Guard{cfg: cfg, isConflict: isConflict, log: log}

	threshold := uint32(cfg.FailureThreshold)
	g.breaker = circuitbreaker.New[struct{}](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			g.log.Warn("storage circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	g.retrier = retry.New[struct{}](retry.Config{
		MaxAttempts:   cfg.Retries + 1,
		InitialDelay:  cfg.InitialBackoff,
		MaxDelay:      cfg.InitialBackoff * 10,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !isConflict(err)
		},
	})

	g.bulkhead = bulkhead.New[struct{}](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 4,
		QueueTimeout:  cfg.Timeout,
	})

	return g
}

// Read runs a side-effect free storage call, retrying transient failures
func (g *Guard) Read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return g.execute(ctx, op, func(ctx context.Context) (struct{}, error) {
		return g.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, g.attempt(ctx, fn)
		})
	})
}

// Write runs a mutating storage call once, detached from caller cancellation
func (g *Guard) Write(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return g.execute(context.WithoutCancel(ctx), op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.attempt(ctx, fn)
	})
}

func (g *Guard) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	return fn(ctx)
}

func (g *Guard) execute(ctx context.Context, op string, run func(ctx context.Context) (struct{}, error)) error {
	var conflict, abandoned error
	_, err := g.bulkhead.Execute(ctx, func(bctx context.Context) (struct{}, error) {
		return g.breaker.Execute(bctx, func(cctx context.Context) (struct{}, error) {
			_, err := run(cctx)
			switch {
			case err == nil:
				return struct{}{}, nil
			case g.isConflict(err):
				// A conflict means the database answered; keep it out of the failure count.
				conflict = err
				return struct{}{}, nil
			case ctx.Err() != nil:
				// The caller gave up; that says nothing about the database.
				abandoned = ctx.Err()
				return struct{}{}, nil
			}
			return struct{}{}, err
		})
	})

	if conflict != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrIntegrityViolation, conflict)
	}
	if abandoned != nil {
		return fmt.Errorf("%s: %w", op, abandoned)
	}
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
	if err != nil {
		g.log.Warn("storage call failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return nil
}

// NewGuard creates a guard that classifies conflicts with the connection's dialect
func (db *DB) NewGuard(cfg GuardConfig, log *logger.Logger) *Guard {
	return NewGuard(cfg, db.Dialect.IsUniqueViolation, log)
}

// GuardConfigFrom maps the storage section of the application config
func GuardConfigFrom(cfg config.StorageConfig) GuardConfig {
	return GuardConfig{
		Timeout:          cfg.Timeout,
		Retries:          cfg.Retries,
		FailureThreshold: cfg.FailureThreshold,
		OpenTimeout:      cfg.OpenTimeout,
		MaxConcurrent:    cfg.MaxConcurrent,
	}
}
