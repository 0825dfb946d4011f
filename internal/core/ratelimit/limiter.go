package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultPrefix namespaces limiter keys in a shared store
	DefaultPrefix = "chirp:ratelimit:posts"
	// DefaultLimit and DefaultWindow are the post-creation policy: 3 per rolling minute
	DefaultLimit  = 3
	DefaultWindow = time.Minute
)

// Config holds the policy of a Limiter
type Config struct {
	Prefix string
	Limit  int
	Window time.Duration
	// FailOpen admits requests when the store is unreachable.
	// The default (false) denies them.
	FailOpen bool
}

// DefaultConfig returns the post-creation policy
func DefaultConfig() Config {
	return Config{
		Prefix: DefaultPrefix,
		Limit:  DefaultLimit,
		Window: DefaultWindow,
	}
}

// Decision is the result of a rate limit check
type Decision struct {
	ResetAt    time.Time
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	Admitted   bool
}

// Limiter admits or denies attempts per identifier using a sliding window.
// It is safe for concurrent use; all shared state lives in the Store.
type Limiter struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
	cfg    Config
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithLogger sets the logger used for store failures
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates a Limiter over store
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	l := &Limiter{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Limit checks and records one attempt for identifier.
//
// When the store fails, the attempt is denied and the returned error wraps
// ErrStoreUnavailable; with FailOpen the attempt is admitted and err is nil.
func (l *Limiter) Limit(ctx context.Context, identifier string) (Decision, error) {
	if strings.TrimSpace(identifier) == "" {
		return Decision{Limit: l.cfg.Limit}, ErrEmptyIdentifier
	}

	now := l.now()
	res, err := l.store.Hit(ctx, l.key(identifier), l.cfg.Limit, l.cfg.Window, now)
	if err != nil {
		if l.cfg.FailOpen {
			decisionsTotal.WithLabelValues("fail_open").Inc()
			l.logger.Warn("rate limit store unavailable, admitting request",
				slog.String("identifier", identifier),
				slog.String("error", err.Error()),
			)
			return Decision{Admitted: true, Limit: l.cfg.Limit, Remaining: 0, ResetAt: now.Add(l.cfg.Window)}, nil
		}

		decisionsTotal.WithLabelValues("fail_closed").Inc()
		l.logger.Error("rate limit store unavailable, denying request",
			slog.String("identifier", identifier),
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return Decision{Limit: l.cfg.Limit}, err
	}

	resetAt := res.Oldest.Add(l.cfg.Window)
	d := Decision{
		Admitted:  res.Admitted,
		Limit:     l.cfg.Limit,
		Remaining: max(l.cfg.Limit-res.Count, 0),
		ResetAt:   resetAt,
	}
	if !res.Admitted {
		d.RetryAfter = max(resetAt.Sub(now), 0)
		decisionsTotal.WithLabelValues("denied").Inc()
	} else {
		decisionsTotal.WithLabelValues("admitted").Inc()
	}
	return d, nil
}

// Config returns the limiter's policy
func (l *Limiter) Config() Config {
	return l.cfg
}

func (l *Limiter) key(identifier string) string {
	return l.cfg.Prefix + ":" + identifier
}
