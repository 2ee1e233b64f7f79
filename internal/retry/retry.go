package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/khonloi/gash-storefront/internal/api"
)

// Config bounds a retried operation: Attempts total tries, waiting
// BaseDelay*2^(attempt-1) between them, with no jitter.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
}

func (c Config) orDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	return c
}

func (c Config) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = c.BaseDelay << uint(c.Attempts)
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.Attempts-1)), ctx)
}

// Do runs op up to cfg.Attempts times. The final error is propagated
// unchanged. Unauthorized responses are never retried; a fresh attempt
// cannot mint a new token.
func Do(ctx context.Context, cfg Config, op func() error) error {
	cfg = cfg.orDefaults()
	return backoff.Retry(func() error {
		err := op()
		if errors.Is(err, api.ErrUnauthorized) {
			return backoff.Permanent(err)
		}
		return err
	}, cfg.policy(ctx))
}

// DoVal is Do for operations that produce a value.
func DoVal[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	cfg = cfg.orDefaults()
	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if errors.Is(err, api.ErrUnauthorized) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, cfg.policy(ctx))
}
