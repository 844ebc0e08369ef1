package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryProvider retries transient failures with exponential backoff. A
// rate limit with a Retry-After hint waits exactly that long instead.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with the retry policy in cfg.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return retry(ctx, r.config, func() (*Response, error) {
		return r.inner.Generate(ctx, req)
	})
}

// GenerateImage applies the same policy to cover images. A provider
// without an image model fails on the first attempt.
func (r *RetryProvider) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	return retry(ctx, r.config, func() (*Image, error) {
		return GenerateImage(ctx, r.inner, req)
	})
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// hintedBackOff defers to the wrapped policy except after a rate limit that
// carried a Retry-After hint.
type hintedBackOff struct {
	backoff.BackOff
	last error
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	var rl *ErrRateLimit
	if errors.As(b.last, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return next
}

func newPolicy(ctx context.Context, cfg RetryConfig) (backoff.BackOff, *hintedBackOff) {
	exp := backoff.NewExponentialBackOff()
	exp.RandomizationFactor = 0.2
	exp.MaxElapsedTime = 0
	if cfg.InitialWait > 0 {
		exp.InitialInterval = cfg.InitialWait
	}
	if cfg.MaxWait > 0 {
		exp.MaxInterval = cfg.MaxWait
	}
	if cfg.Multiplier >= 1 {
		exp.Multiplier = cfg.Multiplier
	}
	exp.Reset()

	hinted := &hintedBackOff{BackOff: exp}
	return backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(cfg.MaxAttempts-1)), ctx), hinted
}

func retry[T any](ctx context.Context, cfg RetryConfig, call func() (T, error)) (T, error) {
	policy, hinted := newPolicy(ctx, cfg)
	invalidSeen := false

	op := func() (T, error) {
		out, err := call()
		if err == nil {
			return out, nil
		}
		hinted.last = err
		if !retryable(err, &invalidSeen) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}
	notify := func(err error, wait time.Duration) {
		zap.L().Debug("retrying LLM call",
			zap.String("purpose", PurposeFrom(ctx)),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return backoff.RetryNotifyWithData(op, policy, notify)
}

// retryable reports whether err is worth another attempt. A malformed
// response gets exactly one more try; invalidSeen tracks that across calls.
func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrImageUnsupported) {
		return false
	}

	var (
		maxTok  *ErrMaxTokensExceeded
		unauth  *ErrUnauthorized
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &maxTok), errors.As(err, &unauth):
		return false
	case errors.As(err, &invalid):
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}
