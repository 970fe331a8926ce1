// Package retry runs operations with bounded exponential backoff, retrying only transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0, +/- fraction of the delay
	MaxSameErrorType int     // After N consecutive same-type errors, treat as permanent (0 disables)
}

// DefaultConfig returns defaults for connecting to a datasource:
// 2 retries with 250ms initial delay, capped at 2s, doubling each time, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       2,
		InitialDelay:     250 * time.Millisecond,
		MaxDelay:         2 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 3,
	}
}

// Disabled reports whether the config performs no retries at all.
func (c *Config) Disabled() bool {
	return c == nil || c.MaxRetries <= 0
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// nextDelay grows delay by the multiplier, capped at MaxDelay.
func (c *Config) nextDelay(delay time.Duration) time.Duration {
	multiplier := c.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay = time.Duration(float64(delay) * multiplier)
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// RetryableError is an interface for errors that explicitly declare their retryability.
// LLM errors implement this interface to provide explicit retry behavior.
type RetryableError interface {
	error
	IsRetryable() bool
}

// IsRetryable determines if an error is transient and worth retrying.
//
// The function checks errors in this order:
// 1. If any error in the chain implements RetryableError, use its IsRetryable() method
// 2. Otherwise, pattern-match against known retryable error strings
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	// Cancellation is the caller's decision, never transient.
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		// Connection errors
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"timed out",
		"temporary failure",
		"network is unreachable",
		// SQL Server transient conditions
		"deadlock",
		"server is not currently available",
		"login failed for user '<token-identified principal>'",
		// HTTP status codes
		"429",
		"500",
		"502",
		"503",
		"504",
		// HTTP error messages
		"rate limit",
		"service unavailable",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// classifyErrorType extracts a category from an error to detect repeated failures of the same kind.
func classifyErrorType(err error) string {
	if err == nil {
		return "nil"
	}

	errStr := strings.ToLower(err.Error())

	for _, code := range []string{"503", "502", "504", "500", "429"} {
		if strings.Contains(errStr, code) {
			return code
		}
	}

	switch {
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "connection reset"):
		return "connection"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "timed out"):
		return "timeout"
	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "too many requests"):
		return "rate_limit"
	}

	return "unknown"
}

// DoIfRetryable only retries if the error is transient.
// Permanent errors (auth failures, bad SQL, etc.) return immediately, and after
// MaxSameErrorType consecutive failures of the same type the error is treated as permanent.
// Respects context cancellation during wait periods.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoIfRetryableWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoIfRetryableWithResult is DoIfRetryable for functions that return a value.
// The last result is returned alongside the last error.
func DoIfRetryableWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay
	sameErrorCount := 0
	var lastErrorType string

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result = r
		lastErr = err

		if !IsRetryable(err) {
			return result, err
		}

		currentErrorType := classifyErrorType(err)
		if currentErrorType == lastErrorType {
			sameErrorCount++
			if cfg.MaxSameErrorType > 0 && sameErrorCount >= cfg.MaxSameErrorType {
				return result, fmt.Errorf("repeated error (%d times, type=%s): %w", sameErrorCount, currentErrorType, err)
			}
		} else {
			sameErrorCount = 1
			lastErrorType = currentErrorType
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(applyJitter(delay, cfg.JitterFactor)):
				delay = cfg.nextDelay(delay)
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}
