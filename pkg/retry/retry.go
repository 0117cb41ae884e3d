package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0, +/- fraction of the delay
	MaxSameErrorType int     // After N consecutive same-type errors, treat as permanent (0 disables)
}

// DefaultConfig returns the backoff used when connecting to the catalog database:
// 5 retries starting at 500ms, capped at 10s, doubling, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       5,
		InitialDelay:     500 * time.Millisecond,
		MaxDelay:         10 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 5,
	}
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// IsRetryable reports whether err looks transient: network faults while a
// database container or server is still starting, throttling, and 5xx replies.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var retryablePatterns = []string{
	// Connection errors
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"timed out",
	"timeout",
	"network is unreachable",
	"bad connection",
	"invalid connection",
	"unexpected eof",
	"too many connections",
	"server is starting",
	// HTTP status codes and messages
	"429",
	"502",
	"503",
	"504",
	"too many requests",
	"service unavailable",
}

// classifyErrorType buckets an error so repeated failures of one kind can be detected.
func classifyErrorType(err error) string {
	if err == nil {
		return "nil"
	}

	errStr := strings.ToLower(err.Error())
	for _, code := range []string{"503", "502", "504", "429"} {
		if strings.Contains(errStr, code) {
			return code
		}
	}

	switch {
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "connection reset"):
		return "connection"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "timed out"):
		return "timeout"
	case strings.Contains(errStr, "bad connection"), strings.Contains(errStr, "invalid connection"):
		return "driver"
	default:
		return "unknown"
	}
}

// DoIfRetryable runs fn until it succeeds, returns a non-transient error, or the
// retries are exhausted. After MaxSameErrorType consecutive failures of one
// type the error is escalated as permanent. Respects context cancellation.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay
	sameErrorCount := 0
	lastErrorType := ""

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		errorType := classifyErrorType(err)
		if errorType == lastErrorType {
			sameErrorCount++
			if cfg.MaxSameErrorType > 0 && sameErrorCount >= cfg.MaxSameErrorType {
				return fmt.Errorf("repeated error (%d times, type=%s): %w", sameErrorCount, errorType, err)
			}
		} else {
			sameErrorCount = 1
			lastErrorType = errorType
		}

		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-time.After(applyJitter(delay, cfg.JitterFactor)):
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
