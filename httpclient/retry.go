package httpclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/status-im/rest-executor/config"
	"github.com/status-im/rest-executor/models"
)

// ExecuteWithRetry runs Execute up to opts.MaxAttempts times, pausing
// opts.Sleep between attempts. Attempt failures are logged and discarded.
//
// The loop ends on the first successful attempt, even when its body is empty.
// When every attempt fails, or ctx ends first, the returned error wraps
// ErrNoResult together with the last failure.
func (c *Client) ExecuteWithRetry(ctx context.Context, cfg *config.Config, command string, method models.Method, opts RetryOptions, data string) (string, error) {
	var (
		result   string
		success  bool
		attempts int
		lastErr  error
	)

	for !success && attempts < opts.MaxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		if attempts > 0 {
			if c.statusHandler != nil {
				c.statusHandler.OnRetry()
			}

			c.logger.Debug(opts.LogPrefix+": waiting before retry",
				"attempt", attempts+1,
				"max_attempts", opts.MaxAttempts,
				"sleep", opts.Sleep)

			if err := c.sleep(ctx, opts.Sleep); err != nil {
				lastErr = err
				break
			}
		}

		attempts++
		body, err := c.Execute(ctx, cfg, command, method, data)
		if err != nil {
			lastErr = err
			c.logger.Warn(opts.LogPrefix+": attempt failed",
				"attempt", attempts,
				"max_attempts", opts.MaxAttempts,
				"url", attemptURL(err),
				"error", err)
			continue
		}

		result = body
		success = true
	}

	if success {
		return result, nil
	}

	if r, ok := c.statusHandler.(exhaustionRecorder); ok {
		r.RecordExhausted()
	}

	if lastErr == nil {
		return "", fmt.Errorf("%w: no attempts made", ErrNoResult)
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrNoResult, attempts, lastErr)
}

// attemptURL names the target of a failed attempt
func attemptURL(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.URL
	}
	return ""
}
