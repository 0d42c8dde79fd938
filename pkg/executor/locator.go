package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/devicelab-dev/desktop-runner/pkg/automation"
	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
)

// Locator confirms that a selector resolves to a present element.
type Locator struct {
	client automation.Client
	timing Timing
}

// NewLocator creates a locator over client.
func NewLocator(client automation.Client, timing Timing) *Locator {
	return &Locator{client: client, timing: timing.normalized()}
}

// Locate probes selector up to FindAttempts times, sleeping FindAttemptDelay
// between failed probes. The first successful probe wins.
func (l *Locator) Locate(ctx context.Context, selector string) (automation.Handle, error) {
	var (
		handle   automation.Handle
		attempts int
	)

	probe := func() error {
		attempts++
		logger.Debug("Probe %d/%d for %q", attempts, l.timing.FindAttempts, selector)
		h, err := l.client.Locate(ctx, selector)
		if err == nil {
			_, err = h.Bounds(ctx)
		}
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		handle = h
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.timing.FindAttemptDelay), uint64(l.timing.FindAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(probe, b, func(err error, next time.Duration) {
		logger.Debug("Element %q not ready (%v), next probe in %v", selector, err, next)
	})
	if err == nil {
		logger.Debug("Element %q found on attempt %d", selector, attempts)
		return handle, nil
	}

	if ctx.Err() != nil {
		return nil, interrupted(ctx, fmt.Sprintf("locating %q", selector), err)
	}
	logger.Warn("Element %q not found after %d attempts: %v", selector, attempts, err)
	return nil, core.ErrElementNotFound.
		WithMessage(fmt.Sprintf("element %q not found after %d attempts", selector, attempts)).
		WithDetails(map[string]interface{}{"selector": selector, "attempts": attempts}).
		WithCause(err)
}
