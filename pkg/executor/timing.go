package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
)

// Timing holds every delay and attempt budget used during execution.
// It is read-only for the duration of a run.
type Timing struct {
	FindAttempts     int           // Locator probes per lookup
	FindAttemptDelay time.Duration // Sleep between failed probes
	ActionRetries    int           // Outer attempts per click/type/verify
	PreActionDelay   time.Duration // Settle time after locating (halved for verify)
	PostActionDelay  time.Duration // Settle time after click/type
	KeystrokeDelay   time.Duration // Pause after each typed unit
	RetryCooldown    time.Duration // Pause between failed outer attempts
	LaunchWait       time.Duration // Pause after launching the application

	ActionTimeout time.Duration // Ceiling per click/type/verify (0 = none)
	CaseTimeout   time.Duration // Ceiling per test case (0 = none)
}

// DefaultTiming returns the stock pacing.
func DefaultTiming() Timing {
	return Timing{
		FindAttempts:     10,
		FindAttemptDelay: 500 * time.Millisecond,
		ActionRetries:    3,
		PreActionDelay:   1000 * time.Millisecond,
		PostActionDelay:  500 * time.Millisecond,
		KeystrokeDelay:   100 * time.Millisecond,
		RetryCooldown:    1000 * time.Millisecond,
		LaunchWait:       4000 * time.Millisecond,
	}
}

// normalized clamps attempt counts to at least one.
func (t Timing) normalized() Timing {
	if t.FindAttempts < 1 {
		t.FindAttempts = 1
	}
	if t.ActionRetries < 1 {
		t.ActionRetries = 1
	}
	return t
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// interrupted converts an error caused by ctx ending into a timeout (deadline)
// or a cancellation error.
func interrupted(ctx context.Context, what string, cause error) error {
	if cause == nil {
		cause = ctx.Err()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return core.ErrTimeout.WithMessage(what + " timed out").WithCause(cause)
	}
	return fmt.Errorf("%s cancelled: %w", what, cause)
}
