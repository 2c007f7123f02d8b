package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/mutuals/internal/config"
	"github.com/phrazzld/mutuals/internal/platform/transport"
	"github.com/phrazzld/mutuals/internal/redact"
)

// Attempt records the outcome of one delivery try.
type Attempt struct {
	// Index is 1-based.
	Index int

	// Err is nil when the attempt succeeded.
	Err error
}

// Report summarizes a finished delivery.
type Report struct {
	State    State
	Attempts []Attempt
}

// Driver delivers one payload. A Driver is single-use: once it reaches a
// terminal state it refuses further work.
type Driver struct {
	poster      transport.Poster
	maxAttempts int
	backoff     time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger

	state    State
	attempts []Attempt
}

// Option customizes a Driver.
type Option func(*Driver)

// WithSleeper replaces time.Sleep for the backoff wait.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(d *Driver) {
		d.sleep = sleep
	}
}

// NewDriver creates a Driver in the Pending state. A non-positive attempt cap
// is raised to 1 and a negative backoff to 0.
func NewDriver(poster transport.Poster, cfg config.DeliveryConfig, logger *slog.Logger, opts ...Option) *Driver {
	d := &Driver{
		poster:      poster,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		sleep:       time.Sleep,
		logger:      logger.With("component", "delivery_driver"),
		state:       StatePending,
	}
	if d.maxAttempts < 1 {
		d.maxAttempts = 1
	}
	if d.backoff < 0 {
		d.backoff = 0
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Deliver posts payload to endpoint until it succeeds or the attempt cap is
// reached. It returns ErrDeliveryExhausted, wrapping the last failure, when
// every attempt failed. ctx is handed to the transport only; the retry loop
// itself is not interrupted.
func (d *Driver) Deliver(ctx context.Context, endpoint, token string, payload []byte) (Report, error) {
	if d.state != StatePending {
		return d.report(), ErrDriverFinished
	}

	d.state = transition(d.state, eventStart, 0, d.maxAttempts)

	var lastErr error
	for d.state == StateAttempting {
		index := len(d.attempts) + 1
		d.logger.InfoContext(ctx, "posting outcome",
			"attempt", index,
			"max_attempts", d.maxAttempts,
			"endpoint", endpoint)

		_, err := d.poster.PostJSON(ctx, endpoint, payload, token)
		d.attempts = append(d.attempts, Attempt{Index: index, Err: err})

		if err == nil {
			d.state = transition(d.state, eventSucceeded, index, d.maxAttempts)
			d.logger.InfoContext(ctx, "outcome delivered", "attempt", index)
			break
		}

		lastErr = err
		d.state = transition(d.state, eventFailed, index, d.maxAttempts)
		d.logger.WarnContext(ctx, "outcome post failed",
			"attempt", index,
			"max_attempts", d.maxAttempts,
			"error", redact.Error(err))

		if d.state == StateAttempting {
			d.sleep(d.backoff)
		}
	}

	if d.state == StateExhausted {
		d.logger.ErrorContext(ctx, "failed to post outcome",
			"attempts", len(d.attempts),
			"error", redact.Error(lastErr))
		return d.report(), fmt.Errorf("%w after %d attempts: %w", ErrDeliveryExhausted, len(d.attempts), lastErr)
	}

	return d.report(), nil
}

func (d *Driver) report() Report {
	attempts := make([]Attempt, len(d.attempts))
	copy(attempts, d.attempts)
	return Report{State: d.state, Attempts: attempts}
}
