package analysisjob

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultMaxAttempts  = 30
)

// JobClient is the remote endpoint surface the orchestrator drives.
// *Client satisfies it; tests substitute scripted implementations.
type JobClient interface {
	TriggerRefresh(ctx context.Context) error
	CheckStatus(ctx context.Context) (Status, error)
	FetchResult(ctx context.Context) (string, error)
}

// RemoteError carries a remote job failure's message verbatim.
type RemoteError struct {
	Message string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("analysis job failed: %s", e.Message)
}

// Outcome is the single terminal result of one orchestration run.
// Exactly one of three shapes is produced: completed with data, failed
// with a RemoteError, or timed out with no data.
type Outcome struct {
	// Completed is true when the final dataset was retrieved.
	Completed bool

	// TimedOut is true when attempts were exhausted while the job was
	// still processing. This is a soft outcome, not a failure: the
	// remote job may finish later and be retrieved out-of-band.
	TimedOut bool

	// Data is the final dataset (structured JSON or prose).
	Data string

	// Message is the last remote status message seen.
	Message string

	// Attempts is how many polls were performed.
	Attempts int

	// Elapsed is the wall time from trigger to outcome.
	Elapsed time.Duration
}

// Orchestrator triggers a remote refresh, then polls until a terminal
// state or exhaustion. Each Run call owns its own poll state, so
// concurrent runs against different endpoints are safe; identical
// concurrent runs are not deduplicated.
type Orchestrator struct {
	client      JobClient
	interval    time.Duration
	maxAttempts int
}

// New creates an Orchestrator. Non-positive interval or maxAttempts
// fall back to defaults (10s, 30 attempts).
func New(client JobClient, interval time.Duration, maxAttempts int) *Orchestrator {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Orchestrator{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Run triggers a refresh and polls to a single terminal outcome. The
// loop never polls forever: it either observes a terminal state or
// exhausts maxAttempts. Transient poll failures are logged and
// survived; only trigger failure, a remote error state, or context
// cancellation produce an error.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()

	if err := o.client.TriggerRefresh(ctx); err != nil {
		return Outcome{}, fmt.Errorf("trigger refresh: %w", err)
	}

	slog.Info("analysis refresh triggered",
		"poll_interval", o.interval,
		"max_attempts", o.maxAttempts)

	outcome := Outcome{}
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := o.wait(ctx); err != nil {
			outcome.Attempts = attempt - 1
			outcome.Elapsed = time.Since(start)
			return outcome, err
		}

		outcome.Attempts = attempt

		status, err := o.client.CheckStatus(ctx)
		if err != nil {
			// Transient fault: keep polling, the job itself may be fine.
			slog.Warn("status check failed, continuing to poll",
				"attempt", attempt,
				"elapsed", time.Since(start),
				"error", err)
			continue
		}

		slog.Debug("poll attempt",
			"attempt", attempt,
			"state", status.State,
			"elapsed", time.Since(start))

		outcome.Message = status.Message

		switch status.State {
		case StateCompleted:
			data, err := o.client.FetchResult(ctx)
			if err != nil {
				outcome.Elapsed = time.Since(start)
				return outcome, fmt.Errorf("fetch result: %w", err)
			}
			outcome.Completed = true
			outcome.Data = data
			outcome.Elapsed = time.Since(start)
			return outcome, nil

		case StateError:
			outcome.Elapsed = time.Since(start)
			return outcome, &RemoteError{Message: status.Message}

		default:
			// Still processing, sleep and retry.
		}
	}

	outcome.TimedOut = true
	outcome.Elapsed = time.Since(start)
	if outcome.Message == "" {
		outcome.Message = "timed out waiting for completion, job may still be running"
	}

	slog.Warn("poll attempts exhausted",
		"attempts", o.maxAttempts,
		"elapsed", outcome.Elapsed)

	return outcome, nil
}

// wait sleeps one poll interval, honoring cancellation.
func (o *Orchestrator) wait(ctx context.Context) error {
	timer := time.NewTimer(o.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
