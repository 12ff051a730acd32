package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nameaffirm/internal/platform/metrics"
	dErrors "nameaffirm/pkg/domain-errors"
)

const (
	// DefaultRetryDelay is the base delay between attempts.
	DefaultRetryDelay = 30 * time.Second
	// MaxRetries bounds re-execution of a failing task.
	MaxRetries = 3
)

// Runner executes a task with bounded retries. Validation errors indicate
// caller misuse and are returned immediately; anything else is treated as
// transient until retries are exhausted, at which point the failure is
// permanent and surfaced to the operator.
type Runner struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	retries int
	delay   time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRetryDelay overrides the base delay, mainly for tests.
func WithRetryDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.delay = d
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner constructs a Runner with the default policy.
func NewRunner(logger *slog.Logger, opts ...RunnerOption) *Runner {
	runner := &Runner{
		logger:  logger,
		retries: MaxRetries,
		delay:   DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Do runs fn, retrying transient failures up to the retry limit.
func (r *Runner) Do(ctx context.Context, task string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if isValidationError(err) {
			return err
		}
		if attempt >= r.retries {
			break
		}
		if r.metrics != nil {
			r.metrics.TaskRetries.WithLabelValues(task).Inc()
		}
		r.logger.WarnContext(ctx, "task failed, retrying",
			"task", task,
			"attempt", attempt+1,
			"delay", r.delay.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}

	if r.metrics != nil {
		r.metrics.TaskFailures.WithLabelValues(task).Inc()
	}
	r.logger.ErrorContext(ctx, "task failed permanently",
		"task", task,
		"attempts", r.retries+1,
		"error", err,
	)
	return fmt.Errorf("task %s failed after %d attempts: %w", task, r.retries+1, err)
}

func isValidationError(err error) bool {
	return dErrors.Is(err, dErrors.CodeEmptyString) ||
		dErrors.Is(err, dErrors.CodeMultipleAttemptIDs) ||
		dErrors.Is(err, dErrors.CodeAttemptIDNotGiven) ||
		dErrors.Is(err, dErrors.CodeBadRequest)
}
