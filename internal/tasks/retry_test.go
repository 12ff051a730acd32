package tasks

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nameaffirm/pkg/domain-errors"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewRunner(log, WithRetryDelay(time.Millisecond))
}

func TestRunnerSucceedsFirstAttempt(t *testing.T) {
	runner := newTestRunner(t)

	calls := 0
	err := runner.Do(context.Background(), "test_task", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunnerRetriesTransientFailure(t *testing.T) {
	runner := newTestRunner(t)

	calls := 0
	err := runner.Do(context.Background(), "test_task", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporarily unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunnerGivesUpAfterMaxRetries(t *testing.T) {
	runner := newTestRunner(t)

	boom := errors.New("still broken")
	calls := 0
	err := runner.Do(context.Background(), "test_task", func(context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, MaxRetries+1, calls)
}

func TestRunnerDoesNotRetryValidationErrors(t *testing.T) {
	runner := newTestRunner(t)

	for _, code := range []dErrors.Code{
		dErrors.CodeEmptyString,
		dErrors.CodeMultipleAttemptIDs,
		dErrors.CodeAttemptIDNotGiven,
		dErrors.CodeBadRequest,
	} {
		calls := 0
		err := runner.Do(context.Background(), "test_task", func(context.Context) error {
			calls++
			return dErrors.New(code, "invalid input")
		})

		require.Error(t, err)
		assert.True(t, dErrors.Is(err, code))
		assert.Equal(t, 1, calls, "validation error %s should not be retried", code)
	}
}

func TestRunnerStopsOnContextCancellation(t *testing.T) {
	runner := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := runner.Do(ctx, "test_task", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
