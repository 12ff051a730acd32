package tasks

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameaffirm/internal/platform/kafka"
	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/service"
	"nameaffirm/internal/verifiedname/store"
)

func newTopicHandlerFixture(t *testing.T) (*store.InMemoryStore, *Handlers, *Runner) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	st := store.NewInMemoryStore()
	svc := service.New(st, nil, log)
	return st, NewHandlers(svc, log), NewRunner(log, WithRetryDelay(time.Millisecond))
}

func TestIDVTopicHandlerProcessesEvent(t *testing.T) {
	st, handlers, runner := newTopicHandlerFixture(t)
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewIDVTopicHandler(handlers, runner, log)

	msg := &kafka.Message{
		Topic: "nameaffirm.idv.attempts",
		Value: []byte(`{"attempt_id":123,"user_id":"jondoe","status":"approved","photo_id_name":"Jonathan Doe","full_name":"Jon Doe"}`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))

	records, err := st.HistoryByUser(context.Background(), "jondoe")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jonathan Doe", records[0].VerifiedName)
	assert.Equal(t, verifiedname.StatusApproved, records[0].Status)
}

func TestIDVTopicHandlerSkipsMalformedPayload(t *testing.T) {
	st, handlers, runner := newTopicHandlerFixture(t)
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewIDVTopicHandler(handlers, runner, log)

	msg := &kafka.Message{
		Topic: "nameaffirm.idv.attempts",
		Value: []byte(`{"attempt_id":`),
	}
	// skipped, not retried: a bad message must not wedge the partition
	require.NoError(t, h.Handle(context.Background(), msg))

	records, err := st.HistoryByUser(context.Background(), "jondoe")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIDVTopicHandlerSkipsUnknownStatus(t *testing.T) {
	st, handlers, runner := newTopicHandlerFixture(t)
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewIDVTopicHandler(handlers, runner, log)

	msg := &kafka.Message{
		Topic: "nameaffirm.idv.attempts",
		Value: []byte(`{"attempt_id":123,"user_id":"jondoe","status":"in-limbo","photo_id_name":"Jonathan Doe","full_name":"Jon Doe"}`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))

	records, err := st.HistoryByUser(context.Background(), "jondoe")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProctoringTopicHandlerProcessesEvent(t *testing.T) {
	st, handlers, runner := newTopicHandlerFixture(t)
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewProctoringTopicHandler(handlers, runner, log)

	msg := &kafka.Message{
		Topic: "nameaffirm.proctoring.attempts",
		Value: []byte(`{"attempt_id":456,"user_id":"jondoe","status":"submitted","full_name":"Jonathan Doe","profile_name":"Jon Doe"}`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))

	records, err := st.HistoryByUser(context.Background(), "jondoe")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ProctoredExamAttemptID)
	assert.Equal(t, int64(456), *records[0].ProctoredExamAttemptID)
}

func TestProctoringTopicHandlerSkipsMalformedPayload(t *testing.T) {
	st, handlers, runner := newTopicHandlerFixture(t)
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewProctoringTopicHandler(handlers, runner, log)

	msg := &kafka.Message{
		Topic: "nameaffirm.proctoring.attempts",
		Value: []byte(`not json`),
	}
	require.NoError(t, h.Handle(context.Background(), msg))

	records, err := st.HistoryByUser(context.Background(), "jondoe")
	require.NoError(t, err)
	assert.Empty(t, records)
}
