package tasks

import (
	"context"
	"encoding/json"
	"log/slog"

	"nameaffirm/internal/platform/kafka"
	"nameaffirm/internal/verifiedname"
)

// Wire payloads published by the external IDV and proctoring systems.
type idvPayload struct {
	AttemptID   int64  `json:"attempt_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	PhotoIDName string `json:"photo_id_name"`
	FullName    string `json:"full_name"`
}

type proctoringPayload struct {
	AttemptID   int64  `json:"attempt_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	FullName    string `json:"full_name"`
	ProfileName string `json:"profile_name"`
}

// IDVTopicHandler decodes IDV attempt events and runs the IDV reconciliation
// under the retry policy. Malformed payloads are logged and skipped so a bad
// message cannot wedge the partition.
type IDVTopicHandler struct {
	handlers *Handlers
	runner   *Runner
	logger   *slog.Logger
}

// NewIDVTopicHandler constructs the IDV topic handler.
func NewIDVTopicHandler(handlers *Handlers, runner *Runner, logger *slog.Logger) *IDVTopicHandler {
	return &IDVTopicHandler{handlers: handlers, runner: runner, logger: logger}
}

func (h *IDVTopicHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	var payload idvPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "malformed idv event, skipping",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	status, err := verifiedname.ParseStatus(payload.Status)
	if err != nil {
		h.logger.ErrorContext(ctx, "idv event with unknown status, skipping",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	event := IDVEvent{
		AttemptID:   payload.AttemptID,
		UserID:      payload.UserID,
		Status:      status,
		PhotoIDName: payload.PhotoIDName,
		FullName:    payload.FullName,
	}
	return h.runner.Do(ctx, "idv_update_verified_name", func(ctx context.Context) error {
		return h.handlers.IDVUpdateVerifiedName(ctx, event)
	})
}

// ProctoringTopicHandler decodes proctoring attempt events and runs the
// proctoring reconciliation under the retry policy.
type ProctoringTopicHandler struct {
	handlers *Handlers
	runner   *Runner
	logger   *slog.Logger
}

// NewProctoringTopicHandler constructs the proctoring topic handler.
func NewProctoringTopicHandler(handlers *Handlers, runner *Runner, logger *slog.Logger) *ProctoringTopicHandler {
	return &ProctoringTopicHandler{handlers: handlers, runner: runner, logger: logger}
}

func (h *ProctoringTopicHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	var payload proctoringPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "malformed proctoring event, skipping",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	status, err := verifiedname.ParseStatus(payload.Status)
	if err != nil {
		h.logger.ErrorContext(ctx, "proctoring event with unknown status, skipping",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	event := ProctoringEvent{
		AttemptID:   payload.AttemptID,
		UserID:      payload.UserID,
		Status:      status,
		FullName:    payload.FullName,
		ProfileName: payload.ProfileName,
	}
	return h.runner.Do(ctx, "proctoring_update_verified_name", func(ctx context.Context) error {
		return h.handlers.ProctoringUpdateVerifiedName(ctx, event)
	})
}
