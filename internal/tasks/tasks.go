// Package tasks implements the background reconciliation of IDV and
// proctoring attempt events against the verified name history. Each handler
// decides whether an incoming event updates existing records or creates a new
// one.
package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/service"
	dErrors "nameaffirm/pkg/domain-errors"
)

// API is the slice of the reconciliation service the handlers use.
type API interface {
	CreateVerifiedName(ctx context.Context, req service.CreateRequest) (*verifiedname.VerifiedName, error)
	MatchingNames(ctx context.Context, userID, verifiedName string) ([]*verifiedname.VerifiedName, error)
	AttachVerificationAttemptID(ctx context.Context, userID, verifiedName string, attemptID int64) (int64, error)
	SetStatus(ctx context.Context, record *verifiedname.VerifiedName, status verifiedname.Status) error
	GetVerifiedName(ctx context.Context, userID string, verifiedOnly bool) (*verifiedname.VerifiedName, error)
	GetVerifiedNameByProctoredExamAttempt(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error)
}

// IDVEvent is an identity verification attempt outcome.
type IDVEvent struct {
	AttemptID   int64
	UserID      string
	Status      verifiedname.Status
	PhotoIDName string
	FullName    string
}

// ProctoringEvent is a proctored exam attempt outcome.
type ProctoringEvent struct {
	AttemptID   int64
	UserID      string
	Status      verifiedname.Status
	FullName    string
	ProfileName string
}

// Handlers holds the reconciliation rule sets.
type Handlers struct {
	api    API
	logger *slog.Logger
}

// NewHandlers constructs the reconciliation handlers.
func NewHandlers(api API, logger *slog.Logger) *Handlers {
	return &Handlers{api: api, logger: logger}
}

// IDVUpdateVerifiedName reconciles an IDV attempt outcome:
//   - records whose verified name matches the photo ID name are correlated to
//     the attempt (every unlinked one, then status set individually so each
//     update produces its own notification);
//   - with no matching record, a new one is created and logged as an anomaly,
//     since IDV events are expected to follow an earlier name submission.
func (h *Handlers) IDVUpdateVerifiedName(ctx context.Context, event IDVEvent) error {
	h.logger.InfoContext(ctx, "idv reconciliation started",
		"user_id", event.UserID,
		"attempt_id", event.AttemptID,
		"status", event.Status,
	)

	matching, err := h.api.MatchingNames(ctx, event.UserID, event.PhotoIDName)
	if err != nil {
		return fmt.Errorf("list matching names: %w", err)
	}

	if len(matching) == 0 {
		id := event.AttemptID
		record, err := h.api.CreateVerifiedName(ctx, service.CreateRequest{
			UserID:                event.UserID,
			VerifiedName:          event.PhotoIDName,
			ProfileName:           event.FullName,
			VerificationAttemptID: &id,
			Status:                event.Status,
			Origin:                "idv",
		})
		if err != nil {
			return fmt.Errorf("create verified name from idv event: %w", err)
		}
		h.logger.ErrorContext(ctx, "created VerifiedName because no matching attempt_id or verified_name were found",
			"user_id", event.UserID,
			"attempt_id", event.AttemptID,
			"status", record.Status,
		)
		return nil
	}

	attached, err := h.api.AttachVerificationAttemptID(ctx, event.UserID, event.PhotoIDName, event.AttemptID)
	if err != nil {
		return fmt.Errorf("attach verification attempt: %w", err)
	}
	if attached > 0 {
		h.logger.InfoContext(ctx, "attached verification attempt to unlinked records",
			"user_id", event.UserID,
			"attempt_id", event.AttemptID,
			"records", attached,
		)
	}
	if attached > 1 {
		// Multiple unlinked records with the same name is unexpected but the
		// batch attach is deliberate; flag it so operators notice.
		h.logger.WarnContext(ctx, "verification attempt attached to more than one record",
			"user_id", event.UserID,
			"attempt_id", event.AttemptID,
			"records", attached,
		)
	}

	// Re-read so records attached above are included, then update status
	// record by record: batched updates would suppress per-record
	// notifications.
	matching, err = h.api.MatchingNames(ctx, event.UserID, event.PhotoIDName)
	if err != nil {
		return fmt.Errorf("list matching names: %w", err)
	}
	for _, record := range matching {
		if record.VerificationAttemptID == nil || *record.VerificationAttemptID != event.AttemptID {
			continue
		}
		if record.ProctoredExamAttemptID != nil {
			continue
		}
		if err := h.api.SetStatus(ctx, record, event.Status); err != nil {
			return fmt.Errorf("update status for record %s: %w", record.ID, err)
		}
	}

	h.logger.InfoContext(ctx, "updated VerifiedNames for verification attempt",
		"user_id", event.UserID,
		"attempt_id", event.AttemptID,
		"status", event.Status,
	)
	return nil
}

// ProctoringUpdateVerifiedName reconciles a proctoring attempt outcome:
//   - a user with an approved record is left alone (warn when the incoming
//     full name differs from the approved name);
//   - a record already linked to this attempt gets the new status;
//   - otherwise a new record is created when both names are present.
func (h *Handlers) ProctoringUpdateVerifiedName(ctx context.Context, event ProctoringEvent) error {
	approved, err := h.api.GetVerifiedName(ctx, event.UserID, true)
	if err != nil && !dErrors.Is(err, dErrors.CodeNotFound) {
		return fmt.Errorf("lookup approved name: %w", err)
	}
	if approved != nil {
		if approved.VerifiedName != event.FullName {
			h.logger.WarnContext(ctx, "full name does not match the most recent approved verified name",
				"user_id", event.UserID,
				"attempt_id", event.AttemptID,
				"verified_name_id", approved.ID,
			)
		}
		return nil
	}

	existing, err := h.api.GetVerifiedNameByProctoredExamAttempt(ctx, event.UserID, event.AttemptID)
	if err != nil && !dErrors.Is(err, dErrors.CodeNotFound) {
		return fmt.Errorf("lookup name by proctoring attempt: %w", err)
	}
	if existing != nil {
		if err := h.api.SetStatus(ctx, existing, event.Status); err != nil {
			return fmt.Errorf("update status for record %s: %w", existing.ID, err)
		}
		h.logger.InfoContext(ctx, "updated VerifiedName for proctoring attempt",
			"user_id", event.UserID,
			"attempt_id", event.AttemptID,
			"status", event.Status,
		)
		return nil
	}

	if event.FullName == "" || event.ProfileName == "" {
		h.logger.ErrorContext(ctx, "cannot create VerifiedName because full name or profile name was not provided",
			"user_id", event.UserID,
			"attempt_id", event.AttemptID,
		)
		return nil
	}

	id := event.AttemptID
	if _, err := h.api.CreateVerifiedName(ctx, service.CreateRequest{
		UserID:                 event.UserID,
		VerifiedName:           event.FullName,
		ProfileName:            event.ProfileName,
		ProctoredExamAttemptID: &id,
		Status:                 event.Status,
		Origin:                 "proctoring",
	}); err != nil {
		return fmt.Errorf("create verified name from proctoring event: %w", err)
	}
	h.logger.InfoContext(ctx, "created VerifiedName for proctoring attempt",
		"user_id", event.UserID,
		"attempt_id", event.AttemptID,
		"status", event.Status,
	)
	return nil
}
