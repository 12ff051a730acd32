package verifiedname

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for verified name records and config
// rows. Implementations return sentinel.ErrNotFound (possibly wrapped) when a
// lookup matches nothing; the service layer translates that into domain
// errors.
//
// All listing methods order by Created descending so index 0 is always the
// most recent record.
type Store interface {
	// Save inserts a new record. Records are never replaced wholesale;
	// mutations go through SetVerificationAttempt and UpdateStatus.
	Save(ctx context.Context, record *VerifiedName) error

	// LatestByUser returns the most recently created record for the user,
	// optionally restricted to approved records.
	LatestByUser(ctx context.Context, userID string, approvedOnly bool) (*VerifiedName, error)

	// HistoryByUser returns all records for the user, newest first.
	HistoryByUser(ctx context.Context, userID string) ([]*VerifiedName, error)

	// ListByUserAndName returns the user's records whose verified name
	// matches exactly, newest first.
	ListByUserAndName(ctx context.Context, userID, verifiedName string) ([]*VerifiedName, error)

	// FindByVerificationAttempt returns the user's record linked to the
	// given IDV attempt.
	FindByVerificationAttempt(ctx context.Context, userID string, attemptID int64) (*VerifiedName, error)

	// FindByProctoredExamAttempt returns the user's record linked to the
	// given proctoring attempt.
	FindByProctoredExamAttempt(ctx context.Context, userID string, attemptID int64) (*VerifiedName, error)

	// SetVerificationAttempt sets the IDV attempt id on a single record.
	SetVerificationAttempt(ctx context.Context, recordID uuid.UUID, attemptID int64) error

	// AttachVerificationAttempt sets the IDV attempt id on every unlinked
	// record matching (user, verified name) and returns the affected count.
	AttachVerificationAttempt(ctx context.Context, userID, verifiedName string, attemptID int64) (int64, error)

	// UpdateStatus updates a single record's status.
	UpdateStatus(ctx context.Context, recordID uuid.UUID, status Status) error

	// SaveConfig inserts a new config row.
	SaveConfig(ctx context.Context, cfg *Config) error

	// CurrentConfig returns the most recently created config row for the
	// user.
	CurrentConfig(ctx context.Context, userID string) (*Config, error)
}
