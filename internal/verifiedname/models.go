// Package verifiedname holds the domain model for verified name records: a
// per-user, append-mostly history of names confirmed through identity
// verification (IDV) or proctoring attempts, plus a versioned per-user config
// controlling whether the verified name appears on certificates.
package verifiedname

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a verified name record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
)

// ParseStatus maps an external status string onto the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSubmitted, StatusApproved, StatusDenied:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown verified name status %q", s)
}

// VerifiedName is one record in a user's verified name history. Records are
// immutable after creation except for Status and, at most once, the
// verification attempt linkage. "Current name" for a user is the record with
// the greatest Created timestamp.
type VerifiedName struct {
	ID           uuid.UUID
	UserID       string
	VerifiedName string
	ProfileName  string

	// At most one of the two attempt ids may be set. A record with neither
	// set is "unlinked" and may later be correlated to an IDV attempt.
	VerificationAttemptID  *int64
	ProctoredExamAttemptID *int64

	Status  Status
	Created time.Time
}

// Linked reports whether the record is already correlated to any attempt.
func (v *VerifiedName) Linked() bool {
	return v.VerificationAttemptID != nil || v.ProctoredExamAttemptID != nil
}

// Config is one row in a user's verified name configuration history. Config
// is versioned: every write inserts a new row, and the current value is the
// most recently created row.
type Config struct {
	ID                      uuid.UUID
	UserID                  string
	UseVerifiedNameForCerts bool
	Created                 time.Time
}

// ConfigUpdate is a partial config write. Nil fields carry over the previous
// current row's value rather than resetting to a default.
type ConfigUpdate struct {
	UseVerifiedNameForCerts *bool
}

// Merge layers the update over the previous snapshot. prev may be nil when
// the user has no config yet, in which case zero values apply.
func (u ConfigUpdate) Merge(prev *Config) Config {
	var next Config
	if prev != nil {
		next.UseVerifiedNameForCerts = prev.UseVerifiedNameForCerts
	}
	if u.UseVerifiedNameForCerts != nil {
		next.UseVerifiedNameForCerts = *u.UseVerifiedNameForCerts
	}
	return next
}
