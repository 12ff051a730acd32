// Package service implements the verified name reconciliation API. It owns
// validation, recency resolution, and the update-or-create rules; persistence
// stays behind the verifiedname.Store interface.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"nameaffirm/internal/platform/metrics"
	"nameaffirm/internal/verifiedname"
	dErrors "nameaffirm/pkg/domain-errors"
	"nameaffirm/pkg/platform/sentinel"
)

// CertsFlag resolves the cached per-user certificate flag. Implemented by
// configcache.Cache.
type CertsFlag interface {
	UseVerifiedNameForCerts(ctx context.Context, userID string) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}

// Notifier receives record lifecycle events. Failures are logged, never
// propagated: notification delivery must not fail a write that already
// happened.
type Notifier interface {
	NameCreated(ctx context.Context, record *verifiedname.VerifiedName) error
	StatusChanged(ctx context.Context, record *verifiedname.VerifiedName) error
}

// Service is the reconciliation API over verified name records and config.
type Service struct {
	store    verifiedname.Store
	certs    CertsFlag
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the lifecycle notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. certs may be nil when no cache is wired, in which
// case flag reads go straight to the store.
func New(store verifiedname.Store, certs CertsFlag, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		certs:  certs,
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateRequest carries the fields for a new verified name record. Status
// defaults to pending when empty.
type CreateRequest struct {
	UserID                 string
	VerifiedName           string
	ProfileName            string
	VerificationAttemptID  *int64
	ProctoredExamAttemptID *int64
	Status                 verifiedname.Status

	// Origin labels the created-records metric: "api", "idv" or
	// "proctoring".
	Origin string
}

// CreateVerifiedName validates and inserts a new record.
func (s *Service) CreateVerifiedName(ctx context.Context, req CreateRequest) (*verifiedname.VerifiedName, error) {
	if req.VerificationAttemptID != nil && req.ProctoredExamAttemptID != nil {
		return nil, dErrors.New(dErrors.CodeMultipleAttemptIDs, fmt.Sprintf(
			"attempted to create VerifiedName for user_id=%s, but both attempt ids were given", req.UserID,
		))
	}
	if field, ok := emptyNameField(req.VerifiedName, req.ProfileName); ok {
		return nil, dErrors.New(dErrors.CodeEmptyString, fmt.Sprintf(
			"attempted to create VerifiedName for user_id=%s, but %s was empty", req.UserID, field,
		))
	}

	status := req.Status
	if status == "" {
		status = verifiedname.StatusPending
	}

	record := &verifiedname.VerifiedName{
		ID:                     uuid.New(),
		UserID:                 req.UserID,
		VerifiedName:           req.VerifiedName,
		ProfileName:            req.ProfileName,
		VerificationAttemptID:  req.VerificationAttemptID,
		ProctoredExamAttemptID: req.ProctoredExamAttemptID,
		Status:                 status,
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save verified name: %w", err)
	}

	if s.metrics != nil {
		origin := req.Origin
		if origin == "" {
			origin = "api"
		}
		s.metrics.NamesCreated.WithLabelValues(origin).Inc()
	}
	s.notifyCreated(ctx, record)
	return record, nil
}

// GetVerifiedName returns the user's most recent record, optionally
// restricted to approved records.
func (s *Service) GetVerifiedName(ctx context.Context, userID string, verifiedOnly bool) (*verifiedname.VerifiedName, error) {
	record, err := s.store.LatestByUser(ctx, userID, verifiedOnly)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf(
				"no VerifiedName exists for user_id=%s", userID,
			))
		}
		return nil, fmt.Errorf("latest verified name: %w", err)
	}
	return record, nil
}

// GetVerifiedNameHistory returns all of the user's records, newest first.
func (s *Service) GetVerifiedNameHistory(ctx context.Context, userID string) ([]*verifiedname.VerifiedName, error) {
	return s.store.HistoryByUser(ctx, userID)
}

// UpdateVerificationAttemptID correlates the user's most recent record with
// an IDV attempt. A most-recent record already linked to any attempt is left
// untouched and a new record is created instead, copying its names and
// status.
func (s *Service) UpdateVerificationAttemptID(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	latest, err := s.store.LatestByUser(ctx, userID, false)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf(
				"no VerifiedName exists for user_id=%s, cannot update verification_attempt_id", userID,
			))
		}
		return nil, fmt.Errorf("latest verified name: %w", err)
	}

	if latest.Linked() {
		id := attemptID
		return s.CreateVerifiedName(ctx, CreateRequest{
			UserID:                userID,
			VerifiedName:          latest.VerifiedName,
			ProfileName:           latest.ProfileName,
			VerificationAttemptID: &id,
			Status:                latest.Status,
		})
	}

	if err := s.store.SetVerificationAttempt(ctx, latest.ID, attemptID); err != nil {
		return nil, fmt.Errorf("set verification attempt: %w", err)
	}
	id := attemptID
	latest.VerificationAttemptID = &id
	return latest, nil
}

// UpdateVerifiedNameStatus updates the status of the record linked to the
// given attempt. Exactly one attempt id must be provided.
func (s *Service) UpdateVerifiedNameStatus(ctx context.Context, userID string, status verifiedname.Status, verificationAttemptID, proctoredExamAttemptID *int64) (*verifiedname.VerifiedName, error) {
	if verificationAttemptID == nil && proctoredExamAttemptID == nil {
		return nil, dErrors.New(dErrors.CodeAttemptIDNotGiven, fmt.Sprintf(
			"attempted to update VerifiedName for user_id=%s, but no attempt id was given", userID,
		))
	}
	if verificationAttemptID != nil && proctoredExamAttemptID != nil {
		return nil, dErrors.New(dErrors.CodeMultipleAttemptIDs, fmt.Sprintf(
			"attempted to update VerifiedName for user_id=%s, but both attempt ids were given", userID,
		))
	}

	var (
		record *verifiedname.VerifiedName
		err    error
	)
	if verificationAttemptID != nil {
		record, err = s.store.FindByVerificationAttempt(ctx, userID, *verificationAttemptID)
	} else {
		record, err = s.store.FindByProctoredExamAttempt(ctx, userID, *proctoredExamAttemptID)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf(
				"no VerifiedName matches the given attempt id for user_id=%s", userID,
			))
		}
		return nil, fmt.Errorf("find verified name by attempt: %w", err)
	}

	if err := s.SetStatus(ctx, record, status); err != nil {
		return nil, err
	}
	return record, nil
}

// SetStatus updates a single record's status and fires the status-change
// notification. Event handlers use it to update records individually so each
// change produces its own notification.
func (s *Service) SetStatus(ctx context.Context, record *verifiedname.VerifiedName, status verifiedname.Status) error {
	if err := s.store.UpdateStatus(ctx, record.ID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	record.Status = status
	if s.metrics != nil {
		s.metrics.StatusUpdates.WithLabelValues(string(status)).Inc()
	}
	s.notifyStatusChanged(ctx, record)
	return nil
}

// MatchingNames returns the user's records whose verified name matches
// exactly, newest first. Used by the IDV reconciliation handler.
func (s *Service) MatchingNames(ctx context.Context, userID, verifiedName string) ([]*verifiedname.VerifiedName, error) {
	return s.store.ListByUserAndName(ctx, userID, verifiedName)
}

// AttachVerificationAttemptID links every unlinked record matching (user,
// verified name) to the given IDV attempt and returns the affected count.
// Normally at most one record should match; a larger count is surfaced to the
// caller for logging.
func (s *Service) AttachVerificationAttemptID(ctx context.Context, userID, verifiedName string, attemptID int64) (int64, error) {
	return s.store.AttachVerificationAttempt(ctx, userID, verifiedName, attemptID)
}

// GetVerifiedNameByProctoredExamAttempt returns the user's record linked to
// the given proctoring attempt.
func (s *Service) GetVerifiedNameByProctoredExamAttempt(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	record, err := s.store.FindByProctoredExamAttempt(ctx, userID, attemptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf(
				"no VerifiedName matches proctored_exam_attempt_id=%d for user_id=%s", attemptID, userID,
			))
		}
		return nil, fmt.Errorf("find verified name by proctoring attempt: %w", err)
	}
	return record, nil
}

// ShouldUseVerifiedNameForCerts returns the user's current certificate flag,
// defaulting to false when no config exists.
func (s *Service) ShouldUseVerifiedNameForCerts(ctx context.Context, userID string) (bool, error) {
	if s.certs != nil {
		return s.certs.UseVerifiedNameForCerts(ctx, userID)
	}
	cfg, err := s.store.CurrentConfig(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("current config: %w", err)
	}
	return cfg.UseVerifiedNameForCerts, nil
}

// CreateVerifiedNameConfig inserts a new config row, layering only the
// explicitly provided fields over the previous current row. Unset fields keep
// their prior value instead of resetting to a default.
func (s *Service) CreateVerifiedNameConfig(ctx context.Context, userID string, update verifiedname.ConfigUpdate) (*verifiedname.Config, error) {
	prev, err := s.store.CurrentConfig(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("current config: %w", err)
	}

	next := update.Merge(prev)
	next.ID = uuid.New()
	next.UserID = userID
	if err := s.store.SaveConfig(ctx, &next); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	if s.certs != nil {
		if err := s.certs.Invalidate(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate certs flag cache",
				"user_id", userID,
				"error", err,
			)
		}
	}
	return &next, nil
}

func (s *Service) notifyCreated(ctx context.Context, record *verifiedname.VerifiedName) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NameCreated(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "name created notification failed",
			"user_id", record.UserID,
			"verified_name_id", record.ID,
			"error", err,
		)
	}
}

func (s *Service) notifyStatusChanged(ctx context.Context, record *verifiedname.VerifiedName) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.StatusChanged(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "status change notification failed",
			"user_id", record.UserID,
			"verified_name_id", record.ID,
			"error", err,
		)
	}
}

func emptyNameField(verifiedName, profileName string) (string, bool) {
	if verifiedName == "" {
		return "verified_name", true
	}
	if profileName == "" {
		return "profile_name", true
	}
	return "", false
}
