package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nameaffirm/internal/verifiedname"
	"nameaffirm/pkg/platform/sentinel"
)

// InMemoryStore keeps records in process memory. It mirrors the postgres
// store's semantics exactly and backs unit tests and local wiring. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*verifiedname.VerifiedName
	configs []*verifiedname.Config

	// seq breaks Created ties so ordering stays deterministic when two
	// records land in the same clock tick.
	seq map[uuid.UUID]int64
	n   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[uuid.UUID]*verifiedname.VerifiedName),
		seq:     make(map[uuid.UUID]int64),
	}
}

func (s *InMemoryStore) Save(_ context.Context, record *verifiedname.VerifiedName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Created.IsZero() {
		record.Created = time.Now()
	}
	clone := *record
	s.n++
	s.records[clone.ID] = &clone
	s.seq[clone.ID] = s.n
	return nil
}

func (s *InMemoryStore) LatestByUser(_ context.Context, userID string, approvedOnly bool) (*verifiedname.VerifiedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byUserLocked(userID, func(r *verifiedname.VerifiedName) bool {
		return !approvedOnly || r.Status == verifiedname.StatusApproved
	})
	if len(records) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return records[0], nil
}

func (s *InMemoryStore) HistoryByUser(_ context.Context, userID string) ([]*verifiedname.VerifiedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byUserLocked(userID, nil), nil
}

func (s *InMemoryStore) ListByUserAndName(_ context.Context, userID, verifiedName string) ([]*verifiedname.VerifiedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byUserLocked(userID, func(r *verifiedname.VerifiedName) bool {
		return r.VerifiedName == verifiedName
	}), nil
}

func (s *InMemoryStore) FindByVerificationAttempt(_ context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byUserLocked(userID, func(r *verifiedname.VerifiedName) bool {
		return r.VerificationAttemptID != nil && *r.VerificationAttemptID == attemptID
	})
	if len(records) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return records[0], nil
}

func (s *InMemoryStore) FindByProctoredExamAttempt(_ context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byUserLocked(userID, func(r *verifiedname.VerifiedName) bool {
		return r.ProctoredExamAttemptID != nil && *r.ProctoredExamAttemptID == attemptID
	})
	if len(records) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return records[0], nil
}

func (s *InMemoryStore) SetVerificationAttempt(_ context.Context, recordID uuid.UUID, attemptID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	id := attemptID
	record.VerificationAttemptID = &id
	return nil
}

func (s *InMemoryStore) AttachVerificationAttempt(_ context.Context, userID, verifiedName string, attemptID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, record := range s.records {
		if record.UserID != userID || record.VerifiedName != verifiedName {
			continue
		}
		if record.Linked() {
			continue
		}
		id := attemptID
		record.VerificationAttemptID = &id
		count++
	}
	return count, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, recordID uuid.UUID, status verifiedname.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.Status = status
	return nil
}

func (s *InMemoryStore) SaveConfig(_ context.Context, cfg *verifiedname.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Created.IsZero() {
		cfg.Created = time.Now()
	}
	clone := *cfg
	s.configs = append(s.configs, &clone)
	return nil
}

func (s *InMemoryStore) CurrentConfig(_ context.Context, userID string) (*verifiedname.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.configs) - 1; i >= 0; i-- {
		if s.configs[i].UserID == userID {
			clone := *s.configs[i]
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// byUserLocked returns copies of the user's records newest first, optionally
// filtered. Callers must hold at least the read lock.
func (s *InMemoryStore) byUserLocked(userID string, keep func(*verifiedname.VerifiedName) bool) []*verifiedname.VerifiedName {
	var out []*verifiedname.VerifiedName
	for _, record := range s.records {
		if record.UserID != userID {
			continue
		}
		if keep != nil && !keep(record) {
			continue
		}
		clone := *record
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return s.seq[out[i].ID] > s.seq[out[j].ID]
		}
		return out[i].Created.After(out[j].Created)
	})
	return out
}
