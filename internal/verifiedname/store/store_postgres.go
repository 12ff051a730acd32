package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nameaffirm/internal/verifiedname"
	"nameaffirm/pkg/platform/sentinel"
)

// PostgresStore persists verified name records and config rows in PostgreSQL.
// Recency queries lean on the (user_id, created DESC) index; see schema.sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `id, user_id, verified_name, profile_name,
	verification_attempt_id, proctored_exam_attempt_id, status, created`

func (s *PostgresStore) Save(ctx context.Context, record *verifiedname.VerifiedName) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Created.IsZero() {
		record.Created = time.Now()
	}
	query := `
		INSERT INTO verified_names (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.VerifiedName,
		record.ProfileName,
		record.VerificationAttemptID,
		record.ProctoredExamAttemptID,
		string(record.Status),
		record.Created,
	)
	if err != nil {
		return fmt.Errorf("insert verified name: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestByUser(ctx context.Context, userID string, approvedOnly bool) (*verifiedname.VerifiedName, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM verified_names
		WHERE user_id = $1
	`
	args := []any{userID}
	if approvedOnly {
		query += ` AND status = $2`
		args = append(args, string(verifiedname.StatusApproved))
	}
	query += ` ORDER BY created DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query latest verified name: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) HistoryByUser(ctx context.Context, userID string) ([]*verifiedname.VerifiedName, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM verified_names
		WHERE user_id = $1
		ORDER BY created DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query verified name history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *PostgresStore) ListByUserAndName(ctx context.Context, userID, verifiedName string) ([]*verifiedname.VerifiedName, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM verified_names
		WHERE user_id = $1 AND verified_name = $2
		ORDER BY created DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, verifiedName)
	if err != nil {
		return nil, fmt.Errorf("query verified names by name: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *PostgresStore) FindByVerificationAttempt(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	return s.findByAttempt(ctx, userID, "verification_attempt_id", attemptID)
}

func (s *PostgresStore) FindByProctoredExamAttempt(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error) {
	return s.findByAttempt(ctx, userID, "proctored_exam_attempt_id", attemptID)
}

func (s *PostgresStore) findByAttempt(ctx context.Context, userID, column string, attemptID int64) (*verifiedname.VerifiedName, error) {
	// column is one of two compile-time constants, never caller input.
	query := `
		SELECT ` + recordColumns + `
		FROM verified_names
		WHERE user_id = $1 AND ` + column + ` = $2
		ORDER BY created DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, userID, attemptID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query verified name by attempt: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) SetVerificationAttempt(ctx context.Context, recordID uuid.UUID, attemptID int64) error {
	query := `
		UPDATE verified_names
		SET verification_attempt_id = $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, recordID, attemptID)
	if err != nil {
		return fmt.Errorf("set verification attempt: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) AttachVerificationAttempt(ctx context.Context, userID, verifiedName string, attemptID int64) (int64, error) {
	query := `
		UPDATE verified_names
		SET verification_attempt_id = $3
		WHERE user_id = $1
		  AND verified_name = $2
		  AND verification_attempt_id IS NULL
		  AND proctored_exam_attempt_id IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, userID, verifiedName, attemptID)
	if err != nil {
		return 0, fmt.Errorf("attach verification attempt: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("attach verification attempt: rows affected: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, recordID uuid.UUID, status verifiedname.Status) error {
	query := `
		UPDATE verified_names
		SET status = $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, recordID, string(status))
	if err != nil {
		return fmt.Errorf("update verified name status: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) SaveConfig(ctx context.Context, cfg *verifiedname.Config) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Created.IsZero() {
		cfg.Created = time.Now()
	}
	query := `
		INSERT INTO verified_name_configs (id, user_id, use_verified_name_for_certs, created)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, cfg.ID, cfg.UserID, cfg.UseVerifiedNameForCerts, cfg.Created)
	if err != nil {
		return fmt.Errorf("insert verified name config: %w", err)
	}
	return nil
}

func (s *PostgresStore) CurrentConfig(ctx context.Context, userID string) (*verifiedname.Config, error) {
	query := `
		SELECT id, user_id, use_verified_name_for_certs, created
		FROM verified_name_configs
		WHERE user_id = $1
		ORDER BY created DESC
		LIMIT 1
	`
	var cfg verifiedname.Config
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&cfg.ID,
		&cfg.UserID,
		&cfg.UseVerifiedNameForCerts,
		&cfg.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query current config: %w", err)
	}
	return &cfg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*verifiedname.VerifiedName, error) {
	var (
		record verifiedname.VerifiedName
		status string
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.VerifiedName,
		&record.ProfileName,
		&record.VerificationAttemptID,
		&record.ProctoredExamAttemptID,
		&status,
		&record.Created,
	)
	if err != nil {
		return nil, err
	}
	record.Status = verifiedname.Status(status)
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]*verifiedname.VerifiedName, error) {
	var records []*verifiedname.VerifiedName
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verified name: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verified names: %w", err)
	}
	return records, nil
}

func requireAffected(result sql.Result) error {
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if count == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
