package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// PostgresStore reads records from the submissions table, where onboarding
// keeps each record as a JSONB document.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec *models.SubmittedCredentialRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	query := `
		INSERT INTO submissions (id, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(rec.SubmissionID), raw); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, submissionID id.SubmissionID) (*models.SubmittedCredentialRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM submissions WHERE id = $1`, uuid.UUID(submissionID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	var rec models.SubmittedCredentialRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	// The document key wins over whatever id the payload carries.
	rec.SubmissionID = submissionID
	return &rec, nil
}
