package result

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/pgutil"
	"credverify/pkg/platform/sentinel"
	txcontext "credverify/pkg/platform/tx"
)

// PostgresStore persists results in the verification_results table.
// Writes join the caller's transaction when one is open.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const resultColumns = `id, submission_id, credential_type, credential_ref, status, method, tier,
	match_confidence, discrepancies, raw_payload, verified_by, supersedes, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, r *models.VerificationResult) error {
	discrepancies, err := json.Marshal(r.Discrepancies)
	if err != nil {
		return fmt.Errorf("marshal discrepancies: %w", err)
	}
	query := `
		INSERT INTO verification_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.SubmissionID),
		string(r.CredentialType),
		string(r.CredentialRef),
		string(r.Status),
		r.Method,
		string(r.Tier),
		r.MatchConfidence,
		discrepancies,
		nullableJSON(r.RawPayload),
		r.VerifiedBy,
		nullableID(r.Supersedes),
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return fmt.Errorf("result %s: %w", r.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert verification result: %w", err)
	}
	return nil
}

// Update rewrites the verdict columns of an existing row.
func (s *PostgresStore) Update(ctx context.Context, r *models.VerificationResult) error {
	discrepancies, err := json.Marshal(r.Discrepancies)
	if err != nil {
		return fmt.Errorf("marshal discrepancies: %w", err)
	}
	query := `
		UPDATE verification_results
		SET status = $2, tier = $3, match_confidence = $4, discrepancies = $5,
			verified_by = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		string(r.Status),
		string(r.Tier),
		r.MatchConfidence,
		discrepancies,
		r.VerifiedBy,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update verification result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("result %s: %w", r.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, resultID id.ResultID) (*models.VerificationResult, error) {
	query := `SELECT ` + resultColumns + ` FROM verification_results WHERE id = $1`
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(resultID))
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification result: %w", err)
	}
	return r, nil
}

// ListLatestBySubmission returns the newest row per credential reference.
func (s *PostgresStore) ListLatestBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error) {
	query := `
		SELECT DISTINCT ON (credential_ref) ` + resultColumns + `
		FROM verification_results
		WHERE submission_id = $1
		ORDER BY credential_ref, created_at DESC, seq DESC
	`
	return s.list(ctx, query, submissionID)
}

// ListHistory returns every row of the submission, newest first.
func (s *PostgresStore) ListHistory(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM verification_results
		WHERE submission_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	return s.list(ctx, query, submissionID)
}

func (s *PostgresStore) list(ctx context.Context, query string, submissionID id.SubmissionID) ([]*models.VerificationResult, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("query verification results: %w", err)
	}
	defer rows.Close()

	var out []*models.VerificationResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification results: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.VerificationResult, error) {
	var (
		r             models.VerificationResult
		resultID      uuid.UUID
		submissionID  uuid.UUID
		credType      string
		credRef       string
		status        string
		tier          string
		discrepancies []byte
		raw           []byte
		supersedes    uuid.NullUUID
	)
	err := row.Scan(
		&resultID,
		&submissionID,
		&credType,
		&credRef,
		&status,
		&r.Method,
		&tier,
		&r.MatchConfidence,
		&discrepancies,
		&raw,
		&r.VerifiedBy,
		&supersedes,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = id.ResultID(resultID)
	r.SubmissionID = id.SubmissionID(submissionID)
	r.CredentialType = models.CredentialType(credType)
	r.CredentialRef = models.CredentialRef(credRef)
	r.Status = models.ResultStatus(status)
	r.Tier = models.Tier(tier)
	if len(discrepancies) > 0 {
		if err := json.Unmarshal(discrepancies, &r.Discrepancies); err != nil {
			return nil, fmt.Errorf("decode discrepancies: %w", err)
		}
	}
	if r.Discrepancies == nil {
		r.Discrepancies = []models.Discrepancy{}
	}
	if len(raw) > 0 {
		r.RawPayload = json.RawMessage(raw)
	}
	if supersedes.Valid {
		prev := id.ResultID(supersedes.UUID)
		r.Supersedes = &prev
	}
	return &r, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullableID(rid *id.ResultID) any {
	if rid == nil {
		return nil
	}
	return uuid.UUID(*rid)
}
