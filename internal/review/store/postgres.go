package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/pgutil"
	"credverify/pkg/platform/sentinel"
	txcontext "credverify/pkg/platform/tx"
)

// PostgresStore persists items in the review_items table. Partial unique
// indexes keep at most one open item per result and per submission
// credential, so concurrent runs on different replicas cannot both enqueue.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, submission_id, result_id, credential_ref, review_type, priority, reason, status,
	sla_deadline, assigned_to, resolution_notes, resolved_by, resolved_at, escalation_reason, created_at, updated_at`

func openStatuses() any {
	statuses := make([]string, len(models.OpenStatuses))
	for i, st := range models.OpenStatuses {
		statuses[i] = string(st)
	}
	return pq.Array(statuses)
}

func (s *PostgresStore) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO review_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(item.ID),
		uuid.UUID(item.SubmissionID),
		uuid.UUID(item.ResultID),
		item.CredentialRef,
		string(item.Type),
		string(item.Priority),
		item.Reason,
		string(item.Status),
		item.SLADeadline,
		string(item.AssignedTo),
		item.ResolutionNotes,
		item.ResolvedBy,
		item.ResolvedAt,
		item.EscalationReason,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return fmt.Errorf("open review item for result %s or %s: %w", item.ResultID, item.CredentialRef, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert review item: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns. SLA deadline and creation time are
// never touched.
func (s *PostgresStore) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE review_items
		SET result_id = $2, review_type = $3, priority = $4, reason = $5, status = $6,
			assigned_to = $7, resolution_notes = $8, resolved_by = $9, resolved_at = $10,
			escalation_reason = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(item.ID),
		uuid.UUID(item.ResultID),
		string(item.Type),
		string(item.Priority),
		item.Reason,
		string(item.Status),
		string(item.AssignedTo),
		item.ResolutionNotes,
		item.ResolvedBy,
		item.ResolvedAt,
		item.EscalationReason,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update review item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review item %s: %w", item.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM review_items WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(reviewID))
}

func (s *PostgresStore) FindOpenByResult(ctx context.Context, resultID id.ResultID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM review_items WHERE result_id = $1 AND status = ANY($2) LIMIT 1`
	return s.findOne(ctx, query, uuid.UUID(resultID), openStatuses())
}

func (s *PostgresStore) FindOpenByCredential(ctx context.Context, submissionID id.SubmissionID, credentialRef string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM review_items
		WHERE submission_id = $1 AND credential_ref = $2 AND status = ANY($3) LIMIT 1`
	return s.findOne(ctx, query, uuid.UUID(submissionID), credentialRef, openStatuses())
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Item, error) {
	item, err := scanItem(txcontext.Use(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find review item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) ListOpen(ctx context.Context, filter models.ListFilter) ([]*models.Item, error) {
	filter = filter.Normalize()
	query := `
		SELECT ` + itemColumns + `
		FROM review_items
		WHERE status = ANY($1) AND ($2 = '' OR priority = $2)
		ORDER BY sla_deadline ASC, id ASC
		LIMIT $3
	`
	return s.list(ctx, query, openStatuses(), string(filter.Priority), filter.Limit)
}

func (s *PostgresStore) ListOverdue(ctx context.Context, now time.Time) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM review_items
		WHERE status = ANY($1) AND sla_deadline < $2
		ORDER BY sla_deadline ASC, id ASC
	`
	return s.list(ctx, query, openStatuses(), now)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review items: %w", err)
	}
	defer rows.Close()

	var out []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review items: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.Item, error) {
	var (
		item         models.Item
		reviewID     uuid.UUID
		submissionID uuid.UUID
		resultID     uuid.UUID
		reviewType   string
		priority     string
		status       string
		assignedTo   string
		resolvedAt   sql.NullTime
	)
	err := row.Scan(
		&reviewID,
		&submissionID,
		&resultID,
		&item.CredentialRef,
		&reviewType,
		&priority,
		&item.Reason,
		&status,
		&item.SLADeadline,
		&assignedTo,
		&item.ResolutionNotes,
		&item.ResolvedBy,
		&resolvedAt,
		&item.EscalationReason,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ID = id.ReviewID(reviewID)
	item.SubmissionID = id.SubmissionID(submissionID)
	item.ResultID = id.ResultID(resultID)
	item.Type = models.ReviewType(reviewType)
	item.Priority = models.Priority(priority)
	item.Status = models.Status(status)
	item.AssignedTo = id.ReviewerID(assignedTo)
	if resolvedAt.Valid {
		at := resolvedAt.Time
		item.ResolvedAt = &at
	}
	return &item, nil
}
