package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "credverify/pkg/platform/audit"
	txcontext "credverify/pkg/platform/tx"
)

const eventColumns = `category, timestamp, subject, action, resource, decision, reason, request_id, actor_id`

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is open, so a review resolution and its
// audit row commit together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	category := e.Category
	if category == "" {
		category = audit.AuditEvent(e.Action).Category()
	}
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`INSERT INTO audit_events (id, `+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), string(category), e.Timestamp, e.Subject, e.Action,
		e.Resource, e.Decision, e.Reason, e.RequestID, e.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", e.Action, err)
	}
	return nil
}

// ListBySubject returns a submission's events, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+` FROM audit_events WHERE subject = $1 ORDER BY timestamp DESC`,
		subject)
}

// ListRecent returns the latest limit events across all submissions.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+` FROM audit_events ORDER BY timestamp DESC LIMIT $1`,
		limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.Subject, &e.Action,
			&e.Resource, &e.Decision, &e.Reason, &e.RequestID, &e.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
