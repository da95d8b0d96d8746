package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "credverify/pkg/platform/audit"
	txcontext "credverify/pkg/platform/tx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestAppend(t *testing.T) {
	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	event := audit.Event{
		Timestamp: at,
		Subject:   "7f0c2a8e-8a4b-4a47-9d4e-0b1f3a2d9c11",
		Action:    string(audit.EventReviewEscalated),
		Resource:  "license:MX:7654321",
		Reason:    "sla_breach",
		ActorID:   "system",
	}

	t.Run("derives the category from the action", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
			WithArgs(sqlmock.AnyArg(), "operations", at, event.Subject, "review_escalated",
				"license:MX:7654321", "", "sla_breach", "", "system").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Append(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins an open transaction", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := store.db.Begin()
		require.NoError(t, err)
		require.NoError(t, store.Append(txcontext.WithTx(context.Background(), tx), event))
		require.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps driver failures", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).WillReturnError(errors.New("connection reset"))

		err := store.Append(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "review_escalated")
	})
}

func TestListBySubject(t *testing.T) {
	cols := []string{"category", "timestamp", "subject", "action", "resource", "decision", "reason", "request_id", "actor_id"}
	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	t.Run("scans rows in store order", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM audit_events WHERE subject = $1")).
			WithArgs("sub-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("compliance", at.Add(time.Minute), "sub-1", "review_approved", "license:MX:1", "approved", "", "req-2", "rev-1").
				AddRow("compliance", at, "sub-1", "verification_run", "", "partially_verified", "", "req-1", "system"))

		events, err := store.ListBySubject(context.Background(), "sub-1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, "rev-1", events[0].ActorID)
		assert.Equal(t, "verification_run", events[1].Action)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM audit_events")).WillReturnRows(sqlmock.NewRows(cols))

		events, err := store.ListBySubject(context.Background(), "sub-2")
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}

func TestListRecent(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY timestamp DESC LIMIT $1")).
		WithArgs(5).
		WillReturnError(errors.New("timeout"))

	_, err := store.ListRecent(context.Background(), 5)
	assert.Error(t, err)
}
