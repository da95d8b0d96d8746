// Package domain holds identifier types shared by every bounded context.
//
// IDs are parsed at trust boundaries (HTTP handlers, queue consumers) and
// carried as distinct types afterwards so a ReviewID can never be passed
// where a SubmissionID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "credverify/pkg/domain-errors"
)

// SubmissionID identifies an onboarding submission owned by the caller.
type SubmissionID uuid.UUID

// ResultID identifies one persisted verification result row.
type ResultID uuid.UUID

// ReviewID identifies a manual review queue item.
type ReviewID uuid.UUID

// ReviewerID is the opaque identifier of a human reviewer.
type ReviewerID string

const maxReviewerIDLength = 128

func parseUUID(kind, s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

// ParseSubmissionID validates and converts a string to a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID("submission ID", s)
	return SubmissionID(u), err
}

// ParseResultID validates and converts a string to a ResultID.
func ParseResultID(s string) (ResultID, error) {
	u, err := parseUUID("result ID", s)
	return ResultID(u), err
}

// ParseReviewID validates and converts a string to a ReviewID.
func ParseReviewID(s string) (ReviewID, error) {
	u, err := parseUUID("review ID", s)
	return ReviewID(u), err
}

// ParseReviewerID validates an opaque reviewer identifier.
func ParseReviewerID(s string) (ReviewerID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "reviewer ID is required")
	}
	if len(s) > maxReviewerIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "reviewer ID must be at most 128 characters")
	}
	return ReviewerID(s), nil
}

func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }
func NewResultID() ResultID         { return ResultID(uuid.New()) }
func NewReviewID() ReviewID         { return ReviewID(uuid.New()) }

func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id ResultID) String() string     { return uuid.UUID(id).String() }
func (id ReviewID) String() string     { return uuid.UUID(id).String() }
func (id ReviewerID) String() string   { return string(id) }

func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ResultID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReviewID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets IDs appear as plain strings in JSON payloads.
func (id SubmissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ResultID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ReviewID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *SubmissionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ResultID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ReviewID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
