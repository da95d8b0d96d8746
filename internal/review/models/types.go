package models

import (
	"fmt"
	"strings"

	dErrors "credverify/pkg/domain-errors"
)

// ReviewType explains why a credential needs a human.
type ReviewType string

const (
	ReviewNotFound                ReviewType = "not_found"
	ReviewUnsupportedJurisdiction ReviewType = "unsupported_jurisdiction"
	ReviewDataDiscrepancy         ReviewType = "data_discrepancy"
	ReviewProviderUnavailable     ReviewType = "provider_unavailable"
	ReviewProfileUnconfirmed      ReviewType = "profile_unconfirmed"
)

// Priority orders the queue after SLA deadline.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority filter received from a caller.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported priority %q", s))
	}
}

// Status is the lifecycle position of a review item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusEscalated  Status = "escalated"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// IsTerminal reports whether the item has been resolved.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// OpenStatuses lists the non-terminal statuses.
var OpenStatuses = []Status{StatusPending, StatusInProgress, StatusEscalated}

// ListFilter narrows the open-queue listing.
type ListFilter struct {
	Priority Priority
	Limit    int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Normalize applies limit defaults and bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}
