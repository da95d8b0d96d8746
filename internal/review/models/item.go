package models

import (
	"fmt"
	"strings"
	"time"

	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

// SystemRecheck is the resolver recorded when a forced recheck closes an item.
const SystemRecheck = "system:recheck"

// Item is one credential awaiting a human decision.
//
// Invariants:
//   - ResultID always references exactly one verification result
//   - SLADeadline is fixed at creation (CreatedAt + window); escalation and
//     re-linking never move it
//   - Approved and rejected are terminal; escalated is a hand-off state that
//     can still be resolved
//   - ResolvedBy/ResolvedAt are set iff the item is terminal
type Item struct {
	ID               id.ReviewID     `json:"id"`
	SubmissionID     id.SubmissionID `json:"submission_id"`
	ResultID         id.ResultID     `json:"result_id"`
	CredentialRef    string          `json:"credential_ref"`
	Type             ReviewType      `json:"review_type"`
	Priority         Priority        `json:"priority"`
	Reason           string          `json:"reason"`
	Status           Status          `json:"status"`
	SLADeadline      time.Time       `json:"sla_deadline"`
	AssignedTo       id.ReviewerID   `json:"assigned_to,omitempty"`
	ResolutionNotes  string          `json:"resolution_notes,omitempty"`
	ResolvedBy       string          `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
	EscalationReason string          `json:"escalation_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewItemParams carries what the orchestrator knows about a credential.
type NewItemParams struct {
	SubmissionID  id.SubmissionID
	ResultID      id.ResultID
	CredentialRef string
	Type          ReviewType
	Priority      Priority
	Reason        string
}

func NewItem(p NewItemParams, now time.Time, window time.Duration) (*Item, error) {
	if p.SubmissionID.IsNil() || p.ResultID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "review item must reference a submission and a result")
	}
	if p.Type == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "review type is required")
	}
	if window <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "sla window must be positive")
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	return &Item{
		ID:            id.NewReviewID(),
		SubmissionID:  p.SubmissionID,
		ResultID:      p.ResultID,
		CredentialRef: p.CredentialRef,
		Type:          p.Type,
		Priority:      p.Priority,
		Reason:        p.Reason,
		Status:        StatusPending,
		SLADeadline:   now.Add(window),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (i *Item) IsOpen() bool {
	return !i.Status.IsTerminal()
}

func (i *Item) IsOverdue(now time.Time) bool {
	return i.IsOpen() && now.After(i.SLADeadline)
}

// TimeRemaining renders the SLA position, e.g. "3h 20m remaining" or
// "overdue by 2h 5m".
func (i *Item) TimeRemaining(now time.Time) string {
	d := i.SLADeadline.Sub(now)
	if d < 0 {
		return "overdue by " + humanDuration(-d)
	}
	return humanDuration(d) + " remaining"
}

func humanDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)
	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}

func (i *Item) canAct(action string) error {
	if !i.IsOpen() {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("cannot %s a review item that is already %s", action, i.Status))
	}
	return nil
}

// CanAssign checks the item is still open.
func (i *Item) CanAssign() error {
	return i.canAct("assign")
}

// ApplyAssignment hands the item to a reviewer.
func (i *Item) ApplyAssignment(reviewer id.ReviewerID, now time.Time) {
	i.AssignedTo = reviewer
	if i.Status == StatusPending {
		i.Status = StatusInProgress
	}
	i.UpdatedAt = now
}

// CanResolve checks the item can still be approved or rejected.
func (i *Item) CanResolve() error {
	return i.canAct("resolve")
}

// CanReject additionally requires a non-empty reason.
func (i *Item) CanReject(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return i.CanResolve()
}

// ApplyApproval resolves the item as approved.
func (i *Item) ApplyApproval(resolvedBy, notes string, now time.Time) {
	i.resolve(StatusApproved, resolvedBy, notes, now)
}

// ApplyRejection resolves the item as rejected.
func (i *Item) ApplyRejection(resolvedBy, reason string, now time.Time) {
	i.resolve(StatusRejected, resolvedBy, strings.TrimSpace(reason), now)
}

func (i *Item) resolve(status Status, resolvedBy, notes string, now time.Time) {
	i.Status = status
	i.ResolvedBy = resolvedBy
	i.ResolutionNotes = notes
	at := now
	i.ResolvedAt = &at
	i.UpdatedAt = now
}

// CanEscalate checks the item is open and not already escalated.
func (i *Item) CanEscalate() error {
	if err := i.canAct("escalate"); err != nil {
		return err
	}
	if i.Status == StatusEscalated {
		return dErrors.New(dErrors.CodeInvariantViolation, "review item is already escalated")
	}
	return nil
}

// ApplyEscalation hands the item off and raises it to high priority.
func (i *Item) ApplyEscalation(reason string, now time.Time) {
	i.Status = StatusEscalated
	i.Priority = PriorityHigh
	i.EscalationReason = reason
	i.UpdatedAt = now
}

// ApplyRelink moves the item onto a newer result of the same credential.
func (i *Item) ApplyRelink(p NewItemParams, now time.Time) {
	i.ResultID = p.ResultID
	i.Type = p.Type
	if p.Priority != "" {
		i.Priority = p.Priority
	}
	i.Reason = p.Reason
	i.UpdatedAt = now
}
