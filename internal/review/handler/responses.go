package handler

import (
	"time"

	"credverify/internal/review/models"
)

// ItemResponse is one review item with its SLA position rendered.
type ItemResponse struct {
	ID               string `json:"id"`
	SubmissionID     string `json:"submission_id"`
	ResultID         string `json:"result_id"`
	CredentialRef    string `json:"credential_ref"`
	ReviewType       string `json:"review_type"`
	Priority         string `json:"priority"`
	Reason           string `json:"reason"`
	Status           string `json:"status"`
	SLADeadline      string `json:"sla_deadline"`
	TimeRemaining    string `json:"time_remaining,omitempty"`
	Overdue          bool   `json:"overdue"`
	AssignedTo       string `json:"assigned_to,omitempty"`
	ResolutionNotes  string `json:"resolution_notes,omitempty"`
	ResolvedBy       string `json:"resolved_by,omitempty"`
	ResolvedAt       string `json:"resolved_at,omitempty"`
	EscalationReason string `json:"escalation_reason,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type ListResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

func FromItem(item *models.Item, now time.Time) *ItemResponse {
	resp := &ItemResponse{
		ID:               item.ID.String(),
		SubmissionID:     item.SubmissionID.String(),
		ResultID:         item.ResultID.String(),
		CredentialRef:    item.CredentialRef,
		ReviewType:       string(item.Type),
		Priority:         string(item.Priority),
		Reason:           item.Reason,
		Status:           string(item.Status),
		SLADeadline:      item.SLADeadline.UTC().Format(time.RFC3339),
		Overdue:          item.IsOverdue(now),
		AssignedTo:       item.AssignedTo.String(),
		ResolutionNotes:  item.ResolutionNotes,
		ResolvedBy:       item.ResolvedBy,
		EscalationReason: item.EscalationReason,
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.IsOpen() {
		resp.TimeRemaining = item.TimeRemaining(now)
	}
	if item.ResolvedAt != nil {
		resp.ResolvedAt = item.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func FromItems(items []*models.Item, now time.Time) *ListResponse {
	out := &ListResponse{Items: make([]ItemResponse, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, *FromItem(item, now))
	}
	out.Count = len(out.Items)
	return out
}
