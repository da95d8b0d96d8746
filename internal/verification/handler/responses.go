package handler

import (
	"time"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/audit"
)

// StatusResponse is the submitter-visible overall status. Discrepancy detail
// is never included.
type StatusResponse struct {
	SubmissionID string                     `json:"submission_id"`
	Status       string                     `json:"status"`
	Tier         string                     `json:"tier,omitempty"`
	Summary      models.Summary             `json:"summary"`
	Credentials  []CredentialStatusResponse `json:"credentials"`
	EvaluatedAt  string                     `json:"evaluated_at"`
}

type CredentialStatusResponse struct {
	Type            string  `json:"type"`
	Ref             string  `json:"ref"`
	Status          string  `json:"status"`
	Tier            string  `json:"tier,omitempty"`
	MatchConfidence float64 `json:"match_confidence"`
}

// FromOverall maps an aggregate to its response.
func FromOverall(o *models.OverallVerification) *StatusResponse {
	creds := make([]CredentialStatusResponse, 0, len(o.Credentials))
	for _, c := range o.Credentials {
		creds = append(creds, CredentialStatusResponse{
			Type:            string(c.Type),
			Ref:             string(c.Ref),
			Status:          string(c.Status),
			Tier:            string(c.Tier),
			MatchConfidence: c.MatchConfidence,
		})
	}
	return &StatusResponse{
		SubmissionID: o.SubmissionID.String(),
		Status:       string(o.Status),
		Tier:         string(o.Tier),
		Summary:      o.Summary,
		Credentials:  creds,
		EvaluatedAt:  o.EvaluatedAt.UTC().Format(time.RFC3339),
	}
}

// ResultResponse is one stored result as shown to admins.
type ResultResponse struct {
	ID              string               `json:"id"`
	CredentialType  string               `json:"credential_type"`
	CredentialRef   string               `json:"credential_ref"`
	Status          string               `json:"status"`
	Method          string               `json:"method"`
	Tier            string               `json:"tier,omitempty"`
	MatchConfidence float64              `json:"match_confidence"`
	Discrepancies   []models.Discrepancy `json:"discrepancies"`
	VerifiedBy      string               `json:"verified_by,omitempty"`
	Supersedes      string               `json:"supersedes,omitempty"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

type ResultsResponse struct {
	SubmissionID string           `json:"submission_id"`
	History      bool             `json:"history"`
	Results      []ResultResponse `json:"results"`
}

// FromResults maps stored rows to the admin view. Raw payloads stay out.
func FromResults(submissionID id.SubmissionID, results []*models.VerificationResult, history bool) *ResultsResponse {
	out := &ResultsResponse{
		SubmissionID: submissionID.String(),
		History:      history,
		Results:      make([]ResultResponse, 0, len(results)),
	}
	for _, r := range results {
		resp := ResultResponse{
			ID:              r.ID.String(),
			CredentialType:  string(r.CredentialType),
			CredentialRef:   string(r.CredentialRef),
			Status:          string(r.Status),
			Method:          r.Method,
			Tier:            string(r.Tier),
			MatchConfidence: r.MatchConfidence,
			Discrepancies:   r.Discrepancies,
			VerifiedBy:      r.VerifiedBy,
			CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if resp.Discrepancies == nil {
			resp.Discrepancies = []models.Discrepancy{}
		}
		if r.Supersedes != nil {
			resp.Supersedes = r.Supersedes.String()
		}
		out.Results = append(out.Results, resp)
	}
	return out
}

type AuditEventResponse struct {
	Category  string `json:"category"`
	Action    string `json:"action"`
	Resource  string `json:"resource,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type AuditTrailResponse struct {
	SubmissionID string               `json:"submission_id"`
	Events       []AuditEventResponse `json:"events"`
}

func FromAuditEvents(submissionID id.SubmissionID, events []audit.Event) *AuditTrailResponse {
	out := &AuditTrailResponse{
		SubmissionID: submissionID.String(),
		Events:       make([]AuditEventResponse, 0, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, AuditEventResponse{
			Category:  string(e.Category),
			Action:    e.Action,
			Resource:  e.Resource,
			Decision:  e.Decision,
			Reason:    e.Reason,
			ActorID:   e.ActorID,
			RequestID: e.RequestID,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return out
}
