package models

import (
	"encoding/json"
	"time"

	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

// ResultStatus is the per-credential verdict.
type ResultStatus string

const (
	ResultPending      ResultStatus = "pending"
	ResultVerified     ResultStatus = "verified"
	ResultFailed       ResultStatus = "failed"
	ResultManualReview ResultStatus = "manual_review"
	ResultRejected     ResultStatus = "rejected"
)

// IsNegative reports whether the status counts against the submission.
func (s ResultStatus) IsNegative() bool {
	return s == ResultFailed || s == ResultRejected
}

// Tier is the escalation level that produced a status.
type Tier string

const (
	TierNone Tier = ""
	Tier1    Tier = "tier1"
	Tier2    Tier = "tier2"
	Tier3    Tier = "tier3"
)

func (t Tier) rank() int {
	switch t {
	case Tier1:
		return 1
	case Tier2:
		return 2
	case Tier3:
		return 3
	default:
		return 0
	}
}

// Max returns the higher of two tiers.
func (t Tier) Max(other Tier) Tier {
	if other.rank() > t.rank() {
		return other
	}
	return t
}

// Severity grades a discrepancy.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Discrepancy is a mismatch between a submitted and an observed fact.
type Discrepancy struct {
	Field          string   `json:"field"`
	SubmittedValue string   `json:"submitted_value"`
	FoundValue     string   `json:"found_value"`
	Severity       Severity `json:"severity"`
}

// HasHighSeverity reports whether any discrepancy is identity-level.
func HasHighSeverity(ds []Discrepancy) bool {
	for _, d := range ds {
		if d.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

const (
	VerifiedBySystem = "system"
	manualPrefix     = "manual:"
)

// ManualVerifier formats the verifiedBy marker of a reviewer decision.
func ManualVerifier(reviewer id.ReviewerID) string {
	return manualPrefix + reviewer.String()
}

// VerificationResult is one check of one credential reference. Rows are
// append-only across rechecks; review resolution updates the current row.
type VerificationResult struct {
	ID              id.ResultID     `json:"id"`
	SubmissionID    id.SubmissionID `json:"submission_id"`
	CredentialType  CredentialType  `json:"credential_type"`
	CredentialRef   CredentialRef   `json:"credential_ref"`
	Status          ResultStatus    `json:"status"`
	Method          string          `json:"method"`
	Tier            Tier            `json:"tier"`
	MatchConfidence float64         `json:"match_confidence"`
	Discrepancies   []Discrepancy   `json:"discrepancies"`
	RawPayload      json.RawMessage `json:"raw_payload,omitempty"`
	VerifiedBy      string          `json:"verified_by,omitempty"`
	Supersedes      *id.ResultID    `json:"supersedes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewResult builds a result produced by an automatic check.
func NewResult(submissionID id.SubmissionID, cred Credential, status ResultStatus, method string, confidence float64, discrepancies []Discrepancy, raw json.RawMessage, now time.Time) (*VerificationResult, error) {
	if confidence < 0 || confidence > 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "match confidence must be within [0,1]")
	}
	if cred.Ref == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential reference is required")
	}
	if discrepancies == nil {
		discrepancies = []Discrepancy{}
	}
	r := &VerificationResult{
		ID:              id.NewResultID(),
		SubmissionID:    submissionID,
		CredentialType:  cred.Type,
		CredentialRef:   cred.Ref,
		Status:          status,
		Method:          method,
		Tier:            cred.Type.Tier(),
		MatchConfidence: confidence,
		Discrepancies:   discrepancies,
		RawPayload:      raw,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == ResultVerified {
		r.VerifiedBy = VerifiedBySystem
	}
	return r, nil
}

// IsAwaitingReview reports whether a human decision is outstanding.
func (r *VerificationResult) IsAwaitingReview() bool {
	return r.Status == ResultManualReview
}

// CanResolveByReview checks the result is still waiting for a reviewer.
func (r *VerificationResult) CanResolveByReview() error {
	if r.Status != ResultManualReview {
		return dErrors.New(dErrors.CodeInvariantViolation, "result is not awaiting manual review")
	}
	return nil
}

// ApplyReviewApproval marks the result verified by a reviewer.
func (r *VerificationResult) ApplyReviewApproval(reviewer id.ReviewerID, now time.Time) {
	r.Status = ResultVerified
	r.Tier = Tier3
	r.VerifiedBy = ManualVerifier(reviewer)
	r.UpdatedAt = now
}

// ApplyReviewRejection marks the result rejected by a reviewer.
func (r *VerificationResult) ApplyReviewRejection(reviewer id.ReviewerID, now time.Time) {
	r.Status = ResultRejected
	r.Tier = Tier3
	r.VerifiedBy = ManualVerifier(reviewer)
	r.UpdatedAt = now
}

// IsManuallyDecided reports whether a reviewer produced the current status.
func (r *VerificationResult) IsManuallyDecided() bool {
	return len(r.VerifiedBy) > len(manualPrefix) && r.VerifiedBy[:len(manualPrefix)] == manualPrefix
}
