package models

import (
	"time"

	id "credverify/pkg/domain"
)

// OverallStatus is the single verdict external callers should trust.
type OverallStatus string

const (
	OverallPending           OverallStatus = "pending"
	OverallInProgress        OverallStatus = "in_progress"
	OverallVerified          OverallStatus = "verified"
	OverallPartiallyVerified OverallStatus = "partially_verified"
	OverallRejected          OverallStatus = "rejected"
)

// IsTerminal reports whether only a forced recheck or review action can
// change the status.
func (s OverallStatus) IsTerminal() bool {
	return s == OverallVerified || s == OverallRejected
}

// Summary counts credentials by bucket. Failed includes reviewer rejections.
type Summary struct {
	Total        int `json:"total"`
	Verified     int `json:"verified"`
	Failed       int `json:"failed"`
	Pending      int `json:"pending"`
	ManualReview int `json:"manual_review"`
}

// CredentialStatus is the per-credential line of an overall view.
type CredentialStatus struct {
	Type            CredentialType `json:"type"`
	Ref             CredentialRef  `json:"ref"`
	Status          ResultStatus   `json:"status"`
	Tier            Tier           `json:"tier,omitempty"`
	MatchConfidence float64        `json:"match_confidence"`
}

// OverallVerification is derived from the latest result per credential and
// never persisted on its own.
type OverallVerification struct {
	SubmissionID id.SubmissionID    `json:"submission_id"`
	Status       OverallStatus      `json:"status"`
	Tier         Tier               `json:"tier,omitempty"`
	Summary      Summary            `json:"summary"`
	Credentials  []CredentialStatus `json:"credentials"`
	EvaluatedAt  time.Time          `json:"evaluated_at"`
}

// Aggregate folds the latest results into an overall status.
//
// Rules, in priority order:
//  1. any failed or rejected credential → rejected (fail-closed)
//  2. every credential verified → verified; tier1 when all were confirmed by
//     an authoritative registry without a human, tier2 otherwise
//  3. some verified → partially_verified
//  4. some checked → in_progress
//  5. nothing checked → pending
//
// Credentials without a result count as pending.
func Aggregate(submissionID id.SubmissionID, creds []Credential, latest map[CredentialRef]*VerificationResult, now time.Time) *OverallVerification {
	out := &OverallVerification{
		SubmissionID: submissionID,
		Credentials:  make([]CredentialStatus, 0, len(creds)),
		EvaluatedAt:  now,
	}

	checked := 0
	allTier1 := true
	watermark := TierNone
	for _, c := range creds {
		out.Summary.Total++
		line := CredentialStatus{Type: c.Type, Ref: c.Ref, Status: ResultPending}
		r, ok := latest[c.Ref]
		if !ok || r == nil {
			out.Summary.Pending++
			out.Credentials = append(out.Credentials, line)
			allTier1 = false
			continue
		}
		checked++
		line.Status = r.Status
		line.Tier = r.Tier
		line.MatchConfidence = r.MatchConfidence
		out.Credentials = append(out.Credentials, line)
		watermark = watermark.Max(r.Tier)

		switch {
		case r.Status == ResultVerified:
			out.Summary.Verified++
			if r.Tier != Tier1 || r.IsManuallyDecided() {
				allTier1 = false
			}
		case r.Status.IsNegative():
			out.Summary.Failed++
		case r.Status == ResultManualReview:
			out.Summary.ManualReview++
			watermark = watermark.Max(Tier3)
		default:
			out.Summary.Pending++
		}
	}

	switch {
	case out.Summary.Failed > 0:
		out.Status = OverallRejected
		out.Tier = watermark
	case out.Summary.Total > 0 && out.Summary.Verified == out.Summary.Total:
		out.Status = OverallVerified
		if allTier1 {
			out.Tier = Tier1
		} else {
			out.Tier = Tier2
		}
	case out.Summary.Verified > 0:
		out.Status = OverallPartiallyVerified
		out.Tier = watermark
	case checked > 0:
		out.Status = OverallInProgress
		out.Tier = watermark
	default:
		out.Status = OverallPending
	}
	return out
}
