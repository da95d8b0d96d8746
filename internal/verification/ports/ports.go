// Package ports declares what the verification orchestrator needs from the
// outside world. Adapters live next to the concrete stores and clients.
package ports

import (
	"context"

	"credverify/internal/notify"
	"credverify/internal/verification/models"
	"credverify/internal/verification/providers"
	reviewmodels "credverify/internal/review/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/audit"
)

// SubmissionSource reads applicant-asserted records owned by onboarding.
type SubmissionSource interface {
	Find(ctx context.Context, submissionID id.SubmissionID) (*models.SubmittedCredentialRecord, error)
}

// ResultStore persists verification results. Rows are append-only per
// credential reference; aggregation only ever reads the latest row.
type ResultStore interface {
	Save(ctx context.Context, result *models.VerificationResult) error
	Update(ctx context.Context, result *models.VerificationResult) error
	FindByID(ctx context.Context, resultID id.ResultID) (*models.VerificationResult, error)
	ListLatestBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error)
	ListHistory(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error)
}

// RegistryLookup routes a license to its Tier 1 client. The only error is
// providers.ErrUnsupportedJurisdiction.
type RegistryLookup interface {
	Lookup(ctx context.Context, jurisdiction, licenseNumber string) (*providers.LookupResult, error)
}

// ProfileLookup routes a profile reference to its Tier 2 client.
type ProfileLookup interface {
	LookupProfile(ctx context.Context, credentialType models.CredentialType, profileURL string) (*providers.LookupResult, error)
}

// EnqueueRequest describes a credential that needs a human decision.
type EnqueueRequest struct {
	SubmissionID  id.SubmissionID
	ResultID      id.ResultID
	CredentialRef models.CredentialRef
	Type          reviewmodels.ReviewType
	Priority      reviewmodels.Priority
	Reason        string
}

// ReviewQueue is the manual review queue as seen by the orchestrator.
type ReviewQueue interface {
	HasOpenItem(ctx context.Context, resultID id.ResultID) (bool, error)
	Enqueue(ctx context.Context, req EnqueueRequest) error
	// Supersede hands an open item of a superseded result over to its
	// replacement: re-linked when req is non-nil, otherwise closed with a
	// status mirroring next. It reports whether an open item existed.
	Supersede(ctx context.Context, previous id.ResultID, next *models.VerificationResult, req *EnqueueRequest) (bool, error)
}

// StatusCache holds recently computed overall statuses.
type StatusCache interface {
	Get(ctx context.Context, submissionID id.SubmissionID) (*models.OverallVerification, bool, error)
	Set(ctx context.Context, status *models.OverallVerification) error
	Invalidate(ctx context.Context, submissionID id.SubmissionID) error
}

// EventPublisher emits fire-and-forget notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event notify.Event)
}

// AuditPort defines the interface for emitting audit events.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
