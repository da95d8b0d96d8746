package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	reviewmodels "credverify/internal/review/models"
	"credverify/internal/verification/comparator"
	"credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	"credverify/internal/verification/ports"
	"credverify/internal/verification/providers"
	"credverify/pkg/requestcontext"
)

// verdict is the status a check settled on before it becomes a result row.
type verdict struct {
	status        models.ResultStatus
	method        string
	confidence    float64
	discrepancies []models.Discrepancy
	raw           []byte
	review        *ports.EnqueueRequest
}

func needsReview(t reviewmodels.ReviewType, p reviewmodels.Priority, reason string) *ports.EnqueueRequest {
	return &ports.EnqueueRequest{Type: t, Priority: p, Reason: reason}
}

// check runs one credential through its client and comparator. It never
// fails: every problem degrades this credential alone to manual review.
func (s *Service) check(ctx context.Context, sub *models.SubmittedCredentialRecord, cred models.Credential) (out checkOutcome) {
	ctx, span := tracer.Start(ctx, "Verification.Service.Check")
	defer span.End()
	span.SetAttributes(
		attribute.String("credential.type", string(cred.Type)),
		attribute.String("credential.ref", string(cred.Ref)),
	)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("credential check panicked: %v", r)
			span.RecordError(err)
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "credential check panicked",
					"submission_id", sub.SubmissionID.String(),
					"credential_ref", string(cred.Ref),
					"error", err,
				)
			}
			out = s.outcome(ctx, sub, cred, verdict{
				status: models.ResultManualReview,
				method: "internal:recovered",
				review: needsReview(reviewmodels.ReviewProviderUnavailable, reviewmodels.PriorityMedium,
					"automatic check aborted unexpectedly"),
			}, ctx.Err() != nil)
		}
	}()

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	var v verdict
	switch cred.Type {
	case models.CredentialLicense:
		v = s.checkLicense(lookupCtx, sub, cred)
	default:
		v = s.checkProfile(lookupCtx, sub, cred)
	}
	// Only the caller's cancellation marks the check as interrupted; the
	// per-lookup timeout is an ordinary provider failure.
	return s.outcome(ctx, sub, cred, v, ctx.Err() != nil)
}

func (s *Service) outcome(ctx context.Context, sub *models.SubmittedCredentialRecord, cred models.Credential, v verdict, interrupted bool) checkOutcome {
	now := requestcontext.Now(ctx)
	result, err := models.NewResult(sub.SubmissionID, cred, v.status, v.method, v.confidence, v.discrepancies, v.raw, now)
	if err != nil {
		// Confidence out of range is a comparator bug; keep the credential
		// in front of a human rather than dropping it.
		result, _ = models.NewResult(sub.SubmissionID, cred, models.ResultManualReview, v.method, 0, v.discrepancies, v.raw, now)
		v.review = needsReview(reviewmodels.ReviewDataDiscrepancy, reviewmodels.PriorityMedium, err.Error())
	}
	if v.review != nil {
		v.review.SubmissionID = sub.SubmissionID
		v.review.CredentialRef = cred.Ref
	}
	return checkOutcome{cred: cred, result: result, review: v.review, interrupted: interrupted}
}

func (s *Service) checkLicense(ctx context.Context, sub *models.SubmittedCredentialRecord, cred models.Credential) verdict {
	lic := cred.License
	start := time.Now()
	res, err := s.registry.Lookup(ctx, lic.JurisdictionKey(), lic.Number)
	if err != nil {
		if errors.Is(err, providers.ErrUnsupportedJurisdiction) {
			s.metrics.ObserveLookup("registry", string(providers.ErrorUnsupported), time.Since(start))
			return verdict{
				status: models.ResultManualReview,
				method: "registry:unsupported",
				review: needsReview(reviewmodels.ReviewUnsupportedJurisdiction, reviewmodels.PriorityMedium,
					fmt.Sprintf("no registry client serves jurisdiction %s", lic.JurisdictionKey())),
			}
		}
		s.metrics.ObserveLookup("registry", string(providers.ErrorInternal), time.Since(start))
		return verdict{
			status: models.ResultManualReview,
			method: "registry:error",
			review: needsReview(reviewmodels.ReviewProviderUnavailable, reviewmodels.PriorityMedium,
				"registry lookup could not be routed"),
		}
	}
	s.metrics.ObserveLookup(res.Source, lookupOutcome(res), time.Since(start))
	method := "registry:" + res.Source

	switch {
	case res.Failed():
		return verdict{
			status: models.ResultManualReview,
			method: method,
			review: needsReview(reviewmodels.ReviewProviderUnavailable, reviewmodels.PriorityMedium,
				fmt.Sprintf("registry %s unavailable (%s)", res.Source, res.Category())),
		}
	case !res.Found:
		return verdict{
			status: models.ResultManualReview,
			method: method,
			raw:    res.Raw,
			review: needsReview(reviewmodels.ReviewNotFound, reviewmodels.PriorityHigh,
				fmt.Sprintf("license %s not found in %s", lic.Number, res.Source)),
		}
	}

	cmp := comparator.License(sub, res.Fields)
	v := verdict{
		method:        method,
		confidence:    cmp.Confidence,
		discrepancies: cmp.Discrepancies,
		raw:           res.Raw,
	}
	switch {
	case cmp.TotalChecks == 0:
		// Presence in an authoritative registry with nothing to contradict.
		v.status = models.ResultVerified
	case cmp.Matches:
		v.status = models.ResultVerified
	default:
		v.status = models.ResultManualReview
		priority := reviewmodels.PriorityMedium
		if models.HasHighSeverity(cmp.Discrepancies) {
			priority = reviewmodels.PriorityHigh
		}
		v.review = needsReview(reviewmodels.ReviewDataDiscrepancy, priority,
			fmt.Sprintf("registry record differs from submission (confidence %.2f, %d discrepancies)", cmp.Confidence, len(cmp.Discrepancies)))
	}
	return v
}

func (s *Service) checkProfile(ctx context.Context, sub *models.SubmittedCredentialRecord, cred models.Credential) verdict {
	start := time.Now()
	res, err := s.profiles.LookupProfile(ctx, cred.Type, cred.ProfileURL)
	if err != nil {
		s.metrics.ObserveLookup("profile", string(providers.ErrorInternal), time.Since(start))
		return verdict{
			status: models.ResultManualReview,
			method: "profile:error",
			review: needsReview(reviewmodels.ReviewProviderUnavailable, reviewmodels.PriorityLow,
				"no profile provider serves this reference"),
		}
	}
	s.metrics.ObserveLookup(res.Source, lookupOutcome(res), time.Since(start))
	method := "profile:" + res.Source

	switch {
	case !res.Valid:
		return verdict{
			status: models.ResultFailed,
			method: method,
			discrepancies: []models.Discrepancy{{
				Field:          comparator.FieldProfileURL,
				SubmittedValue: cred.ProfileURL,
				Severity:       models.SeverityHigh,
			}},
		}
	case !res.Configured:
		return verdict{
			status:     models.ResultManualReview,
			method:     method,
			confidence: policy.UnconfiguredConfidenceCap,
			review: needsReview(reviewmodels.ReviewProfileUnconfirmed, reviewmodels.PriorityLow,
				fmt.Sprintf("%s reference is well formed but no enrichment provider is configured", res.Source)),
		}
	case res.Failed():
		return verdict{
			status: models.ResultManualReview,
			method: method,
			review: needsReview(reviewmodels.ReviewProviderUnavailable, reviewmodels.PriorityLow,
				fmt.Sprintf("profile provider %s unavailable (%s)", res.Source, res.Category())),
		}
	case !res.Found:
		return verdict{
			status: models.ResultManualReview,
			method: method,
			review: needsReview(reviewmodels.ReviewProfileUnconfirmed, reviewmodels.PriorityLow,
				fmt.Sprintf("%s returned no data for the reference", res.Source)),
		}
	}

	compare := comparator.For(cred.Type)
	if compare == nil {
		return verdict{
			status: models.ResultManualReview,
			method: method,
			review: needsReview(reviewmodels.ReviewProfileUnconfirmed, reviewmodels.PriorityLow,
				fmt.Sprintf("no comparator for credential type %s", cred.Type)),
		}
	}
	cmp := compare(sub, res.Fields)
	v := verdict{
		method:        method,
		confidence:    cmp.Confidence,
		discrepancies: cmp.Discrepancies,
		raw:           res.Raw,
	}
	switch {
	case cmp.TotalChecks == 0:
		v.status = models.ResultManualReview
		v.review = needsReview(reviewmodels.ReviewProfileUnconfirmed, reviewmodels.PriorityLow,
			"profile carries nothing comparable with the submission")
	case cmp.Matches:
		v.status = models.ResultVerified
	default:
		v.status = models.ResultManualReview
		v.review = needsReview(reviewmodels.ReviewDataDiscrepancy, reviewmodels.PriorityLow,
			fmt.Sprintf("profile differs from submission (confidence %.2f, %d discrepancies)", cmp.Confidence, len(cmp.Discrepancies)))
	}
	return v
}

func lookupOutcome(res *providers.LookupResult) string {
	switch {
	case res.Failed():
		return string(res.Category())
	case res.Found:
		return "found"
	default:
		return "not_found"
	}
}
