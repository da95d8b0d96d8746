package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

func TestNewResult(t *testing.T) {
	now := time.Now()
	lic := License{Jurisdiction: "US", SubJurisdiction: "ca", Number: "a 123"}
	cred := Credential{Type: CredentialLicense, Ref: lic.Ref(), License: &lic}

	t.Run("verified result is attributed to the system", func(t *testing.T) {
		r, err := NewResult(id.NewSubmissionID(), cred, ResultVerified, "registry:us-ca", 1, nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, VerifiedBySystem, r.VerifiedBy)
		assert.Equal(t, Tier1, r.Tier)
		assert.Equal(t, CredentialRef("license:US-CA:A123"), r.CredentialRef)
		assert.NotNil(t, r.Discrepancies)
		assert.False(t, r.IsManuallyDecided())
	})

	t.Run("confidence out of range", func(t *testing.T) {
		_, err := NewResult(id.NewSubmissionID(), cred, ResultVerified, "m", 1.2, nil, nil, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("review resolution", func(t *testing.T) {
		r, err := NewResult(id.NewSubmissionID(), cred, ResultManualReview, "m", 0.4, nil, nil, now)
		require.NoError(t, err)
		require.NoError(t, r.CanResolveByReview())
		assert.Empty(t, r.VerifiedBy)

		r.ApplyReviewRejection(id.ReviewerID("alice"), now.Add(time.Hour))
		assert.Equal(t, ResultRejected, r.Status)
		assert.Equal(t, Tier3, r.Tier)
		assert.Equal(t, "manual:alice", r.VerifiedBy)
		assert.True(t, r.IsManuallyDecided())
		assert.Error(t, r.CanResolveByReview())
	})
}

func TestTierMax(t *testing.T) {
	assert.Equal(t, Tier2, Tier1.Max(Tier2))
	assert.Equal(t, Tier3, Tier3.Max(Tier1))
	assert.Equal(t, Tier1, TierNone.Max(Tier1))
}

func TestHasHighSeverity(t *testing.T) {
	assert.False(t, HasHighSeverity(nil))
	assert.True(t, HasHighSeverity([]Discrepancy{{Severity: SeverityLow}, {Severity: SeverityHigh}}))
}
