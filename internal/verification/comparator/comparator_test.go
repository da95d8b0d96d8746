package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	"credverify/internal/verification/providers"
)

func submission(name string) *models.SubmittedCredentialRecord {
	return &models.SubmittedCredentialRecord{
		FullName:     name,
		Licenses:     []models.License{{Jurisdiction: "MX", Number: "1234567"}},
		Education:    []models.Education{{School: "UNAM", Degree: "Medico Cirujano", GraduationYear: 2012}},
		Affiliations: []string{"Hospital General de Mexico"},
	}
}

func TestLicenseIdentityMismatchIsFailClosed(t *testing.T) {
	out := License(submission("Maria Lopez"), providers.NormalizedFields{
		LegalName:       "John Smith",
		Institution:     "UNAM",
		ProgramOrDegree: "Medico Cirujano",
		GraduationYear:  2012,
		LicenseStatus:   "active",
	})
	assert.False(t, out.Matches)
	require.True(t, models.HasHighSeverity(out.Discrepancies))
	assert.Equal(t, FieldFullName, out.Discrepancies[0].Field)
	// every other field matched, so the aggregate alone would have passed
	assert.GreaterOrEqual(t, out.Confidence, policy.LicenseMatchThreshold)
}

func TestLicenseScenarioExtraFamilyName(t *testing.T) {
	sub := &models.SubmittedCredentialRecord{
		FullName: "Ana Ruiz",
		Licenses: []models.License{{Jurisdiction: "MX", Number: "1234567"}},
	}
	out := License(sub, providers.NormalizedFields{LegalName: "Ana Ruiz Garcia"})

	assert.Equal(t, 1.0, out.TotalChecks)
	assert.InDelta(t, policy.PartialCredit, out.Confidence, 1e-9)
	assert.False(t, out.Matches)
	require.Len(t, out.Discrepancies, 1)
	assert.Equal(t, FieldFullName, out.Discrepancies[0].Field)
	assert.NotEqual(t, models.SeverityHigh, out.Discrepancies[0].Severity)
}

func TestLicenseModerateNameWithCorroboratingFieldsMatches(t *testing.T) {
	sub := submission("Ana Ruiz")
	out := License(sub, providers.NormalizedFields{
		LegalName:       "Ana Ruiz Garcia",
		Institution:     "UNAM",
		ProgramOrDegree: "MEDICO CIRUJANO",
		GraduationYear:  2013,
	})
	assert.True(t, out.Matches)
	assert.InDelta(t, 3.5/4, out.Confidence, 1e-9)
	assert.False(t, models.HasHighSeverity(out.Discrepancies))
}

func TestLicenseNoComparableFields(t *testing.T) {
	out := License(&models.SubmittedCredentialRecord{FullName: "Ana Ruiz"}, providers.NormalizedFields{})
	assert.Zero(t, out.TotalChecks)
	assert.Zero(t, out.Confidence)
	assert.False(t, out.Matches)
	assert.NotNil(t, out.Discrepancies)
}

func TestLicenseInactiveStatus(t *testing.T) {
	out := License(submission("Ana Ruiz"), providers.NormalizedFields{LegalName: "Ana Ruiz", LicenseStatus: "Revoked"})
	assert.False(t, out.Matches)
	assert.True(t, models.HasHighSeverity(out.Discrepancies))
}

func TestYearTolerance(t *testing.T) {
	tests := []struct {
		found    int
		severity models.Severity
		none     bool
	}{
		{found: 2013, none: true},
		{found: 2015, severity: models.SeverityLow},
		{found: 2000, severity: models.SeverityMedium},
	}
	for _, tt := range tests {
		var s scorecard
		s.year(2012, tt.found)
		if tt.none {
			assert.Empty(t, s.discrepancies)
			continue
		}
		require.Len(t, s.discrepancies, 1)
		assert.Equal(t, tt.severity, s.discrepancies[0].Severity)
	}
}

func TestProfileCorroborationNeverSubstitutesIdentity(t *testing.T) {
	out := CitationProfile(&models.SubmittedCredentialRecord{FullName: "Ana Ruiz"}, providers.NormalizedFields{
		HasPhoto:      true,
		CitationCount: 120,
	})
	assert.Zero(t, out.TotalChecks)
	assert.False(t, out.Matches)
}

func TestCitationProfileMatches(t *testing.T) {
	out := CitationProfile(submission("Ana Ruiz Garcia"), providers.NormalizedFields{
		LegalName:     "Ana Ruiz-Garcia",
		Affiliations:  []string{"Universidad Nacional Autonoma de Mexico", "UNAM"},
		CitationCount: 12,
	})
	assert.True(t, out.Matches)
	assert.LessOrEqual(t, out.Confidence, 1.0)
}

func TestProfessionalProfileAffiliationVarianceIsLow(t *testing.T) {
	out := ProfessionalProfile(submission("Ana Ruiz"), providers.NormalizedFields{
		LegalName:    "Ana Ruiz",
		Affiliations: []string{"Acme Clinics"},
		HasPhoto:     true,
	})
	require.Len(t, out.Discrepancies, 1)
	assert.Equal(t, FieldAffiliation, out.Discrepancies[0].Field)
	assert.Equal(t, models.SeverityLow, out.Discrepancies[0].Severity)
	assert.InDelta(t, 1.5/2.5, out.Confidence, 1e-9)
	assert.True(t, out.Matches)
}

func TestConfidenceBounds(t *testing.T) {
	names := []string{"", "Ana Ruiz", "John Smith", "Ana", "Ruiz Ana Garcia"}
	for _, a := range names {
		for _, b := range names {
			for _, cmp := range []Func{License, ProfessionalProfile, CitationProfile} {
				out := cmp(submission(a), providers.NormalizedFields{
					LegalName:     b,
					Institution:   b,
					HasPhoto:      true,
					CitationCount: 3,
					Affiliations:  []string{b},
				})
				assert.GreaterOrEqual(t, out.Confidence, 0.0)
				assert.LessOrEqual(t, out.Confidence, 1.0)
				if out.TotalChecks == 0 {
					assert.Zero(t, out.Confidence)
				}
			}
		}
	}
}

func TestFor(t *testing.T) {
	assert.NotNil(t, For(models.CredentialLicense))
	assert.NotNil(t, For(models.CredentialProfessionalProfile))
	assert.NotNil(t, For(models.CredentialCitationProfile))
	assert.Nil(t, For("passport"))
}
