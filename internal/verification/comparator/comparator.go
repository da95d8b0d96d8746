package comparator

import (
	"strings"

	"credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	"credverify/internal/verification/providers"
)

// Func compares one credential of a submission with external fields.
type Func func(sub *models.SubmittedCredentialRecord, found providers.NormalizedFields) Outcome

// For returns the comparator of a credential type.
func For(t models.CredentialType) Func {
	switch t {
	case models.CredentialLicense:
		return License
	case models.CredentialProfessionalProfile:
		return ProfessionalProfile
	case models.CredentialCitationProfile:
		return CitationProfile
	default:
		return nil
	}
}

var inactiveLicenseStatuses = map[string]struct{}{
	"inactive":  {},
	"revoked":   {},
	"suspended": {},
	"expired":   {},
	"cancelled": {},
	"canceled":  {},
	"lapsed":    {},
	"deceased":  {},
}

// License compares a registry record with the applicant's identity and
// primary education. A non-active license is a high severity discrepancy.
func License(sub *models.SubmittedCredentialRecord, found providers.NormalizedFields) Outcome {
	var s scorecard
	s.name(sub.FullName, found.LegalName)
	if edu, ok := sub.PrimaryEducation(); ok {
		s.text(FieldInstitution, edu.School, found.Institution)
		s.text(FieldProgramOrDegree, edu.Degree, found.ProgramOrDegree)
		s.year(edu.GraduationYear, found.GraduationYear)
	}
	if status := strings.ToLower(strings.TrimSpace(found.LicenseStatus)); status != "" {
		s.checks++
		if _, bad := inactiveLicenseStatuses[status]; bad {
			s.add(FieldLicenseStatus, "active", status, models.SeverityHigh)
		} else {
			s.score++
		}
	}
	return s.outcome(policy.LicenseMatchThreshold)
}

// ProfessionalProfile compares a professional network profile.
func ProfessionalProfile(sub *models.SubmittedCredentialRecord, found providers.NormalizedFields) Outcome {
	var s scorecard
	s.name(sub.FullName, found.LegalName)
	if edu, ok := sub.PrimaryEducation(); ok {
		s.text(FieldInstitution, edu.School, found.Institution)
		s.text(FieldProgramOrDegree, edu.Degree, found.ProgramOrDegree)
		s.year(edu.GraduationYear, found.GraduationYear)
	}
	s.affiliation(sub.Affiliations, found.Affiliations)
	s.corroborate(found.HasPhoto)
	return s.outcome(policy.ProfileMatchThreshold)
}

// CitationProfile compares a citation index profile. Citation metrics and a
// photo only corroborate an identity match.
func CitationProfile(sub *models.SubmittedCredentialRecord, found providers.NormalizedFields) Outcome {
	var s scorecard
	s.name(sub.FullName, found.LegalName)
	claimed := append([]string(nil), sub.Affiliations...)
	for _, edu := range sub.Education {
		if edu.School != "" {
			claimed = append(claimed, edu.School)
		}
	}
	s.affiliation(claimed, found.Affiliations)
	s.corroborate(found.CitationCount > 0)
	s.corroborate(found.HasPhoto)
	return s.outcome(policy.ProfileMatchThreshold)
}
