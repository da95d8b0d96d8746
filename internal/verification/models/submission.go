package models

import (
	"strings"

	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

// SubmittedCredentialRecord is the applicant-asserted set of facts. It is
// owned by onboarding and read-only here.
type SubmittedCredentialRecord struct {
	SubmissionID     id.SubmissionID `json:"submission_id"`
	FullName         string          `json:"full_name"`
	Licenses         []License       `json:"licenses"`
	PrimarySpecialty string          `json:"primary_specialty,omitempty"`
	Education        []Education     `json:"education,omitempty"`
	Affiliations     []string        `json:"affiliations,omitempty"`
	Profiles         ProfileRefs     `json:"profiles"`
}

// License is one claimed professional license.
type License struct {
	Jurisdiction    string `json:"jurisdiction"`
	SubJurisdiction string `json:"sub_jurisdiction,omitempty"`
	LicenseType     string `json:"license_type,omitempty"`
	Number          string `json:"number"`
}

// JurisdictionKey is the routing key for registry clients: "MX", "US-CA".
func (l License) JurisdictionKey() string {
	j := strings.ToUpper(strings.TrimSpace(l.Jurisdiction))
	sub := strings.ToUpper(strings.TrimSpace(l.SubJurisdiction))
	if sub == "" {
		return j
	}
	return j + "-" + sub
}

// Ref returns the credential reference of this license.
func (l License) Ref() CredentialRef {
	number := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(l.Number), " ", ""))
	return CredentialRef("license:" + l.JurisdictionKey() + ":" + number)
}

// Education is one claimed degree.
type Education struct {
	School         string `json:"school"`
	Country        string `json:"country,omitempty"`
	Degree         string `json:"degree,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

// ProfileRefs holds optional external profile URLs.
type ProfileRefs struct {
	ProfessionalNetworkURL string `json:"professional_network_url,omitempty"`
	CitationIndexURL       string `json:"citation_index_url,omitempty"`
}

// PrimaryEducation returns the first listed degree, if any.
func (r *SubmittedCredentialRecord) PrimaryEducation() (Education, bool) {
	if len(r.Education) == 0 {
		return Education{}, false
	}
	return r.Education[0], true
}

// Validate enforces the fields every comparator depends on.
func (r *SubmittedCredentialRecord) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return dErrors.New(dErrors.CodeValidation, "submission is missing full name")
	}
	for _, l := range r.Licenses {
		if strings.TrimSpace(l.Jurisdiction) == "" {
			return dErrors.New(dErrors.CodeValidation, "license jurisdiction is required")
		}
		if strings.TrimSpace(l.Number) == "" {
			return dErrors.New(dErrors.CodeValidation, "license number is required")
		}
	}
	return nil
}

// Credentials expands the record into dispatchable claims. Duplicate license
// references collapse to one claim.
func (r *SubmittedCredentialRecord) Credentials() []Credential {
	creds := make([]Credential, 0, len(r.Licenses)+2)
	seen := make(map[CredentialRef]struct{}, len(r.Licenses))
	for i := range r.Licenses {
		lic := r.Licenses[i]
		ref := lic.Ref()
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		creds = append(creds, Credential{Type: CredentialLicense, Ref: ref, License: &lic})
	}
	if u := strings.TrimSpace(r.Profiles.ProfessionalNetworkURL); u != "" {
		creds = append(creds, Credential{Type: CredentialProfessionalProfile, Ref: RefProfessionalProfile, ProfileURL: u})
	}
	if u := strings.TrimSpace(r.Profiles.CitationIndexURL); u != "" {
		creds = append(creds, Credential{Type: CredentialCitationProfile, Ref: RefCitationProfile, ProfileURL: u})
	}
	return creds
}
