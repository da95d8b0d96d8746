package profile

import (
	"time"

	"credverify/internal/verification/providers"
)

const (
	SourceProfessionalNetwork = "professional-network"
	SourceCitationIndex       = "citation-index"
)

// Credentials of an enrichment provider, taken from configuration.
type Credentials struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewProfessionalNetwork builds the professional network client.
func NewProfessionalNetwork(creds Credentials, opts ...Option) (*Client, error) {
	return New(Config{
		ID:      SourceProfessionalNetwork,
		BaseURL: creds.BaseURL,
		APIKey:  creds.APIKey,
		Timeout: creds.Timeout,
		Fields: providers.FieldMap{
			providers.FieldLegalName:       {"full_name"},
			providers.FieldInstitution:     {"education.0.school"},
			providers.FieldProgramOrDegree: {"education.0.degree_name"},
			providers.FieldGraduationYear:  {"education.0.ends_at.year"},
			providers.FieldAffiliations:    {"current_companies"},
			providers.FieldPhoto:           {"profile_pic_url"},
		},
		Schema:   `{"type":"object","properties":{"full_name":{"type":["string","null"]},"education":{"type":["array","null"]}}}`,
		Validate: ValidateProfessionalNetworkURL,
	}, opts...)
}

// NewCitationIndex builds the citation index client.
func NewCitationIndex(creds Credentials, opts ...Option) (*Client, error) {
	return New(Config{
		ID:         SourceCitationIndex,
		BaseURL:    creds.BaseURL,
		APIKey:     creds.APIKey,
		Timeout:    creds.Timeout,
		RecordPath: "author",
		Fields: providers.FieldMap{
			providers.FieldLegalName:     {"name"},
			providers.FieldAffiliations:  {"affiliations"},
			providers.FieldPhoto:         {"thumbnail"},
			providers.FieldCitationCount: {"cited_by"},
		},
		Schema:   `{"type":"object","properties":{"author":{"type":"object"}}}`,
		Validate: ValidateCitationIndexURL,
	}, opts...)
}
