// Package providers defines the normalized contract between external
// credential sources and the comparators. Each client maps its own payload
// into NormalizedFields at the boundary; the raw body only travels as an
// opaque audit blob.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// NormalizedFields is the jurisdiction-agnostic shape every client produces.
// Zero values mean the source did not report the field.
type NormalizedFields struct {
	LegalName       string   `json:"legal_name,omitempty"`
	Institution     string   `json:"institution,omitempty"`
	ProgramOrDegree string   `json:"program_or_degree,omitempty"`
	GraduationYear  int      `json:"graduation_year,omitempty"`
	LicenseStatus   string   `json:"license_status,omitempty"`
	ExpirationDate  string   `json:"expiration_date,omitempty"`
	Affiliations    []string `json:"affiliations,omitempty"`
	HasPhoto        bool     `json:"has_photo,omitempty"`
	CitationCount   int      `json:"citation_count,omitempty"`
}

// LookupResult is the outcome of one external lookup. A failed lookup is
// Found=false with Err set; it is never reported as a Go error.
type LookupResult struct {
	Source string `json:"source"`
	Found  bool   `json:"found"`
	// Valid is false only when the submitted reference itself is malformed.
	Valid bool `json:"valid"`
	// Configured is false when the enrichment provider has no credentials.
	Configured bool              `json:"configured"`
	Fields     NormalizedFields  `json:"fields"`
	Raw        json.RawMessage   `json:"-"`
	Err        *ProviderError    `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// Failed reports whether the lookup ended on an infrastructure failure.
func (r *LookupResult) Failed() bool {
	return r.Err != nil
}

// Category returns the failure category, or "" for a clean outcome.
func (r *LookupResult) Category() ErrorCategory {
	if r.Err == nil {
		return ""
	}
	return r.Err.Category
}

// RegistryClient is one authoritative license source (Tier 1).
type RegistryClient interface {
	ID() string
	// Jurisdictions lists the routing keys served, e.g. "MX" or "US-CA".
	Jurisdictions() []string
	Lookup(ctx context.Context, jurisdiction, licenseNumber string) *LookupResult
}

// ProfileClient is one semi-automated profile source (Tier 2).
type ProfileClient interface {
	ID() string
	// ValidateURL checks the reference shape without any network call.
	ValidateURL(raw string) error
	Lookup(ctx context.Context, profileURL string) *LookupResult
}

// Failure builds a not-found result carrying an error marker.
func Failure(source string, category ErrorCategory, message string, underlying error, now time.Time) *LookupResult {
	return &LookupResult{
		Source:     source,
		Valid:      true,
		Configured: true,
		Err:        NewProviderError(category, source, message, underlying),
		CheckedAt:  now,
	}
}
