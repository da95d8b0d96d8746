package handler

import (
	"credverify/internal/verification/models"
	"credverify/internal/verification/service"
	"credverify/pkg/platform/strings"
)

// VerifyRequest is the optional body of a verify call.
type VerifyRequest struct {
	ForceRecheck  bool     `json:"force_recheck"`
	SpecificTypes []string `json:"specific_types,omitempty"`

	parsed []models.CredentialType
}

// Validate parses the requested credential types. Repeated types collapse.
func (r *VerifyRequest) Validate() error {
	r.parsed = r.parsed[:0]
	for _, raw := range strings.DedupeAndTrimLower(r.SpecificTypes) {
		t, err := models.ParseCredentialType(raw)
		if err != nil {
			return err
		}
		r.parsed = append(r.parsed, t)
	}
	return nil
}

// Options converts the request into orchestrator options.
func (r *VerifyRequest) Options() service.VerifyOptions {
	return service.VerifyOptions{
		ForceRecheck:  r.ForceRecheck,
		SpecificTypes: r.parsed,
	}
}
