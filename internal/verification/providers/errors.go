package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for external sources.
type ErrorCategory string

const (
	// ErrorTimeout indicates the source took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the source returned a payload that failed
	// decoding or schema validation
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the source is unavailable
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorContractMismatch indicates the response no longer has the
	// configured record shape
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	ErrorNotFound    ErrorCategory = "not_found"
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorUnsupported indicates no client serves the jurisdiction
	ErrorUnsupported ErrorCategory = "unsupported"

	// ErrorNotConfigured indicates the enrichment provider has no credentials
	ErrorNotConfigured ErrorCategory = "not_configured"

	// ErrorInvalidReference indicates the profile URL is malformed
	ErrorInvalidReference ErrorCategory = "invalid_reference"

	ErrorInternal ErrorCategory = "internal"
)

// ProviderError is the failure marker attached to a LookupResult. Clients
// never return it as a Go error to the orchestrator.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.ProviderID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a normalized provider error.
func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying against another endpoint.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

var (
	ErrUnsupportedJurisdiction = errors.New("no registry client for jurisdiction")
	ErrDuplicateJurisdiction   = errors.New("jurisdiction already registered")
)
