package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ClassifyStatus maps an HTTP status to a failure category. 200 and 404 are
// clean outcomes and yield nil.
func ClassifyStatus(providerID string, status int) *ProviderError {
	switch {
	case status == http.StatusOK, status == http.StatusNotFound:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewProviderError(ErrorAuthentication, providerID, fmt.Sprintf("status %d", status), nil)
	case status == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, providerID, "rate limited", nil)
	case status >= 500:
		return NewProviderError(ErrorProviderOutage, providerID, fmt.Sprintf("status %d", status), nil)
	default:
		return NewProviderError(ErrorBadData, providerID, fmt.Sprintf("unexpected status %d", status), nil)
	}
}

// ClassifyTransport maps a request error to timeout or outage.
func ClassifyTransport(providerID string, err error) *ProviderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewProviderError(ErrorTimeout, providerID, "request timed out", err)
	}
	return NewProviderError(ErrorProviderOutage, providerID, "request failed", err)
}
