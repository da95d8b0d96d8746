package profile

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidProfileURL marks a reference whose shape does not match its source.
var ErrInvalidProfileURL = errors.New("invalid profile url")

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9\-_%]{3,100}$`)

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfileURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidProfileURL)
	}
	return u, nil
}

// ValidateProfessionalNetworkURL accepts https://[www.|xx.]linkedin.com/in/<slug>.
func ValidateProfessionalNetworkURL(raw string) error {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return fmt.Errorf("%w: unexpected host %q", ErrInvalidProfileURL, host)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "in" || !slugPattern.MatchString(parts[1]) {
		return fmt.Errorf("%w: path must be /in/<profile>", ErrInvalidProfileURL)
	}
	return nil
}

// ValidateCitationIndexURL accepts https://scholar.google.<tld>/citations?user=<id>.
func ValidateCitationIndexURL(raw string) error {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Hostname())
	if !strings.HasPrefix(host, "scholar.google.") {
		return fmt.Errorf("%w: unexpected host %q", ErrInvalidProfileURL, host)
	}
	if strings.TrimRight(u.Path, "/") != "/citations" {
		return fmt.Errorf("%w: path must be /citations", ErrInvalidProfileURL)
	}
	if user := u.Query().Get("user"); !slugPattern.MatchString(user) {
		return fmt.Errorf("%w: missing user parameter", ErrInvalidProfileURL)
	}
	return nil
}
