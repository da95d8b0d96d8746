package models

import (
	"fmt"
	"strings"

	dErrors "credverify/pkg/domain-errors"
)

// CredentialType names a kind of claim that has its own lookup and comparator.
type CredentialType string

const (
	CredentialLicense             CredentialType = "license"
	CredentialProfessionalProfile CredentialType = "professional_profile"
	CredentialCitationProfile     CredentialType = "citation_profile"
)

// AllCredentialTypes lists every supported credential type in dispatch order.
var AllCredentialTypes = []CredentialType{
	CredentialLicense,
	CredentialProfessionalProfile,
	CredentialCitationProfile,
}

// ParseCredentialType validates a credential type received from a caller.
func ParseCredentialType(s string) (CredentialType, error) {
	t := CredentialType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCredentialTypes {
		if t == known {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported credential type %q", s))
}

// Tier reports whether this credential type is checked against an
// authoritative registry (tier 1) or a semi-automated profile source (tier 2).
func (t CredentialType) Tier() Tier {
	if t == CredentialLicense {
		return Tier1
	}
	return Tier2
}

// CredentialRef is the stable key of one claim within a submission, e.g.
// "license:US-CA:A123456" or "profile:citation_index". All skip/recheck
// decisions and the latest-result view are keyed by it.
type CredentialRef string

const (
	RefProfessionalProfile CredentialRef = "profile:professional_network"
	RefCitationProfile     CredentialRef = "profile:citation_index"
)

// Credential is one claim extracted from a submission, ready for dispatch.
type Credential struct {
	Type       CredentialType
	Ref        CredentialRef
	License    *License
	ProfileURL string
}
