package profile

import (
	"context"
	"fmt"

	"credverify/internal/verification/models"
	"credverify/internal/verification/providers"
)

// Set routes a profile credential to the client serving its type.
type Set struct {
	clients map[models.CredentialType]providers.ProfileClient
}

func NewSet(professional, citation providers.ProfileClient) *Set {
	s := &Set{clients: make(map[models.CredentialType]providers.ProfileClient, 2)}
	if professional != nil {
		s.clients[models.CredentialProfessionalProfile] = professional
	}
	if citation != nil {
		s.clients[models.CredentialCitationProfile] = citation
	}
	return s
}

func (s *Set) LookupProfile(ctx context.Context, credentialType models.CredentialType, profileURL string) (*providers.LookupResult, error) {
	c, ok := s.clients[credentialType]
	if !ok {
		return nil, fmt.Errorf("no profile client for %s", credentialType)
	}
	return c.Lookup(ctx, profileURL), nil
}
