// Package contract checks the LookupResult invariants every registry and
// profile client must honour. Client test files run a suite against their
// own httptest fixtures.
package contract

import (
	"context"
	"testing"

	"credverify/internal/verification/providers"
)

// RegistryCase is one lookup against a registry client.
type RegistryCase struct {
	Name          string
	Client        providers.RegistryClient
	Jurisdiction  string
	LicenseNumber string
	ExpectFound   bool
	// ExpectCategory is the failure marker expected, "" for a clean outcome.
	ExpectCategory providers.ErrorCategory
	ValidateFunc   func(res *providers.LookupResult) error
}

// ProfileCase is one lookup against a profile client.
type ProfileCase struct {
	Name           string
	Client         providers.ProfileClient
	URL            string
	ExpectFound    bool
	ExpectValid    bool
	ExpectCategory providers.ErrorCategory
	ValidateFunc   func(res *providers.LookupResult) error
}

// Suite groups contract cases for one provider.
type Suite struct {
	ProviderID string
	Registry   []RegistryCase
	Profile    []ProfileCase
}

// Run executes all contract cases.
func (s *Suite) Run(t *testing.T) {
	t.Helper()
	for _, tc := range s.Registry {
		t.Run(tc.Name, func(t *testing.T) {
			res := tc.Client.Lookup(context.Background(), tc.Jurisdiction, tc.LicenseNumber)
			s.checkCommon(t, res)
			if !res.Valid {
				t.Error("registry lookups must always report a valid reference")
			}
			if res.Found != tc.ExpectFound {
				t.Errorf("expected found=%v, got %v", tc.ExpectFound, res.Found)
			}
			if res.Category() != tc.ExpectCategory {
				t.Errorf("expected category %q, got %q", tc.ExpectCategory, res.Category())
			}
			if tc.ValidateFunc != nil {
				if err := tc.ValidateFunc(res); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
	for _, tc := range s.Profile {
		t.Run(tc.Name, func(t *testing.T) {
			res := tc.Client.Lookup(context.Background(), tc.URL)
			s.checkCommon(t, res)
			if res.Found != tc.ExpectFound {
				t.Errorf("expected found=%v, got %v", tc.ExpectFound, res.Found)
			}
			if res.Valid != tc.ExpectValid {
				t.Errorf("expected valid=%v, got %v", tc.ExpectValid, res.Valid)
			}
			if res.Category() != tc.ExpectCategory {
				t.Errorf("expected category %q, got %q", tc.ExpectCategory, res.Category())
			}
			if tc.ValidateFunc != nil {
				if err := tc.ValidateFunc(res); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

func (s *Suite) checkCommon(t *testing.T, res *providers.LookupResult) {
	t.Helper()
	if res == nil {
		t.Fatal("lookup returned nil result")
	}
	if res.Source != s.ProviderID {
		t.Errorf("expected source %s, got %s", s.ProviderID, res.Source)
	}
	if res.CheckedAt.IsZero() {
		t.Error("CheckedAt not set")
	}
	if res.Found && res.Err != nil {
		t.Errorf("found result must not carry an error marker, got %v", res.Err)
	}
}
