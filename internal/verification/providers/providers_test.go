package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegistry struct {
	id   string
	keys []string
}

func (s stubRegistry) ID() string              { return s.id }
func (s stubRegistry) Jurisdictions() []string { return s.keys }
func (s stubRegistry) Lookup(_ context.Context, _, _ string) *LookupResult {
	return &LookupResult{Source: s.id, Found: true, Valid: true, Configured: true}
}

func TestRouter(t *testing.T) {
	router, err := NewRouter(
		stubRegistry{id: "national-us", keys: []string{"US"}},
		stubRegistry{id: "board-ca", keys: []string{"us-ca"}},
		stubRegistry{id: "cedula-mx", keys: []string{"MX"}},
	)
	require.NoError(t, err)

	t.Run("exact board wins over national", func(t *testing.T) {
		c, err := router.Resolve("US-CA")
		require.NoError(t, err)
		assert.Equal(t, "board-ca", c.ID())
	})

	t.Run("sub-jurisdiction falls back to national client", func(t *testing.T) {
		c, err := router.Resolve("us-tx")
		require.NoError(t, err)
		assert.Equal(t, "national-us", c.ID())
	})

	t.Run("unsupported jurisdiction is distinct from not found", func(t *testing.T) {
		res, err := router.Lookup(context.Background(), "BR", "123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedJurisdiction))
		assert.Nil(t, res)
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		err := router.Register(stubRegistry{id: "other", keys: []string{"MX"}})
		assert.ErrorIs(t, err, ErrDuplicateJurisdiction)
	})

	assert.Equal(t, []string{"MX", "US", "US-CA"}, router.Jurisdictions())
}

func TestNormalize(t *testing.T) {
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"nombre": "Ana",
		"apellidos": {"paterno": "Ruiz", "materno": "Garcia"},
		"institucion": "UNAM",
		"titulo": "Medico Cirujano",
		"anio_registro": "2012-06-30",
		"estatus": "ACTIVE",
		"hospitales": ["Hospital General", "Clinica Norte"],
		"foto": "https://example.test/p.jpg",
		"citas": 42
	}`), &record))

	got := Normalize(record, FieldMap{
		FieldLegalName:       {"nombre", "apellidos.paterno", "apellidos.materno"},
		FieldInstitution:     {"institucion"},
		FieldProgramOrDegree: {"titulo"},
		FieldGraduationYear:  {"anio_registro"},
		FieldLicenseStatus:   {"estatus"},
		FieldAffiliations:    {"hospitales"},
		FieldPhoto:           {"foto"},
		FieldCitationCount:   {"citas"},
		FieldExpirationDate:  {"missing"},
	})
	assert.Equal(t, "Ana Ruiz Garcia", got.LegalName)
	assert.Equal(t, "UNAM", got.Institution)
	assert.Equal(t, 2012, got.GraduationYear)
	assert.Equal(t, "active", got.LicenseStatus)
	assert.Equal(t, []string{"Hospital General", "Clinica Norte"}, got.Affiliations)
	assert.True(t, got.HasPhoto)
	assert.Equal(t, 42, got.CitationCount)
	assert.Empty(t, got.ExpirationDate)
}

func TestSchema(t *testing.T) {
	s, err := CompileSchema(`{"type":"object","required":["nombre"]}`)
	require.NoError(t, err)
	assert.NoError(t, s.Validate([]byte(`{"nombre":"Ana"}`)))
	assert.Error(t, s.Validate([]byte(`{"name":"Ana"}`)))

	none, err := CompileSchema("")
	require.NoError(t, err)
	assert.NoError(t, none.Validate([]byte(`anything`)))
}

func TestFailure(t *testing.T) {
	now := time.Now()
	res := Failure("board-ca", ErrorTimeout, "deadline exceeded", context.DeadlineExceeded, now)
	assert.False(t, res.Found)
	assert.True(t, res.Failed())
	assert.Equal(t, ErrorTimeout, res.Category())
	assert.True(t, IsRetryable(res.Err))
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("boom")))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCategory
	}{
		{http.StatusUnauthorized, ErrorAuthentication},
		{http.StatusForbidden, ErrorAuthentication},
		{http.StatusTooManyRequests, ErrorRateLimited},
		{http.StatusInternalServerError, ErrorProviderOutage},
		{http.StatusTeapot, ErrorBadData},
	}
	for _, tt := range tests {
		perr := ClassifyStatus("src", tt.status)
		require.NotNil(t, perr)
		assert.Equal(t, tt.want, perr.Category, "status %d", tt.status)
	}
	assert.Nil(t, ClassifyStatus("src", http.StatusOK))
}
