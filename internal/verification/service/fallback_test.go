package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"credverify/internal/verification/models"
	"credverify/internal/verification/providers"
	"credverify/internal/verification/providers/registry"
)

const cedulaRecord = `{"items":[{"nombre":"Ana","paterno":"Ruiz","materno":"Garcia","desins":"UNAM","titulo":"MEDICO CIRUJANO","anioreg":"2012"}]}`

// The check budget and the per-endpoint timeout are equal, as the server
// wires them; a primary that never answers must still leave time for the
// mirror.
func (s *VerificationServiceSuite) TestHangingPrimaryFallsBackToMirror() {
	const budget = 300 * time.Millisecond

	release := make(chan struct{})
	primary := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer primary.Close()
	defer close(release)

	var mirrorHits atomic.Int32
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mirrorHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cedulaRecord))
	}))
	defer mirror.Close()

	var source registry.Config
	for _, c := range registry.Catalog() {
		if c.ID == registry.SourceCedulaMX {
			source = c
		}
	}
	source.PrimaryURL = primary.URL + "/cedula/{number}"
	source.FallbackURL = mirror.URL + "/cedula/{number}"
	source.Timeout = budget
	client, err := registry.New(source)
	s.Require().NoError(err)
	router, err := providers.NewRouter(client)
	s.Require().NoError(err)

	svc, err := New(s.submissions, s.results, router, s.profiles, s.reviews, WithLookupTimeout(budget))
	s.Require().NoError(err)

	subID := s.submission(func(rec *models.SubmittedCredentialRecord) {
		rec.FullName = "Ana Ruiz Garcia"
		rec.Education = []models.Education{{School: "UNAM", Degree: "Medico Cirujano", GraduationYear: 2012}}
	})

	overall, err := svc.Verify(s.ctx, subID, VerifyOptions{})
	s.Require().NoError(err)
	s.Equal(models.OverallVerified, overall.Status)
	s.Equal(int32(1), mirrorHits.Load())

	result := s.latest(subID)["license:MX:1234567"]
	s.Require().NotNil(result)
	s.Equal(models.ResultVerified, result.Status)
	s.Equal("registry:"+registry.SourceCedulaMX, result.Method)
}
