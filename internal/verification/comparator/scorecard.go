// Package comparator turns submitted facts and normalized external fields
// into a match confidence and typed discrepancies. Every credential type
// shares the same scoring model; only the set of fields differs.
package comparator

import (
	"strconv"
	"strings"

	"credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	"credverify/internal/verification/similarity"
)

// Discrepancy field names.
const (
	FieldFullName        = "fullName"
	FieldInstitution     = "institution"
	FieldProgramOrDegree = "programOrDegree"
	FieldGraduationYear  = "graduationYear"
	FieldLicenseStatus   = "licenseStatus"
	FieldAffiliation     = "affiliation"
	FieldProfileURL      = "profileUrl"
)

// Outcome is the comparator verdict for one credential.
type Outcome struct {
	Matches       bool
	Confidence    float64
	TotalChecks   float64
	Discrepancies []models.Discrepancy
}

type scorecard struct {
	score         float64
	checks        float64
	discrepancies []models.Discrepancy
}

func (s *scorecard) add(field, submitted, found string, severity models.Severity) {
	s.discrepancies = append(s.discrepancies, models.Discrepancy{
		Field:          field,
		SubmittedValue: submitted,
		FoundValue:     found,
		Severity:       severity,
	})
}

// name scores an identity field. A near-zero similarity is a different
// person and yields a high severity discrepancy.
func (s *scorecard) name(submitted, found string) {
	if strings.TrimSpace(submitted) == "" || strings.TrimSpace(found) == "" {
		return
	}
	sim := max(similarity.NameSimilarity(submitted, found), similarity.Similarity(submitted, found))
	s.checks++
	s.score += policy.BandScore(sim)
	switch {
	case sim > policy.HighMatch:
	case sim >= policy.ModerateMatch:
		s.add(FieldFullName, submitted, found, models.SeverityLow)
	case sim > policy.IdentityMismatch:
		s.add(FieldFullName, submitted, found, models.SeverityMedium)
	default:
		s.add(FieldFullName, submitted, found, models.SeverityHigh)
	}
}

// text scores a descriptive field such as an institution or degree.
func (s *scorecard) text(field, submitted, found string) {
	if strings.TrimSpace(submitted) == "" || strings.TrimSpace(found) == "" {
		return
	}
	sim := similarity.Similarity(submitted, found)
	s.checks++
	s.score += policy.BandScore(sim)
	switch {
	case sim > policy.HighMatch:
	case sim >= policy.ModerateMatch:
		s.add(field, submitted, found, models.SeverityLow)
	default:
		s.add(field, submitted, found, models.SeverityMedium)
	}
}

// year scores a numeric year with a tolerance band.
func (s *scorecard) year(submitted, found int) {
	if submitted == 0 || found == 0 {
		return
	}
	credit := policy.YearScore(submitted, found)
	s.checks++
	s.score += credit
	switch credit {
	case 1:
	case policy.PartialCredit:
		s.add(FieldGraduationYear, strconv.Itoa(submitted), strconv.Itoa(found), models.SeverityLow)
	default:
		s.add(FieldGraduationYear, strconv.Itoa(submitted), strconv.Itoa(found), models.SeverityMedium)
	}
}

// affiliation scores the best pairing between claimed and observed
// affiliations. Naming variance is a soft signal.
func (s *scorecard) affiliation(submitted, found []string) {
	if len(submitted) == 0 || len(found) == 0 {
		return
	}
	best := 0.0
	for _, a := range submitted {
		for _, b := range found {
			best = max(best, similarity.Similarity(a, b))
		}
	}
	s.checks++
	s.score += policy.BandScore(best)
	if best <= policy.HighMatch {
		s.add(FieldAffiliation, strings.Join(submitted, "; "), strings.Join(found, "; "), models.SeverityLow)
	}
}

// corroborate adds a weak positive signal. It only counts once a core
// check has run, so it can never stand in for identity evidence.
func (s *scorecard) corroborate(present bool) {
	if !present || s.checks == 0 {
		return
	}
	s.checks += policy.CorroborationWeight
	s.score += policy.CorroborationWeight
}

func (s *scorecard) outcome(threshold float64) Outcome {
	out := Outcome{TotalChecks: s.checks, Discrepancies: s.discrepancies}
	if out.Discrepancies == nil {
		out.Discrepancies = []models.Discrepancy{}
	}
	if s.checks > 0 {
		out.Confidence = min(max(s.score/s.checks, 0), 1)
	}
	out.Matches = out.Confidence >= threshold && !models.HasHighSeverity(out.Discrepancies)
	return out
}
