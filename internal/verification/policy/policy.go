// Package policy centralizes the tunable thresholds used by comparators,
// profile clients, the orchestrator and the review queue.
package policy

import "time"

// Field scoring bands.
const (
	// HighMatch is the similarity above which a field earns full credit.
	HighMatch = 0.8
	// ModerateMatch is the lower edge of the partial-credit band.
	ModerateMatch = 0.5
	// PartialCredit is the score a moderate field match contributes.
	PartialCredit = 0.5
	// IdentityMismatch is the similarity at or below which a name mismatch
	// is treated as a different person.
	IdentityMismatch = 0.2
)

// Match thresholds per credential family.
const (
	LicenseMatchThreshold = 0.7
	ProfileMatchThreshold = 0.6
	// UnconfiguredConfidenceCap bounds confidence when a profile reference is
	// well formed but no provider can enrich it.
	UnconfiguredConfidenceCap = 0.3
)

// Graduation year tolerance bands, in years.
const (
	YearFullCreditTolerance = 1
	YearPartialTolerance    = 3
)

// CorroborationWeight is what a weak positive signal (photo, citation
// metrics) adds to both the score and the number of checks.
const CorroborationWeight = 0.5

const (
	LookupTimeout = 10 * time.Second
	SLAWindow     = 48 * time.Hour
)

// BandScore maps a similarity into the credit it earns.
func BandScore(sim float64) float64 {
	switch {
	case sim > HighMatch:
		return 1
	case sim >= ModerateMatch:
		return PartialCredit
	default:
		return 0
	}
}

// YearScore scores a numeric year difference.
func YearScore(submitted, found int) float64 {
	diff := submitted - found
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= YearFullCreditTolerance:
		return 1
	case diff <= YearPartialTolerance:
		return PartialCredit
	default:
		return 0
	}
}
