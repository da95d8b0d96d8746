// Package cache holds recently computed overall statuses. Entries are
// overwritten by every verify or recompute, so staleness is bounded by the
// TTL only when something changes out of band.
package cache

import (
	"time"

	"credverify/internal/verification/models"
)

// TTLs picks how long a status may be served from cache.
type TTLs struct {
	// Active applies to statuses that can still move on their own.
	Active time.Duration
	// Terminal applies to verified and rejected, which only change through
	// a forced recheck or a review action.
	Terminal time.Duration
}

// DefaultTTLs are used when the configuration leaves them unset.
var DefaultTTLs = TTLs{Active: 5 * time.Second, Terminal: 10 * time.Minute}

func (t TTLs) withDefaults() TTLs {
	if t.Active <= 0 {
		t.Active = DefaultTTLs.Active
	}
	if t.Terminal <= 0 {
		t.Terminal = DefaultTTLs.Terminal
	}
	return t
}

// For returns the TTL for a status.
func (t TTLs) For(status models.OverallStatus) time.Duration {
	if status.IsTerminal() {
		return t.Terminal
	}
	return t.Active
}
