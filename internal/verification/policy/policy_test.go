package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandScore(t *testing.T) {
	assert.Equal(t, 1.0, BandScore(0.95))
	assert.Equal(t, PartialCredit, BandScore(HighMatch))
	assert.Equal(t, PartialCredit, BandScore(2.0/3))
	assert.Equal(t, PartialCredit, BandScore(ModerateMatch))
	assert.Equal(t, 0.0, BandScore(0.49))
}

func TestYearScore(t *testing.T) {
	assert.Equal(t, 1.0, YearScore(2010, 2010))
	assert.Equal(t, 1.0, YearScore(2010, 2011))
	assert.Equal(t, PartialCredit, YearScore(2013, 2010))
	assert.Equal(t, 0.0, YearScore(2000, 2010))
}
