package trio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func called(a0, a1 string) Position {
	return Position{Present: true, NTotal: 30, IsCall: true, Allele0: a0, Allele1: a1}
}

func TestCheckMendelAcceptsConsistentTransmission(t *testing.T) {
	var ss MendelStats
	site := TrioSite{
		Mother: called("A", "C"),
		Father: called("A", "A"),
		Child:  called("A", "C"),
	}
	conflict := CheckMendel(site, "A", &ss)
	assert.False(t, conflict)
	assert.Equal(t, 1, ss.Correct)
	assert.Equal(t, 0, ss.Incorrect)
	assert.Equal(t, 1, ss.AllCalled)
}

func TestCheckMendelFlagsConflict(t *testing.T) {
	var ss MendelStats
	site := TrioSite{
		Mother: called("A", "A"),
		Father: called("A", "A"),
		Child:  called("C", "C"),
	}
	conflict := CheckMendel(site, "A", &ss)
	assert.True(t, conflict)
	assert.Equal(t, 0, ss.Correct)
	assert.Equal(t, 1, ss.Incorrect)
}

func TestCheckMendelSkipsAllReferenceSite(t *testing.T) {
	var ss MendelStats
	site := TrioSite{
		Mother: called("A", "A"),
		Father: called("A", "A"),
		Child:  called("A", "A"),
	}
	conflict := CheckMendel(site, "A", &ss)
	assert.False(t, conflict)
	assert.Equal(t, 0, ss.Correct)
	assert.Equal(t, 0, ss.Incorrect)
}

func TestCheckMendelSkipsNReference(t *testing.T) {
	var ss MendelStats
	site := TrioSite{
		Mother: called("A", "C"),
		Father: called("A", "A"),
		Child:  called("A", "C"),
	}
	conflict := CheckMendel(site, "N", &ss)
	assert.False(t, conflict)
	assert.Equal(t, 0, ss.AllMapped)
	assert.Equal(t, 0, ss.AllCalled)
}

func TestCheckMendelCountsSomeCalledWhenOneSampleMissing(t *testing.T) {
	var ss MendelStats
	site := TrioSite{
		Mother: called("A", "C"),
		Father: called("A", "A"),
		Child:  Position{},
	}
	conflict := CheckMendel(site, "A", &ss)
	assert.False(t, conflict)
	assert.Equal(t, 1, ss.SomeCalled)
	assert.Equal(t, 0, ss.AllCalled)
}

func TestCheckConcordanceAgreesOnMatchingGenotype(t *testing.T) {
	var ss ConcordanceStats
	site := TwinSite{
		Twin1: called("A", "C"),
		Twin2: called("C", "A"),
	}
	conflict := CheckConcordance(site, "A", &ss)
	assert.False(t, conflict)
	assert.Equal(t, 1, ss.Correct)
}

func TestCheckConcordanceFlagsDiscordantGenotype(t *testing.T) {
	var ss ConcordanceStats
	site := TwinSite{
		Twin1: called("A", "C"),
		Twin2: called("A", "A"),
	}
	conflict := CheckConcordance(site, "A", &ss)
	assert.True(t, conflict)
	assert.Equal(t, 1, ss.Incorrect)
}
