package vcf

import (
	"math"
	"strconv"
	"strings"
)

// MaybeInt is a value that may be an integer, a double that rounds to one,
// or an opaque string (or simply absent). FORMAT/INFO tags in a GATK VCF are
// untyped text, and the block compressor needs to tell "two absent values
// are equal" apart from "two different strings are unequal" apart from
// "two numbers are within tolerance" — a plain int or float can't carry all
// three states at once.
type MaybeInt struct {
	isInt    bool
	intVal   int
	hasValue bool
	strVal   string
}

// NoMaybeInt is the absent value: every field that doesn't exist, or that
// VCF spells with the missing-value dot, parses to this.
var NoMaybeInt = MaybeInt{}

// ParseMaybeInt parses a raw FORMAT or INFO scalar. "." and "" both parse to
// the absent value; a value parseable as a float rounds to the nearest int;
// anything else is kept as an opaque string.
func ParseMaybeInt(s string) MaybeInt {
	if s == "" || s == "." {
		return NoMaybeInt
	}
	if iv, err := strconv.Atoi(s); err == nil {
		return MaybeInt{isInt: true, intVal: iv, hasValue: true, strVal: s}
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return MaybeInt{isInt: true, intVal: int(math.Floor(fv + 0.5)), hasValue: true, strVal: s}
	}
	return MaybeInt{hasValue: true, strVal: s}
}

// IntMaybeInt wraps a plain int, as used for internal thresholds rather than
// parsed VCF text.
func IntMaybeInt(v int) MaybeInt {
	return MaybeInt{isInt: true, intVal: v, hasValue: true, strVal: strconv.Itoa(v)}
}

// IsSet reports whether this value is anything other than absent.
func (m MaybeInt) IsSet() bool { return m.hasValue }

// IsInt reports whether this value parsed as (or rounds to) an integer.
func (m MaybeInt) IsInt() bool { return m.isInt }

// Int returns the rounded integer value; only meaningful when IsInt is true.
func (m MaybeInt) Int() int { return m.intVal }

// String returns the original text this value was parsed from, or "." if
// absent.
func (m MaybeInt) String() string {
	if !m.hasValue {
		return "."
	}
	return m.strVal
}

// IsNonZero reports whether this value is set, integral, and nonzero.
func (m MaybeInt) IsNonZero() bool { return m.isInt && m.intVal != 0 }

// GatkRecord wraps a parsed Record with memoized derived fields (GQX, GQ, DP,
// MQ, and the GT string) that the block-admission test evaluates on every
// record. The cache is invalidated whenever the underlying record is
// mutated, mirroring the auto_ptr-reset-on-mutation pattern the grooming
// pass relies on to keep derived values honest after it rewrites INFO or
// SAMPLE columns.
type GatkRecord struct {
	*Record

	gqxValid bool
	gqx      MaybeInt
	gqValid  bool
	gq       MaybeInt
	dpValid  bool
	dp       MaybeInt
	mqValid  bool
	mq       MaybeInt
	gtValid  bool
	gt       string
}

// NewGatkRecord wraps an already-parsed Record.
func NewGatkRecord(r *Record) *GatkRecord {
	return &GatkRecord{Record: r}
}

// KillCache invalidates every memoized derived field. Call after mutating
// the underlying Record so the next accessor call recomputes from the new
// state rather than returning a stale value.
func (g *GatkRecord) KillCache() {
	g.gqxValid = false
	g.gqValid = false
	g.dpValid = false
	g.mqValid = false
	g.gtValid = false
	g.Record.ClearModified()
}

// syncCache drops cached values if the record has been mutated since the
// last access, without requiring every caller to remember to call KillCache
// explicitly.
func (g *GatkRecord) syncCache() {
	if g.Record.IsModified() {
		g.KillCache()
	}
}

// GQ returns the FORMAT GQ value.
func (g *GatkRecord) GQ() MaybeInt {
	g.syncCache()
	if !g.gqValid {
		v, _ := g.SampleVal("GQ")
		g.gq = ParseMaybeInt(v)
		g.gqValid = true
	}
	return g.gq
}

// DP returns the FORMAT DP value.
func (g *GatkRecord) DP() MaybeInt {
	g.syncCache()
	if !g.dpValid {
		v, _ := g.SampleVal("DP")
		g.dp = ParseMaybeInt(v)
		g.dpValid = true
	}
	return g.dp
}

// MQ returns the FORMAT MQ value.
func (g *GatkRecord) MQ() MaybeInt {
	g.syncCache()
	if !g.mqValid {
		v, _ := g.SampleVal("MQ")
		g.mq = ParseMaybeInt(v)
		g.mqValid = true
	}
	return g.mq
}

// GQX returns min(QUAL, GQ) when both parse as integers, the one that does
// when only one parses, and the absent value when neither does; this is the
// conservative confidence measure the block-admission test groups on,
// since either QUAL or GQ alone can overstate confidence in a no-call site.
func (g *GatkRecord) GQX() MaybeInt {
	g.syncCache()
	if !g.gqxValid {
		qual := ParseMaybeInt(g.Qual)
		gq := g.GQ()
		switch {
		case qual.IsInt() && gq.IsInt():
			if qual.Int() < gq.Int() {
				g.gqx = qual
			} else {
				g.gqx = gq
			}
		case qual.IsInt():
			g.gqx = qual
		case gq.IsInt():
			g.gqx = gq
		default:
			g.gqx = NoMaybeInt
		}
		g.gqxValid = true
	}
	return g.gqx
}

// IsCovered reports whether DP is set and nonzero.
func (g *GatkRecord) IsCovered() bool {
	return g.DP().IsNonZero()
}

// GT returns the FORMAT GT value, defaulting to "." when absent.
func (g *GatkRecord) GT() string {
	g.syncCache()
	if !g.gtValid {
		v, ok := g.SampleVal("GT")
		if !ok || v == "" {
			v = "."
		}
		g.gt = v
		g.gtValid = true
	}
	return g.gt
}

// GTAlleles splits a GT string like "0/1" or "1|1" into its allele indices.
// A no-call component (".") yields -1. Returns nil for a wholly-missing GT.
func GTAlleles(gt string) []int {
	if gt == "" || gt == "." {
		return nil
	}
	gt = strings.ReplaceAll(gt, "|", "/")
	parts := strings.Split(gt, "/")
	out := make([]int, len(parts))
	for i, p := range parts {
		if p == "." {
			out[i] = -1
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			out[i] = -1
			continue
		}
		out[i] = v
	}
	return out
}
