// Package blocker implements non-variant block compression: per-record
// grooming (filter derivation, chrom-depth filtering, MQ migration),
// indel/site overlap reconciliation via a look-ahead buffer, and the
// min/max/count running stat used to test whether a run of sites is
// homogeneous enough to collapse into one compressed record.
package blocker

// Stat is a running min/max/count/sum over an integer series, used by the
// block-admission tolerance test. The zero value is empty.
type Stat struct {
	count int
	min   int
	max   int
	sum   int
}

// Empty reports whether any value has been added yet.
func (s *Stat) Empty() bool { return s.count == 0 }

// Add extends the running stat with v.
func (s *Stat) Add(v int) {
	if s.count == 0 {
		s.min, s.max = v, v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.sum += v
	s.count++
}

// Count returns the number of values added.
func (s *Stat) Count() int { return s.count }

// Min returns the running minimum; meaningless if Empty.
func (s *Stat) Min() int { return s.min }

// Max returns the running maximum; meaningless if Empty.
func (s *Stat) Max() int { return s.max }

// Blockable reports whether v may extend the stat's series without
// breaching the homogeneity tolerance, without committing v. It is used to
// probe admission before deciding whether to accumulate a candidate block
// member, matching the reference's check-then-add two-step.
func (s *Stat) Blockable(v int, fracTol float64, absTol int) bool {
	if s.count == 0 {
		return true
	}
	min, max := s.min, s.max
	if v < min {
		min = v
	}
	if v > max {
		max = v
	}
	tol := absTol
	if ftol := int(float64(min) * fracTol); ftol > tol {
		tol = ftol
	}
	return max <= min+tol
}
