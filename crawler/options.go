// Package crawler implements the demand-driven, single-pass cursor over one
// gVCF stream (SiteCrawler) and the N-way merger that co-traverses several
// such cursors to produce a unified, position-ordered variant stream.
package crawler

import "github.com/sequencing/gvcftools/vcf"

// Options collects the admission filters and traversal mode a SiteCrawler
// applies as it demand-expands a gVCF stream into a position sequence.
// Fields mirror the CLI surface the crawler-driven tools (the merger,
// related-sample comparisons) expose directly.
type Options struct {
	MinGQX          float64
	HasMinGQX       bool
	MinQD           float64
	HasMinQD        bool
	MinPosRankSum   float64
	HasMinPosRankSum bool
	InfoFilters     []vcf.FilterSpec

	// ReturnIndels, when false, causes indel lines to be consumed and
	// skipped rather than surfaced as a position; any site call whose pos
	// falls strictly within the indel's reference span is suppressed for
	// the duration, mirroring the upstream comparison tool's SNP-only mode.
	ReturnIndels bool

	// RegionBegin/RegionEnd restrict the cursor to a 1-based closed
	// interval on whichever chromosome it is currently reading; positions
	// before RegionBegin are silently skipped, and the cursor terminates
	// (Valid() becomes false) once a position beyond RegionEnd is read.
	HasRegion   bool
	RegionBegin int
	RegionEnd   int

	// Murdock relaxes the same-chromosome position-order invariant: a
	// regression is dropped rather than raised as a fatal PositionOrder
	// error.
	Murdock bool
}
