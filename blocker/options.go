package blocker

import "github.com/sequencing/gvcftools/vcf"

// Options collects the tunables shared by the accumulator and the record
// groomer. Fields mirror the CLI surface directly; a flag package (the
// ambient stack uses github.com/grailbio/base's own flag conventions)
// populates this struct before a pipeline is constructed.
type Options struct {
	BlockFracTol   float64
	BlockAbsTol    int
	BlockLabel     string
	MinBlockableNR float64

	GQXFilter       *vcf.FilterSpec
	Filters         []vcf.FilterSpec
	ChromDepth      map[string]float64
	MaxDepthFactor  float64
	NoDefaultFilter bool
	Murdock         bool
}

// DefaultOptions returns the documented CLI defaults.
func DefaultOptions() Options {
	return Options{
		BlockFracTol:   0.3,
		BlockAbsTol:    3,
		BlockLabel:     "BLOCKAVG_min30p3a",
		MinBlockableNR: 0.2,
		MaxDepthFactor: 3.0,
	}
}
