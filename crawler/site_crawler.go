package crawler

import (
	"io"
	"strconv"

	"github.com/sequencing/gvcftools/region"
	"github.com/sequencing/gvcftools/vcf"
)

// Position is one emitted locus of a SiteCrawler: either a single-base
// site (possibly one position of a lazily expanded non-variant block) or,
// when the crawler is configured to return them, an indel record in its
// entirety.
type Position struct {
	Chrom   string
	Pos     int
	IsIndel bool
	IsCall  bool
	// Ref is the literal reference allele at this locus, independent of
	// the called genotype: a single base for a site, the full REF
	// sequence for an indel.
	Ref string
	// Alleles holds the resolved allele text for this locus's genotype:
	// one entry per called homolog for a site ("A", "N", or "." for a
	// no-call), or the full REF/ALT sequences for an indel (Alleles[0] is
	// REF, the rest are the asserted ALTs, irrespective of GT).
	Alleles []string
	NTotal  int
	// Filters carries the source record's own FILTER column, in file
	// order: ["PASS"] for a passing record, nil when the column was "."
	// or empty.
	Filters []string
	// Format and SampleVals carry the source record's FORMAT key list and
	// the matching SAMPLE values, aligned index-for-index, so a merger
	// downstream can union them across samples instead of collapsing
	// every emitted locus to a bare GT.
	Format     []string
	SampleVals []string
}

// vpos orders positions the way the merger and the ordering invariant
// require: ascending Pos, with a non-indel position preceding an indel
// position that shares the same Pos.
type vpos struct {
	pos     int
	isIndel bool
}

func (a vpos) less(b vpos) bool {
	if a.pos != b.pos {
		return a.pos < b.pos
	}
	return !a.isIndel && b.isIndel
}

// SiteCrawler is a demand-driven cursor over one gVCF stream. Update
// advances it by exactly one emitted position; Valid reports whether the
// cursor has anything further to offer.
type SiteCrawler struct {
	ls    *vcf.LineSplitter
	fasta region.FastaAccessor
	opts  Options

	cur     Position
	valid   bool
	err     error
	chrom   string
	lastPos vpos
	havePos bool

	// block expansion state: set while replaying positions inside the
	// current non-variant record's [Pos, blockEnd] span.
	block    *vcf.GatkRecord
	blockEnd int
	blockAt  int

	// indel call-skip range: site positions strictly inside (begin,end)
	// are suppressed while ReturnIndels is false.
	skipBegin, skipEnd int
}

// NewSiteCrawler constructs a cursor reading gVCF data lines from r (the
// header must already have been consumed by the caller). fasta resolves
// reference bases for block-expanded reference-confident positions; it may
// be nil if the stream contains no non-variant blocks the crawler is asked
// to expand.
func NewSiteCrawler(r io.Reader, fasta region.FastaAccessor, opts Options) *SiteCrawler {
	return &SiteCrawler{ls: vcf.NewLineSplitter(r), fasta: fasta, opts: opts}
}

// Valid reports whether Current returns a meaningful Position; it is true
// after a call to Update returns (true, nil) and false once the cursor is
// exhausted, has terminated due to leaving the configured region, or has
// failed.
func (c *SiteCrawler) Valid() bool { return c.valid }

// Err returns the error that caused the cursor to stop, if any.
func (c *SiteCrawler) Err() error { return c.err }

// Current returns the most recently emitted position. Valid must be true.
func (c *SiteCrawler) Current() Position { return c.cur }

// Update advances the cursor by one position, returning false once the
// cursor has nothing further to offer (clean end of input, region
// exhausted, or a fatal error, distinguishable via Err).
func (c *SiteCrawler) Update() bool {
	for {
		if c.block != nil && c.blockAt+1 < c.blockEnd-c.block.Pos+1 {
			c.blockAt++
			if c.opts.HasRegion && c.block.Pos+c.blockAt > c.opts.RegionEnd {
				c.valid = false
				return false
			}
			c.emitBlockPosition()
			return true
		}
		c.block = nil

		ok, err := c.ls.Next()
		if err != nil {
			c.err = err
			c.valid = false
			return false
		}
		if !ok {
			c.valid = false
			return false
		}
		rec, err := vcf.ParseRecord(c.ls)
		if err != nil {
			c.err = err
			c.valid = false
			return false
		}
		if cont, emitted := c.consume(rec); emitted {
			return true
		} else if !cont {
			return false
		}
	}
}

// consume processes one freshly parsed data line. It returns emitted=true
// if a position was produced (cur/valid set), or cont=false if the cursor
// has terminated (region exhausted, fatal ordering error, or an INFO END
// before POS); cont=true with
// emitted=false means the caller's loop should read the next line.
func (c *SiteCrawler) consume(rec *vcf.Record) (cont bool, emitted bool) {
	if rec.Chrom != c.chrom {
		c.chrom = rec.Chrom
		c.havePos = false
		c.skipBegin, c.skipEnd = 0, 0
	}

	vp := vpos{pos: rec.Pos, isIndel: rec.IsIndel()}
	if c.havePos && !c.lastPos.less(vp) {
		if c.opts.Murdock {
			return true, false
		}
		c.err = vcf.NewError(vcf.KindPositionOrder, "non-monotonic position %d on %s", rec.Pos, rec.Chrom)
		c.valid = false
		return false, false
	}
	c.lastPos = vp
	c.havePos = true

	end := rec.Pos
	if v, ok := rec.InfoVal("END"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			end = n
		}
	}
	if end < rec.Pos {
		c.err = vcf.NewError(vcf.KindMalformedRecord, "INFO END %d precedes POS %d on %s", end, rec.Pos, rec.Chrom)
		c.valid = false
		return false, false
	}
	if c.opts.HasRegion && end < c.opts.RegionBegin {
		return true, false
	}
	if c.opts.HasRegion && rec.Pos > c.opts.RegionEnd {
		c.valid = false
		return false, false
	}

	if rec.IsIndel() {
		if !c.opts.ReturnIndels {
			c.skipBegin = rec.Pos + 1
			c.skipEnd = rec.Pos + len(rec.Ref) - 1
			return true, false
		}
		c.emitIndel(rec)
		return true, true
	}

	if c.skipEnd > 0 && rec.Pos >= c.skipBegin && rec.Pos <= c.skipEnd {
		return true, false
	}

	g := vcf.NewGatkRecord(rec)
	if !c.passesFilters(g) {
		return true, false
	}

	c.block = g
	c.blockEnd = end
	c.blockAt = 0
	if c.opts.HasRegion && rec.Pos < c.opts.RegionBegin {
		c.blockAt = c.opts.RegionBegin - rec.Pos
	}
	c.emitBlockPosition()
	return true, true
}

// passesFilters applies the GQX/QD/BaseQRankSum/configurable-INFO
// admission tests a crawler consumer expects; a PASS-filter failure always
// excludes the record from the crawl.
func (c *SiteCrawler) passesFilters(g *vcf.GatkRecord) bool {
	if !g.PassFilter() {
		return false
	}
	if c.opts.HasMinGQX {
		gqx := g.GQX()
		if !gqx.IsInt() || float64(gqx.Int()) < c.opts.MinGQX {
			return false
		}
	}
	if c.opts.HasMinQD {
		if v, ok := infoFloat(g.Record, "QD"); ok && v < c.opts.MinQD {
			return false
		}
	}
	if c.opts.HasMinPosRankSum {
		if v, ok := infoFloat(g.Record, "BaseQRankSum"); ok && v < c.opts.MinPosRankSum {
			return false
		}
	}
	for _, f := range c.opts.InfoFilters {
		v, ok := infoFloat(g.Record, f.Tag)
		if !ok {
			continue
		}
		if f.LessThan && v < f.Thresh {
			return false
		}
		if !f.LessThan && v > f.Thresh {
			return false
		}
	}
	return true
}

func infoFloat(rec *vcf.Record, key string) (float64, bool) {
	raw, ok := rec.InfoVal(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// emitBlockPosition resolves c.cur for the current offset into c.block's
// span, pulling the reference base from the FASTA accessor for every
// position after the block's own first (whose REF is already known).
func (c *SiteCrawler) emitBlockPosition() {
	g := c.block
	pos := g.Pos + c.blockAt
	refBase := c.refBaseAt(g, pos)
	alleles := c.resolveSiteAlleles(g, refBase)
	c.cur = Position{
		Chrom:      g.Chrom,
		Pos:        pos,
		IsIndel:    false,
		IsCall:     c.isCall(g),
		Ref:        refBase,
		Alleles:    alleles,
		NTotal:     dpOf(g),
		Filters:    g.Filter,
		Format:     g.Format,
		SampleVals: g.Sample,
	}
	c.valid = true
}

// refBaseAt returns the literal reference base at pos: the record's own
// REF at its first position, or a FASTA lookup for every later position in
// an expanded block.
func (c *SiteCrawler) refBaseAt(g *vcf.GatkRecord, pos int) string {
	if pos == g.Pos {
		return g.Ref
	}
	if c.fasta == nil {
		return "N"
	}
	b, err := c.fasta.BaseAt(g.Chrom, pos)
	if err != nil {
		return "N"
	}
	return string(b)
}

// resolveSiteAlleles expands a GT string's allele indices into base-letter
// text for a single-base position: index 0 is refBase, index i>0 is
// ALT[i-1], and an index beyond the ALT table resolves to "N" rather than
// failing the crawl (the upstream tool tolerates a stale ALT list in a
// block record).
func (c *SiteCrawler) resolveSiteAlleles(g *vcf.GatkRecord, refBase string) []string {
	idx := vcf.GTAlleles(g.GT())
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, a := range idx {
		switch {
		case a < 0:
			out[i] = "."
		case a == 0:
			out[i] = refBase
		case a-1 < len(g.Alt):
			out[i] = g.Alt[a-1]
		default:
			out[i] = "N"
		}
	}
	return out
}

func (c *SiteCrawler) emitIndel(rec *vcf.Record) {
	g := vcf.NewGatkRecord(rec)
	alleles := make([]string, 1+len(rec.Alt))
	alleles[0] = rec.Ref
	copy(alleles[1:], rec.Alt)
	c.cur = Position{
		Chrom:      rec.Chrom,
		Pos:        rec.Pos,
		IsIndel:    true,
		IsCall:     c.isCall(g),
		Ref:        rec.Ref,
		Alleles:    alleles,
		NTotal:     dpOf(g),
		Filters:    rec.Filter,
		Format:     rec.Format,
		SampleVals: rec.Sample,
	}
	c.valid = true
}

// isCall applies the is_call predicate: PASS and (diploid with both
// homologs called, or haploid with its sole homolog called).
func (c *SiteCrawler) isCall(g *vcf.GatkRecord) bool {
	if !g.PassFilter() {
		return false
	}
	idx := vcf.GTAlleles(g.GT())
	switch len(idx) {
	case 1:
		return idx[0] >= 0
	case 2:
		return idx[0] >= 0 && idx[1] >= 0
	default:
		return false
	}
}

func dpOf(g *vcf.GatkRecord) int {
	dp := g.DP()
	if dp.IsInt() {
		return dp.Int()
	}
	return 0
}
