package blocker

import (
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

const (
	indelConflictFilter = "IndelConflict"
	siteConflictFilter  = "SiteConflict"
)

// Sink receives every record the blocker has groomed and, where applicable,
// reconciled against overlapping indels, in input order. The sink is
// typically a BlockAccumulator; a record that fails the blockable test
// (e.g. a variant, or a reference site with too little reference support)
// is written standalone via WriteStandalone instead of being offered to Add.
type Sink interface {
	Add(rec *vcf.GatkRecord) error
	WriteStandalone(rec *vcf.Record) error
	Flush() error
}

// RecordBlocker performs the per-record grooming pass (filter derivation,
// chrom-depth filtering, MQ info-to-sample migration) and the indel/site
// overlap look-ahead buffer described for the block-compression pipeline,
// forwarding every surviving record to a Sink.
type RecordBlocker struct {
	opts Options
	sink Sink

	lastNonIndelChrom string
	lastNonIndelPos   int
	haveLastNonIndel  bool

	buf overlapBuffer
}

// NewRecordBlocker constructs a groomer forwarding to sink.
func NewRecordBlocker(sink Sink, opts Options) *RecordBlocker {
	return &RecordBlocker{opts: opts, sink: sink}
}

// Append offers the next input record. It applies the skip tests, grooms
// survivors, and runs them through the indel overlap buffer before handing
// them to the sink.
func (b *RecordBlocker) Append(rec *vcf.Record) error {
	if b.isSkip(rec) {
		return nil
	}
	g := vcf.NewGatkRecord(rec)
	b.groom(g)
	return b.accumulate(g)
}

// Finish flushes any buffered indel overlap state and the underlying sink.
func (b *RecordBlocker) Finish() error {
	if err := b.flushBuffer(); err != nil {
		return err
	}
	return b.sink.Flush()
}

// isSkip applies the pre-grooming drop tests: a non-variant block record
// (REF already collapsed, no ALT) is never re-blocked, and a non-indel
// record must strictly advance position relative to the last non-indel
// record written (de-duplication against e.g. a re-sorted or overlapping
// merge input).
func (b *RecordBlocker) isSkip(rec *vcf.Record) bool {
	if rec.IsNonvariantBlock() {
		return true
	}
	if rec.IsIndel() {
		return false
	}
	if b.haveLastNonIndel && rec.Chrom == b.lastNonIndelChrom && rec.Pos <= b.lastNonIndelPos {
		return true
	}
	b.lastNonIndelChrom = rec.Chrom
	b.lastNonIndelPos = rec.Pos
	b.haveLastNonIndel = true
	return false
}

// groom applies the per-record filter/annotation pass described for the
// grooming step: GQX filter, chrom-depth filter, configured threshold
// filters, PASS normalization, and the AC/AF/AN/MQ INFO adjustments.
func (b *RecordBlocker) groom(g *vcf.GatkRecord) {
	if b.opts.GQXFilter != nil {
		gqx := g.GQX()
		if !gqx.IsInt() || float64(gqx.Int()) < b.opts.GQXFilter.Thresh {
			g.AppendFilter(b.opts.GQXFilter.Label)
		}
	}

	if b.opts.ChromDepth != nil {
		if mean, ok := b.opts.ChromDepth[g.Chrom]; ok {
			limit := mean * b.opts.MaxDepthFactor
			dp := g.DP()
			if dp.IsInt() && float64(dp.Int()) > limit {
				g.AppendFilter("MaxDepth")
			}
		}
	}

	indel := g.IsIndel()
	for _, f := range b.opts.Filters {
		if f.IndelOnly && !indel {
			continue
		}
		if f.SiteOnly && indel {
			continue
		}
		var raw string
		var ok bool
		if f.FromInfo {
			raw, ok = g.InfoVal(f.Tag)
		} else {
			raw, ok = g.SampleVal(f.Tag)
		}
		var v vcf.MaybeInt
		if ok {
			v = vcf.ParseMaybeInt(raw)
		}
		if !v.IsInt() {
			if f.FilterIfMissing {
				g.AppendFilter(f.Label)
			}
			continue
		}
		violated := false
		if f.LessThan {
			violated = float64(v.Int()) < f.Thresh
		} else {
			violated = float64(v.Int()) > f.Thresh
		}
		if violated {
			g.AppendFilter(f.Label)
		}
	}

	if g.PassFilter() {
		g.Filter = []string{"PASS"}
	}

	g.DeleteInfoKeyVal("AC")
	g.DeleteInfoKeyVal("AF")
	g.DeleteInfoKeyVal("AN")

	if mq, ok := g.InfoVal("MQ"); ok {
		if v := vcf.ParseMaybeInt(mq); v.IsInt() {
			g.SetSampleVal("MQ", strconv.Itoa(v.Int()))
		}
		g.DeleteInfoKeyVal("MQ")
	}
	g.KillCache()
}

// accumulate runs a groomed record through the indel overlap buffer: indels
// extend or flush-then-start the buffer's envelope; sites either fall
// inside the current envelope (buffered for later reconciliation) or pass
// straight to forwardToSink once any pending buffer has been flushed.
func (b *RecordBlocker) accumulate(g *vcf.GatkRecord) error {
	if g.IsIndel() {
		start, end := indelSpan(g)
		if b.buf.nonEmpty() && b.buf.withinEnvelope(start, end) {
			b.buf.expand(start, end)
		} else {
			if err := b.flushBuffer(); err != nil {
				return err
			}
			b.buf.reset(start, end)
		}
		b.buf.append(g, true)
		return nil
	}

	if b.buf.nonEmpty() && g.Pos >= b.buf.start && g.Pos <= b.buf.end {
		b.buf.append(g, false)
		return nil
	}
	if err := b.flushBuffer(); err != nil {
		return err
	}
	return b.forwardToSink(g)
}

func indelSpan(g *vcf.GatkRecord) (start, end int) {
	start = g.Pos + 1
	end = g.Pos + len(g.Ref) - 1
	return
}

// forwardToSink hands a record to the blockable-test gate: a record that
// fails IsVcfRecordBlockable bypasses the accumulator entirely (forced
// standalone), matching the reference's distinction between records that
// may participate in run-length compression and those that may not.
func (b *RecordBlocker) forwardToSink(g *vcf.GatkRecord) error {
	if !b.isBlockable(g) {
		return b.sink.WriteStandalone(g.Record)
	}
	return b.sink.Add(g)
}

// isBlockable mirrors IsVcfRecordBlockable: the ID column must be empty,
// the record must be non-variant with a single-base REF, GT must be
// reference-only, and, when SAMPLE AD is present with a nonzero total, the
// reference allele's share of that total must be at least
// 1-MinBlockableNR. INFO DP is not consulted; a record without a usable AD
// passes this last test.
func (b *RecordBlocker) isBlockable(g *vcf.GatkRecord) bool {
	if g.ID != "" && g.ID != "." {
		return false
	}
	if g.IsVariant() || len(g.Ref) != 1 {
		return false
	}
	switch gt := g.GT(); gt {
	case "", ".", "./.", "0/0", "0":
	default:
		return false
	}
	ad, hasAD := g.SampleVal("AD")
	if !hasAD {
		return true
	}
	refCount, total, ok := parseAD(ad)
	if !ok || total == 0 {
		return true
	}
	refFrac := float64(refCount) / float64(total)
	return refFrac >= 1.0-b.opts.MinBlockableNR
}

func parseAD(ad string) (ref, total int, ok bool) {
	parts := splitComma(ad)
	if len(parts) == 0 {
		return 0, 0, false
	}
	sum := 0
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, false
		}
		sum += v
		if i == 0 {
			ref = v
		}
	}
	return ref, sum, true
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func (b *RecordBlocker) flushBuffer() error {
	if b.buf.empty() {
		return nil
	}
	recs := b.buf.reconcile()
	b.buf.clear()
	for _, g := range recs {
		b.groom(g)
		if err := b.forwardToSink(g); err != nil {
			return err
		}
	}
	return nil
}
