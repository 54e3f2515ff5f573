package blocker

import (
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

// overlapBuffer is the look-ahead buffer that reconciles indel calls
// against any non-indel (site) calls inside their span. It
// accumulates records between a flush and the next record that falls
// outside its current envelope.
type overlapBuffer struct {
	records  []*vcf.GatkRecord
	indelIdx []int
	start    int
	end      int
	active   bool
}

func (b *overlapBuffer) nonEmpty() bool { return b.active }
func (b *overlapBuffer) empty() bool    { return !b.active }

// withinEnvelope reports whether an indel spanning [start,end] overlaps, or
// lies within one base of, the buffer's current envelope.
func (b *overlapBuffer) withinEnvelope(start, end int) bool {
	return start <= b.end+1 && end+1 >= b.start
}

func (b *overlapBuffer) expand(start, end int) {
	if start < b.start {
		b.start = start
	}
	if end > b.end {
		b.end = end
	}
}

func (b *overlapBuffer) reset(start, end int) {
	b.records = b.records[:0]
	b.indelIdx = b.indelIdx[:0]
	b.start = start
	b.end = end
	b.active = true
}

func (b *overlapBuffer) append(g *vcf.GatkRecord, isIndel bool) {
	b.records = append(b.records, g)
	if isIndel {
		b.indelIdx = append(b.indelIdx, len(b.records)-1)
	}
}

func (b *overlapBuffer) clear() {
	b.records = nil
	b.indelIdx = nil
	b.active = false
}

// regionInfo is the ploidy/quality envelope computed from the buffer's
// indel call(s), applied to every overlapping site record.
type regionInfo struct {
	filters []string
	qual    vcf.MaybeInt
	gq      vcf.MaybeInt
	copyN   int
}

// reconcile implements ProcessRecordBuffer: it derives the region's
// filter/quality/ploidy envelope from the buffered indel(s), applies it to
// every buffered site record via adjustOverlap, and flags every indel
// record with IndelConflict when more than one indel shares the buffer.
func (b *overlapBuffer) reconcile() []*vcf.GatkRecord {
	if len(b.indelIdx) > 1 {
		for _, i := range b.indelIdx {
			b.records[i].AppendFilter(indelConflictFilter)
		}
		ri := regionInfo{filters: []string{indelConflictFilter}, copyN: 0}
		for i, g := range b.records {
			if !isIndelIdx(b.indelIdx, i) {
				adjustOverlap(g, ri)
			}
		}
		return b.records
	}

	indel := b.records[b.indelIdx[0]]
	qual := vcf.ParseMaybeInt(indel.Qual)
	gqStr, _ := indel.SampleVal("GQ")
	ri := regionInfo{
		filters: indel.Filter,
		qual:    qual,
		gq:      vcf.ParseMaybeInt(gqStr),
		copyN:   copyNumber(indel.GT()),
	}
	for i, g := range b.records {
		if i == b.indelIdx[0] {
			continue
		}
		adjustOverlap(g, ri)
	}
	return b.records
}

func isIndelIdx(idx []int, i int) bool {
	for _, j := range idx {
		if j == i {
			return true
		}
	}
	return false
}

// copyNumber reports 1 when gt asserts exactly two distinct alleles with
// one of them reference, else 0 (homozygous or otherwise ambiguous,
// treated conservatively as a conflict).
func copyNumber(gt string) int {
	alleles := vcf.GTAlleles(gt)
	if len(alleles) != 2 || alleles[0] == alleles[1] {
		return 0
	}
	if alleles[0] == 0 || alleles[1] == 0 {
		return 1
	}
	return 0
}

// adjustOverlap applies one region's filter/quality/ploidy envelope to a
// single overlapping site record, per the overlap reconciliation rules.
func adjustOverlap(g *vcf.GatkRecord, ri regionInfo) {
	for _, f := range ri.filters {
		g.AppendFilter(f)
	}
	if ri.qual.IsInt() {
		if q := vcf.ParseMaybeInt(g.Qual); !q.IsInt() || q.Int() > ri.qual.Int() {
			g.Qual = strconv.Itoa(ri.qual.Int())
		}
	}
	if ri.gq.IsInt() {
		if gq, ok := g.SampleVal("GQ"); ok {
			if v := vcf.ParseMaybeInt(gq); v.IsInt() && v.Int() > ri.gq.Int() {
				g.SetSampleVal("GQ", strconv.Itoa(ri.gq.Int()))
			}
		}
	}

	alleles := vcf.GTAlleles(g.GT())
	switch {
	case ri.copyN == 1 && len(alleles) == 2 && alleles[0] >= 0 && alleles[1] >= 0:
		if alleles[0] == 0 || alleles[1] == 0 {
			// The indel's reference-bearing homolog still covers this site;
			// the other homolog is already accounted for by the deletion, so
			// the overlapping call collapses to the single reference allele.
			g.SetSampleVal("GT", "0")
			g.DeleteSampleKeyVal("PL")
		} else {
			scrub(g)
			g.AppendFilter(siteConflictFilter)
		}
	default:
		scrub(g)
	}
	g.KillCache()
}

// scrub removes every genotype-dependent sample tag and sets GT to no-call.
func scrub(g *vcf.GatkRecord) {
	g.Qual = "."
	g.DeleteSampleKeyVal("PL")
	g.DeleteSampleKeyVal("GQ")
	g.DeleteSampleKeyVal("GQX")
	g.SetSampleVal("GT", ".")
}
