package crawler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sample names one input stream's SiteCrawler for the merger's column
// ordering and header-free output.
type Sample struct {
	Name    string
	Crawler *SiteCrawler
}

// Merger co-traverses N SiteCrawlers, producing a single ordered VCF
// output stream: at each step the minimum vpos across every still-valid
// cursor is selected, a union record is built from every cursor currently
// sitting on that vpos, and every other cursor contributes a "." genotype.
type Merger struct {
	samples []Sample
	w       io.Writer
}

// NewMerger constructs a merger over samples whose crawlers have not been
// advanced yet: Run calls Update on each of them before the first record.
// Output is written to w in input order with no header; the caller is
// responsible for emitting one beforehand via vcf.HeaderHandler.
func NewMerger(w io.Writer, samples []Sample) *Merger {
	return &Merger{w: w, samples: samples}
}

// Run drives the merge to completion, writing one merged record per
// distinct vpos to w. It returns the first error encountered by any
// crawler or by the output writer.
func (m *Merger) Run() error {
	for _, s := range m.samples {
		s.Crawler.Update()
	}
	for {
		winners, vp, any := m.selectMin()
		if !any {
			break
		}
		if err := m.emit(vp, winners); err != nil {
			return err
		}
		for _, i := range winners {
			m.samples[i].Crawler.Update()
		}
	}
	for _, s := range m.samples {
		if err := s.Crawler.Err(); err != nil {
			return err
		}
	}
	return nil
}

// selectMin finds the minimum vpos among every still-valid crawler and
// returns the indices of every sample currently positioned there.
func (m *Merger) selectMin() (winners []int, best vpos, any bool) {
	for i, s := range m.samples {
		if !s.Crawler.Valid() {
			continue
		}
		cur := s.Crawler.Current()
		vp := vpos{pos: cur.Pos, isIndel: cur.IsIndel}
		switch {
		case !any || vp.less(best):
			best = vp
			winners = winners[:0]
			winners = append(winners, i)
			any = true
		case !best.less(vp):
			winners = append(winners, i)
		}
	}
	return winners, best, any
}

// emit builds and writes the union record for one vpos, given the indices
// of samples sitting on it.
func (m *Merger) emit(vp vpos, winners []int) error {
	first := m.samples[winners[0]].Crawler.Current()

	if vp.isIndel {
		return m.emitIndel(winners, first)
	}
	return m.emitSite(winners, first)
}

// emitSite handles a non-indel vpos: emitted only when at least one
// winning sample carries a non-reference call, per the admission rule for
// variant sites in the merged stream.
func (m *Merger) emitSite(winners []int, first Position) error {
	altTable := newAlleleTable(first.Ref)
	gts := make([]string, len(m.samples))
	for i := range gts {
		gts[i] = "."
	}
	anyNonRef := false
	for _, i := range winners {
		cur := m.samples[i].Crawler.Current()
		gts[i] = altTable.gtFor(cur.Alleles)
		if hasNonRefGT(gts[i]) {
			anyNonRef = true
		}
	}
	if !anyNonRef {
		return nil
	}
	filters, format, perSample := m.unionFiltersAndFormat(winners)
	return m.write(first.Chrom, first.Pos, altTable, gts, filters, format, perSample)
}

// emitIndel handles an indel vpos: every winning sample's REF is padded to
// the longest winning REF using that record's own reference tail, matching
// the union-record rule that shorter REFs borrow subsequent reference
// bases from the winning (longest) REF.
func (m *Merger) emitIndel(winners []int, first Position) error {
	longestRef := first.Ref
	for _, i := range winners {
		cur := m.samples[i].Crawler.Current()
		if len(cur.Ref) > len(longestRef) {
			longestRef = cur.Ref
		}
	}
	altTable := newAlleleTable(longestRef)
	gts := make([]string, len(m.samples))
	for i := range gts {
		gts[i] = "."
	}
	for _, i := range winners {
		cur := m.samples[i].Crawler.Current()
		padded := make([]string, len(cur.Alleles))
		for j, a := range cur.Alleles {
			padded[j] = padAllele(a, cur.Ref, longestRef)
		}
		gts[i] = altTable.gtFor(padded)
	}
	filters, format, perSample := m.unionFiltersAndFormat(winners)
	return m.write(first.Chrom, first.Pos, altTable, gts, filters, format, perSample)
}

// unionFiltersAndFormat builds the merged locus's FILTER and FORMAT key
// lists in first-seen order across winners (spec: "FILTER, FORMAT keys, and
// SAMPLE values are unioned in first-seen order"), plus each winning
// sample's own key/value pairs for later lookup when a row is assembled.
// A "PASS" or absent FILTER contributes nothing to the union; GT is always
// present in the FORMAT union even if, implausibly, no winner carried it.
func (m *Merger) unionFiltersAndFormat(winners []int) (filters, format []string, perSample map[int]map[string]string) {
	filterSeen := make(map[string]bool)
	formatSeen := make(map[string]bool)
	perSample = make(map[int]map[string]string, len(winners))
	for _, i := range winners {
		cur := m.samples[i].Crawler.Current()
		for _, f := range cur.Filters {
			if f == "" || f == "PASS" || filterSeen[f] {
				continue
			}
			filterSeen[f] = true
			filters = append(filters, f)
		}
		vals := make(map[string]string, len(cur.Format))
		for j, k := range cur.Format {
			if j < len(cur.SampleVals) {
				vals[k] = cur.SampleVals[j]
			}
			if !formatSeen[k] {
				formatSeen[k] = true
				format = append(format, k)
			}
		}
		perSample[i] = vals
	}
	if !formatSeen["GT"] {
		format = append([]string{"GT"}, format...)
	}
	return filters, format, perSample
}

// padAllele extends allele a (one of a record's REF/ALT sequences, whose
// REF is origRef) to match the merged locus's longestRef by appending the
// same suffix origRef gained.
func padAllele(a, origRef, longestRef string) string {
	if len(longestRef) <= len(origRef) || a == origRef {
		if a == origRef {
			return longestRef
		}
		return a
	}
	return a + longestRef[len(origRef):]
}

func hasNonRefGT(gt string) bool {
	for _, p := range strings.Split(gt, "/") {
		if p != "0" && p != "." && p != "" {
			return true
		}
	}
	return false
}

func (m *Merger) write(chrom string, pos int, altTable *alleleTable, gts []string, filters, format []string, perSample map[int]map[string]string) error {
	ref := altTable.ref
	alt := strings.Join(altTable.alts, ",")
	if alt == "" {
		alt = "."
	}
	filterField := "PASS"
	if len(filters) > 0 {
		filterField = strings.Join(filters, ";")
	}
	fields := []string{chrom, strconv.Itoa(pos), ".", ref, alt, ".", filterField, ".", strings.Join(format, ":")}
	for i, gt := range gts {
		fields = append(fields, sampleField(format, perSample[i], gt))
	}
	_, err := fmt.Fprintln(m.w, strings.Join(fields, "\t"))
	return err
}

// sampleField renders one sample's merged FORMAT-keyed column: GT takes the
// renumbered genotype already computed against the merged ALT table, every
// other unioned key takes that sample's own value if it carried one, and
// "." otherwise (including for a sample that did not win this locus at all).
func sampleField(format []string, vals map[string]string, gt string) string {
	parts := make([]string, len(format))
	for i, k := range format {
		if k == "GT" {
			parts[i] = gt
			continue
		}
		if v, ok := vals[k]; ok {
			parts[i] = v
		} else {
			parts[i] = "."
		}
	}
	return strings.Join(parts, ":")
}

// alleleTable accumulates the merged ALT list for one locus, assigning each
// distinct allele string the GT index it first appeared under.
type alleleTable struct {
	ref    string
	alts   []string
	lookup map[string]int
}

func newAlleleTable(ref string) *alleleTable {
	return &alleleTable{ref: ref, lookup: map[string]int{ref: 0}}
}

// gtFor renumbers a sample's resolved allele strings into this table's
// index space, registering any allele text not yet seen.
func (t *alleleTable) gtFor(alleles []string) string {
	idx := make([]string, len(alleles))
	for i, a := range alleles {
		if a == "." {
			idx[i] = "."
			continue
		}
		idx[i] = strconv.Itoa(t.indexOf(a))
	}
	return strings.Join(idx, "/")
}

func (t *alleleTable) indexOf(allele string) int {
	if i, ok := t.lookup[allele]; ok {
		return i
	}
	t.alts = append(t.alts, allele)
	i := len(t.alts)
	t.lookup[allele] = i
	return i
}
