package trio

import (
	"fmt"
	"io"

	"github.com/sequencing/gvcftools/crawler"
)

// Mother, Father and Child name the three positional slots a MendelStats tracks,
// matching trio.cpp's sample_t enum and sample_label array.
const (
	Mother = iota
	Father
	Child
	numTrioSamples
)

var trioSampleLabel = [numTrioSamples]string{"mother", "father", "child"}

// MendelStats accumulates the same per-site tallies trio.cpp's site_stats
// does: how many sites each sample mapped and called, how many called SNPs
// were consistent with mendelian inheritance versus in conflict, and a
// breakdown of both by parent genotype relation and child zygosity.
type MendelStats struct {
	RefSize, KnownSize int
	SomeMapped, AllMapped int
	SomeCalled, AllCalled int
	Correct, Incorrect    int

	SampleMapped          [numTrioSamples]int
	SampleCalled          [numTrioSamples]int
	SampleSNP             [numTrioSamples]int
	SampleSNPHet          [numTrioSamples]int
	SampleSNPCorrectHet   [numTrioSamples]int
	SampleSNPCorrectHom   [numTrioSamples]int

	CorrectType   [numRelations][2]int
	IncorrectType [numRelations][2]int
}

const (
	homChild = 0
	hetChild = 1
)

// TrioSite bundles one position's crawler output for each trio member,
// present reporting whether that member's cursor is actually sitting on the
// position under consideration this round (a member that fell behind or ran
// ahead contributes nothing but an "unmapped" tally, exactly as
// accumulate_region_statistics treats a sample whose site_crawler isn't at
// low_pos).
type TrioSite struct {
	Mother, Father, Child Position
}

// Position is the subset of crawler.Position the mendelian/concordance
// checks consult: whether the cursor is actually on this round's position,
// its total depth, whether it is a usable call, and its two resolved
// homolog alleles.
type Position struct {
	Present bool
	NTotal  int
	IsCall  bool
	Allele0 string
	Allele1 string
}

// FromCrawlerPosition adapts a crawler.Position at the current co-traversal
// round into the Position shape CheckMendel/CheckConcordance consult.
// ok should be false when this sample's crawler is not currently sitting on
// the round's position at all.
func FromCrawlerPosition(p crawler.Position, ok bool) Position {
	if !ok || len(p.Alleles) < 2 {
		return Position{Present: ok, NTotal: p.NTotal, IsCall: false}
	}
	return Position{
		Present: true,
		NTotal:  p.NTotal,
		IsCall:  p.IsCall,
		Allele0: p.Alleles[0],
		Allele1: p.Alleles[1],
	}
}

// CheckMendel evaluates one jointly-considered position across a trio,
// updating ss and reporting whether the site was a called, non-reference,
// mendelian-inconsistent SNP (the condition trio.cpp's --conflict-file
// writes a position for). refBase is the reference base at this position;
// an "N" reference is skipped entirely, matching processSite's early return.
func CheckMendel(site TrioSite, refBase string, ss *MendelStats) (conflict bool) {
	if refBase == "N" || refBase == "" {
		return false
	}

	members := [numTrioSamples]Position{site.Mother, site.Father, site.Child}

	isAllMapped, isAnyMapped := true, false
	isAllCalled, isAnyCalled := true, false
	for st, m := range members {
		if m.Present && m.NTotal != 0 {
			ss.SampleMapped[st]++
			isAnyMapped = true
		} else {
			isAllMapped = false
		}
		if m.Present && m.IsCall {
			ss.SampleCalled[st]++
			if !(refBase == m.Allele0 && refBase == m.Allele1) {
				ss.SampleSNP[st]++
				if m.Allele0 != m.Allele1 {
					ss.SampleSNPHet[st]++
				}
			}
			isAnyCalled = true
		} else {
			isAllCalled = false
		}
	}

	if !isAllMapped {
		if isAnyMapped {
			ss.SomeMapped++
		}
	} else {
		ss.AllMapped++
	}

	if !isAllCalled {
		if isAnyCalled {
			ss.SomeCalled++
		}
		return false
	}
	ss.AllCalled++

	m, f, c := members[Mother], members[Father], members[Child]
	c1, c2 := c.Allele0, c.Allele1
	f1, f2 := f.Allele0, f.Allele1
	m1, m2 := m.Allele0, m.Allele1

	isc1f := c1 == f1 || c1 == f2
	isc1m := c1 == m1 || c1 == m2
	isc2f := c2 == f1 || c2 == f2
	isc2m := c2 == m1 || c2 == m2
	isCorrect := (isc1f && isc2m) || (isc1m && isc2f)

	isChildHom := c1 == c2
	isMotherHom := m1 == m2
	isFatherHom := f1 == f2

	childState := hetChild
	if isChildHom {
		childState = homChild
	}

	if isCorrect {
		isRefCall := isChildHom && isMotherHom && isFatherHom && c1 == refBase
		if !isRefCall {
			pt := classify(isMotherHom, isFatherHom, m1, f1, m2, f2)
			ss.Correct++
			ss.CorrectType[pt][childState]++

			if !isMotherHom {
				ss.SampleSNPCorrectHet[Mother]++
			} else if m1 != refBase {
				ss.SampleSNPCorrectHom[Mother]++
			}
			if !isFatherHom {
				ss.SampleSNPCorrectHet[Father]++
			} else if f1 != refBase {
				ss.SampleSNPCorrectHom[Father]++
			}
			if !isChildHom {
				ss.SampleSNPCorrectHet[Child]++
			} else if c1 != refBase {
				ss.SampleSNPCorrectHom[Child]++
			}
		}
		return false
	}

	pt := classify(isMotherHom, isFatherHom, m1, f1, m2, f2)
	ss.Incorrect++
	ss.IncorrectType[pt][childState]++
	return true
}

// Report writes the same summary trio.cpp's report() prints: coverage
// fractions, per-sample SNP/het/hom breakdowns, and the conflict/non-conflict
// counts by parent-relation and child-zygosity category.
func (ss *MendelStats) Report(w io.Writer, cmdLine string) error {
	bw := &errWriter{w: w}
	fmt.Fprintf(bw, "CMDLINE %s\n\n", cmdLine)
	fmt.Fprintf(bw, "sites: %d\n", ss.RefSize)
	fmt.Fprintf(bw, "known_sites: %d\n\n", ss.KnownSize)
	for st, label := range trioSampleLabel {
		fmt.Fprintf(bw, "sites_mapped_%s: %d\n", label, ss.SampleMapped[st])
	}
	noneMapped := ss.KnownSize - (ss.SomeMapped + ss.AllMapped)
	fmt.Fprintf(bw, "sites_mapped_in_no_samples: %d\n", noneMapped)
	fmt.Fprintf(bw, "sites_mapped_in_some_samples: %d\n", ss.SomeMapped)
	fmt.Fprintf(bw, "sites_mapped_in_all_samples: %d\n\n", ss.AllMapped)
	for st, label := range trioSampleLabel {
		fmt.Fprintf(bw, "sites_called_%s: %d\n", label, ss.SampleCalled[st])
	}
	noneCalled := ss.KnownSize - (ss.SomeCalled + ss.AllCalled)
	fmt.Fprintf(bw, "sites_called_in_no_samples: %d\n", noneCalled)
	fmt.Fprintf(bw, "sites_called_in_some_samples: %d\n", ss.SomeCalled)
	fmt.Fprintf(bw, "sites_called_in_all_samples: %d\n", ss.AllCalled)
	fmt.Fprintf(bw, "sites_called_in_all_samples_conflict: %d\n", ss.Incorrect)
	fmt.Fprintf(bw, "fraction_of_known_sites_called_in_all_samples: %g\n", ratio(ss.AllCalled, ss.KnownSize))
	fmt.Fprintf(bw, "fraction_of_sites_called_in_all_samples_in_conflict: %g\n\n", ratio(ss.Incorrect, ss.AllCalled))

	snps := ss.Correct + ss.Incorrect
	for st, label := range trioSampleLabel {
		het := ss.SampleSNPHet[st]
		hom := ss.SampleSNP[st] - het
		fmt.Fprintf(bw, "sites_with_snps_called_total_het_hom_het/hom_P(het)_%s: %d %d %d %g %g\n",
			label, ss.SampleSNP[st], het, hom, ratio(het, hom), ratio(het, hom+het))
	}
	fmt.Fprintf(bw, "sites_called_in_all_samples_with_snps_called_any_sample: %d\n", snps)
	fmt.Fprintf(bw, "fraction_of_snp_sites_in_conflict: %g\n\n", ratio(ss.Incorrect, snps))

	for st, label := range trioSampleLabel {
		het := ss.SampleSNPCorrectHet[st]
		hom := ss.SampleSNPCorrectHom[st]
		fmt.Fprintf(bw, "snp_non_conflict_total_het_hom_het/hom_P(het)_%s: %d %d %d %g %g\n",
			label, het+hom, het, hom, ratio(het, hom), ratio(het, hom+het))
	}
	bw.nl()

	for i := Relation(0); i < numRelations; i++ {
		for j := 0; j < 2; j++ {
			fmt.Fprintf(bw, "snp_conflict_type_parent-%s_child-%s: %d\n", i, childLabel(j), ss.IncorrectType[i][j])
		}
	}
	bw.nl()
	for i := Relation(0); i < numRelations; i++ {
		for j := 0; j < 2; j++ {
			fmt.Fprintf(bw, "snp_non_conflict_type_parent-%s_child-%s: %d\n", i, childLabel(j), ss.CorrectType[i][j])
		}
	}
	bw.nl()

	sheHet := ss.CorrectType[SameHet][hetChild]
	sheHom := ss.CorrectType[SameHet][homChild]
	sheAll := sheHet + sheHom
	fmt.Fprintf(bw, "P(child-het|parent-samehet) for non-conflicting snps (neutral site expect 1/2): %g\n", ratio(sheHet, sheAll))
	dhoAll := ss.CorrectType[DiffHom][hetChild] + ss.CorrectType[DiffHom][homChild]
	fmt.Fprintf(bw, "P(parent-samehet|(parent-samehet or parent-diffhom)) for non-conflicting snps (neutral site expect 2/3): %g\n", ratio(sheAll, sheAll+dhoAll))

	return bw.err
}

func childLabel(j int) string {
	if j == homChild {
		return "hom"
	}
	return "het"
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func (e *errWriter) nl() { fmt.Fprintln(e, "") }
