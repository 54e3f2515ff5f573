package trio

import (
	"fmt"
	"io"
)

// Twin1 and Twin2 name the two positional slots a ConcordanceStats tracks,
// matching twins.cpp's sample_t enum.
const (
	Twin1 = iota
	Twin2
	numTwinSamples
)

var twinSampleLabel = [numTwinSamples]string{"twin1", "twin2"}

// ConcordanceStats accumulates twins.cpp's site_stats: per-sample mapped and
// called counts, and a breakdown of genotype-matching ("non-conflict") and
// genotype-mismatching ("conflict") calls by relation category. Unlike
// MendelStats, concordance has no notion of a child genotype, so its
// relation breakdown is one-dimensional.
type ConcordanceStats struct {
	RefSize, KnownSize    int
	SomeMapped, AllMapped int
	SomeCalled, AllCalled int
	Correct, Incorrect    int

	SampleMapped        [numTwinSamples]int
	SampleCalled        [numTwinSamples]int
	SampleSNP           [numTwinSamples]int
	SampleSNPHet        [numTwinSamples]int
	SampleSNPCorrectHet [numTwinSamples]int
	SampleSNPCorrectHom [numTwinSamples]int

	CorrectType   [numRelations]int
	IncorrectType [numRelations]int
}

// TwinSite bundles one position's crawler output for each twin.
type TwinSite struct {
	Twin1, Twin2 Position
}

// CheckConcordance evaluates one jointly-considered position across a pair
// of samples expected to carry identical genotypes, updating ss and
// reporting whether the site was a called, non-reference, discordant call
// (the condition twins.cpp's --conflict-file writes a position for).
func CheckConcordance(site TwinSite, refBase string, ss *ConcordanceStats) (conflict bool) {
	if refBase == "N" || refBase == "" {
		return false
	}

	members := [numTwinSamples]Position{site.Twin1, site.Twin2}

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

	t1, t2 := members[Twin1], members[Twin2]
	t1a, t1b := t1.Allele0, t1.Allele1
	t2a, t2b := t2.Allele0, t2.Allele1

	isCorrect := (t1a == t2a && t1b == t2b) || (t1b == t2a && t1a == t2b)
	isT1Hom := t1a == t1b
	isT2Hom := t2a == t2b

	if isCorrect {
		isRefCall := isT1Hom && isT2Hom && t1a == refBase
		if !isRefCall {
			st := classify(isT1Hom, isT2Hom, t1a, t2a, t1b, t2b)
			ss.Correct++
			ss.CorrectType[st]++

			if !isT1Hom {
				ss.SampleSNPCorrectHet[Twin1]++
			} else if t1a != refBase {
				ss.SampleSNPCorrectHom[Twin1]++
			}
			if !isT2Hom {
				ss.SampleSNPCorrectHet[Twin2]++
			} else if t2a != refBase {
				ss.SampleSNPCorrectHom[Twin2]++
			}
		}
		return false
	}

	st := classify(isT1Hom, isT2Hom, t1a, t2a, t1b, t2b)
	ss.Incorrect++
	ss.IncorrectType[st]++
	return true
}

// Report writes the same summary twins.cpp's report() prints.
func (ss *ConcordanceStats) Report(w io.Writer, cmdLine string) error {
	bw := &errWriter{w: w}
	fmt.Fprintf(bw, "CMDLINE %s\n\n", cmdLine)
	fmt.Fprintf(bw, "sites: %d\n", ss.RefSize)
	fmt.Fprintf(bw, "known_sites: %d\n\n", ss.KnownSize)
	for st, label := range twinSampleLabel {
		fmt.Fprintf(bw, "sites_mapped_%s: %d\n", label, ss.SampleMapped[st])
	}
	noneMapped := ss.KnownSize - (ss.SomeMapped + ss.AllMapped)
	fmt.Fprintf(bw, "sites_mapped_in_no_samples: %d\n", noneMapped)
	fmt.Fprintf(bw, "sites_mapped_in_some_samples: %d\n", ss.SomeMapped)
	fmt.Fprintf(bw, "sites_mapped_in_all_samples: %d\n\n", ss.AllMapped)
	for st, label := range twinSampleLabel {
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
	for st, label := range twinSampleLabel {
		het := ss.SampleSNPHet[st]
		hom := ss.SampleSNP[st] - het
		fmt.Fprintf(bw, "sites_with_snps_called_total_het_hom_het/hom_P(het)_%s: %d %d %d %g %g\n",
			label, ss.SampleSNP[st], het, hom, ratio(het, hom), ratio(het, hom+het))
	}
	fmt.Fprintf(bw, "sites_called_in_all_samples_with_snps_called_any_sample: %d\n", snps)
	fmt.Fprintf(bw, "fraction_of_snp_sites_in_conflict: %g\n\n", ratio(ss.Incorrect, snps))

	for st, label := range twinSampleLabel {
		het := ss.SampleSNPCorrectHet[st]
		hom := ss.SampleSNPCorrectHom[st]
		fmt.Fprintf(bw, "snp_non_conflict_total_het_hom_het/hom_P(het)_%s: %d %d %d %g %g\n",
			label, het+hom, het, hom, ratio(het, hom), ratio(het, hom+het))
	}
	bw.nl()

	for i := Relation(0); i < numRelations; i++ {
		fmt.Fprintf(bw, "snp_conflict_type_%s: %d\n", i, ss.IncorrectType[i])
	}
	bw.nl()
	for i := Relation(0); i < numRelations; i++ {
		fmt.Fprintf(bw, "snp_non_conflict_type_%s: %d\n", i, ss.CorrectType[i])
	}
	bw.nl()

	return bw.err
}
