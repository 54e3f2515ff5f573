package region

import (
	"io"
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

// HaploidConflictFilter is the FILTER label appended when an in-region
// record's diploid GT call has two different alleles and so cannot be
// losslessly coerced to haploid.
const HaploidConflictFilter = "HAPLOID_CONFLICT"

// SetHaploid returns a ProcessBlockFunc that, for in-region slices with a
// biallelic equal-allele GT, compresses the call to a single haploid allele
// and preserves the original likelihoods under FORMAT OPL (since PL's
// per-genotype-combination layout no longer applies to a haploid call).
// Unequal diploid calls are left as-is but flagged HAPLOID_CONFLICT.
// Out-of-region slices pass through unaltered aside from END bookkeeping.
func SetHaploid(w io.Writer) ProcessBlockFunc {
	return func(inRegion bool, end int, rec *vcf.Record) error {
		if end > rec.Pos {
			rec.SetInfoVal("END", strconv.Itoa(end))
		} else {
			rec.DeleteInfoKeyVal("END")
		}

		if inRegion {
			gt, hasGT := rec.SampleVal("GT")
			if hasGT {
				alleles := vcf.GTAlleles(gt)
				if len(alleles) == 2 {
					if alleles[0] == alleles[1] {
						hap := "."
						if alleles[0] >= 0 {
							hap = strconv.Itoa(alleles[0])
						}
						rec.SetSampleVal("GT", hap)
						if pl, ok := rec.SampleVal("PL"); ok {
							rec.SetSampleVal("OPL", pl)
							rec.DeleteSampleKeyVal("PL")
						}
					} else {
						rec.AppendFilter(HaploidConflictFilter)
					}
				}
			}
		}

		return rec.WriteUnaltered(w)
	}
}
