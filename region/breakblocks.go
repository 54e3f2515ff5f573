package region

import (
	"io"
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

// BreakBlocks returns a ProcessBlockFunc that expands every in-region
// compressed block into one record per base, writing to w. Out-of-region
// slices pass through as a single record with END adjusted (or removed, if
// the slice covers exactly one base) to the slice's own end.
func BreakBlocks(w io.Writer, fasta FastaAccessor) ProcessBlockFunc {
	return func(inRegion bool, end int, rec *vcf.Record) error {
		if !inRegion {
			if end > rec.Pos {
				rec.SetInfoVal("END", strconv.Itoa(end))
			} else {
				rec.DeleteInfoKeyVal("END")
			}
			return rec.WriteUnaltered(w)
		}

		rec.DeleteInfoKeyVal("END")
		chrom := rec.Chrom
		for pos := rec.Pos; pos <= end; pos++ {
			base, err := fasta.BaseAt(chrom, pos)
			if err != nil {
				return err
			}
			if err := rec.Write(w, chrom, pos, string(base)); err != nil {
				return err
			}
		}
		return nil
	}
}
