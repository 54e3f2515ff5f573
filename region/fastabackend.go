package region

import (
	"github.com/sequencing/gvcftools/encoding/fasta"
	"github.com/sequencing/gvcftools/vcf"
)

// fastaAccessor adapts an encoding/fasta.Fasta (0-based half-open
// coordinates) to the 1-based single-base FastaAccessor contract the
// region handlers are written against.
type fastaAccessor struct {
	fa fasta.Fasta
}

// NewFastaAccessor wraps fa as a FastaAccessor.
func NewFastaAccessor(fa fasta.Fasta) FastaAccessor {
	return &fastaAccessor{fa: fa}
}

func (a *fastaAccessor) BaseAt(chrom string, pos int) (byte, error) {
	s, err := a.fa.Get(chrom, uint64(pos-1), uint64(pos))
	if err != nil {
		return 0, err
	}
	if len(s) != 1 {
		return 0, vcf.NewError(vcf.KindOutOfRange, "position %d out of range on %s", pos, chrom)
	}
	return s[0], nil
}
