package region

import (
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

// FastaAccessor is the random-access reference-base backend. It is an
// external collaborator: callers provide their own indexed-FASTA
// implementation (grailbio's encoding/fasta package is one such backend).
type FastaAccessor interface {
	// BaseAt returns the single reference base at the given 1-based
	// position on chrom.
	BaseAt(chrom string, pos int) (byte, error)
}

// ProcessBlockFunc is the per-slice callback a RegionHandler invokes once
// per (in_region, end) partition of an incoming record's span. rec is a
// clone of the input record with Pos and Ref already updated to the slice's
// start position (for a chromosome with no intervals, the input record
// itself, unchanged); the callback may mutate it freely and is responsible for
// writing it (or derived records) to the output.
type ProcessBlockFunc func(inRegion bool, end int, rec *vcf.Record) error

// Handler drives one VCF record at a time through a Map's per-chromosome
// cursor, slicing the record's span into in-region/out-of-region intervals
// and invoking a caller-supplied hook for each. It generalizes the
// reference implementation's abstract-base-class dispatch (break-blocks,
// set-haploid) into a single struct parameterized by a function value.
type Handler struct {
	regionMap *Map
	fasta     FastaAccessor
	process   ProcessBlockFunc

	lastChrom string
	cursor    *Cursor
}

// NewHandler builds a Handler that slices against regionMap, pulling
// reference bases from fasta, invoking process for every slice.
func NewHandler(regionMap *Map, fasta FastaAccessor, process ProcessBlockFunc) *Handler {
	return &Handler{regionMap: regionMap, fasta: fasta, process: process}
}

// ProcessRecord handles one input record: if its chromosome carries no
// configured intervals the record passes through with a single
// out-of-region slice spanning its whole range; otherwise its span is
// partitioned via the Map cursor and process is invoked once per slice,
// with REF refreshed from the FASTA accessor for every slice after the
// first.
func (h *Handler) ProcessRecord(rec *vcf.Record) error {
	begin := rec.Pos
	end := recordEnd(rec)
	if end < begin {
		return &vcf.Error{Kind: vcf.KindMalformedRecord, Msg: "INFO END precedes POS"}
	}

	if rec.Chrom != h.lastChrom {
		h.lastChrom = rec.Chrom
		h.cursor = h.regionMap.NewCursor(rec.Chrom)
	}
	if !h.regionMap.HasChrom(rec.Chrom) {
		return h.process(false, end, rec)
	}

	first := true
	for {
		inRegion, sliceEnd, more := h.cursor.NextSlice(begin, end)
		cur := rec.Clone()
		cur.Pos = begin
		if !first {
			base, err := h.fasta.BaseAt(rec.Chrom, begin)
			if err != nil {
				return err
			}
			cur.Ref = string(base)
		}
		if err := h.process(inRegion, sliceEnd, cur); err != nil {
			return err
		}
		if !more {
			return nil
		}
		begin = sliceEnd + 1
		first = false
	}
}

func recordEnd(rec *vcf.Record) int {
	if v, ok := rec.InfoVal("END"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return rec.Pos
}
