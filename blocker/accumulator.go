package blocker

import (
	"io"
	"strconv"

	"github.com/sequencing/gvcftools/vcf"
)

// blockField tracks one of the three FORMAT tags a block run is tested on.
// The base record's value fixes the field's mode for the whole run: once
// seeded from an integer token, later members are tolerance-tested via
// Stat; once seeded from anything else, later members must match the
// base's token by exact string equality (there's no numeric tolerance to
// apply to an opaque or absent value).
type blockField struct {
	isIntSeries bool
	baseStr     string
	stat        Stat
}

func (f *blockField) seed(v vcf.MaybeInt) {
	f.baseStr = v.String()
	f.isIntSeries = v.IsInt()
	f.stat = Stat{}
	if f.isIntSeries {
		f.stat.Add(v.Int())
	}
}

// blockable reports whether v may extend this field without breaching
// tolerance, without committing v.
func (f *blockField) blockable(v vcf.MaybeInt, fracTol float64, absTol int) bool {
	if f.isIntSeries && v.IsInt() {
		return f.stat.Blockable(v.Int(), fracTol, absTol)
	}
	return v.String() == f.baseStr
}

// extend commits v, having already passed blockable, and reports whether
// this field has now been observed more than once (used to decide whether
// the flushed block is a true multi-site average rather than a singleton).
func (f *blockField) extend(v vcf.MaybeInt) (multi bool) {
	if f.isIntSeries && v.IsInt() {
		f.stat.Add(v.Int())
		return f.stat.Count() > 1
	}
	return false
}

// Accumulator holds the base record of a run of homogeneous non-variant
// sites and tests each candidate successor for admission, flushing a single
// compressed record once the run ends.
type Accumulator struct {
	opts Options
	w    io.Writer

	base     *vcf.GatkRecord
	count    int
	filters  []string
	gt       string
	covered  bool
	fldGQX   blockField
	fldDP    blockField
	fldMQ    blockField
	anyMulti bool
}

// NewAccumulator constructs an accumulator writing flushed blocks to w.
func NewAccumulator(w io.Writer, opts Options) *Accumulator {
	return &Accumulator{w: w, opts: opts}
}

// Empty reports whether the accumulator currently holds no base record.
func (a *Accumulator) Empty() bool { return a.base == nil }

// Add offers rec to the accumulator. If the accumulator is empty, rec
// becomes the new base. Otherwise rec is tested against the admission
// predicate; if it passes, it extends the run and is consumed; if not, the
// current run is flushed first and rec becomes the new base.
func (a *Accumulator) Add(rec *vcf.GatkRecord) error {
	if a.base == nil {
		a.start(rec)
		return nil
	}
	if a.admits(rec) {
		a.extend(rec)
		return nil
	}
	if err := a.Flush(); err != nil {
		return err
	}
	a.start(rec)
	return nil
}

func (a *Accumulator) start(rec *vcf.GatkRecord) {
	a.base = rec
	a.count = 1
	a.filters = append([]string(nil), rec.Filter...)
	a.gt = rec.GT()
	a.covered = rec.IsCovered()
	a.anyMulti = false
	if a.covered {
		a.fldGQX.seed(rec.GQX())
		a.fldDP.seed(rec.DP())
		a.fldMQ.seed(rec.MQ())
	}
}

func (a *Accumulator) admits(rec *vcf.GatkRecord) bool {
	if rec.Chrom != a.base.Chrom {
		return false
	}
	if rec.Pos != a.base.Pos+a.count {
		return false
	}
	if !sameFilters(rec.Filter, a.filters) {
		return false
	}
	if rec.GT() != a.gt {
		return false
	}
	if rec.IsCovered() != a.covered {
		return false
	}
	if !a.covered {
		return true
	}
	tol, abs := a.opts.BlockFracTol, a.opts.BlockAbsTol
	if !a.fldGQX.blockable(rec.GQX(), tol, abs) {
		return false
	}
	if !a.fldDP.blockable(rec.DP(), tol, abs) {
		return false
	}
	if !a.fldMQ.blockable(rec.MQ(), tol, abs) {
		return false
	}
	return true
}

func (a *Accumulator) extend(rec *vcf.GatkRecord) {
	a.count++
	if a.covered {
		if a.fldGQX.extend(rec.GQX()) {
			a.anyMulti = true
		}
		if a.fldDP.extend(rec.DP()) {
			a.anyMulti = true
		}
		if a.fldMQ.extend(rec.MQ()) {
			a.anyMulti = true
		}
	}
}

func sameFilters(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Flush writes the held run as a single compressed record and resets the
// accumulator to empty. A no-op if the accumulator is already empty.
func (a *Accumulator) Flush() error {
	if a.base == nil {
		return nil
	}
	rec := a.base.Clone()
	rec.Qual = "."
	rec.Format = nil
	rec.Sample = nil
	gt := a.gt
	if gt == "" {
		gt = "."
	}
	rec.Format = []string{"GT"}
	rec.Sample = []string{gt}

	rec.Info = nil
	if a.count > 1 {
		rec.SetInfoVal("END", strconv.Itoa(a.base.Pos+a.count-1))
	}

	if a.covered {
		writeMinTag(rec, "DP", &a.fldDP)
		writeMinTag(rec, "GQX", &a.fldGQX)
		writeMinTag(rec, "MQ", &a.fldMQ)
		if a.anyMulti {
			rec.SetInfoFlag(a.opts.BlockLabel)
		}
	}

	a.base = nil
	a.count = 0
	return rec.WriteUnaltered(a.w)
}

// WriteStandalone flushes any run in progress, then writes rec directly
// using the non-variant shorthand writer, bypassing block admission
// entirely. Used for records the groomer has determined cannot
// participate in run-length compression (a variant call, or a reference
// site with too little reference support).
func (a *Accumulator) WriteStandalone(rec *vcf.Record) error {
	if err := a.Flush(); err != nil {
		return err
	}
	return rec.WriteCompact(a.w)
}

func writeMinTag(rec *vcf.Record, tag string, f *blockField) {
	if !f.isIntSeries || f.stat.Empty() {
		rec.SetSampleVal(tag, ".")
		return
	}
	rec.SetSampleVal(tag, strconv.Itoa(f.stat.Min()))
}
