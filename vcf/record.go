package vcf

import (
	"bytes"
	"io"
	"strconv"
)

// Column indices into the 9 fixed VCF columns, plus the first sample column.
const (
	ColChrom = iota
	ColPos
	ColID
	ColRef
	ColAlt
	ColQual
	ColFilter
	ColInfo
	ColFormat
	ColSample
)

// Record is a single VCF data line, decomposed into its fixed columns plus
// however many sample columns follow. ParseRecord copies every field out of
// the LineSplitter's line buffer, so a Record stays valid after the splitter
// advances.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    []string
	Qual   string
	Filter []string
	Info   []string
	Format []string
	Sample []string

	modified bool
}

// ParseRecord splits a tab-delimited VCF data line (ChrCol..SampleCol) into a
// Record. It mirrors VcfRecord's constructor: REF must be non-empty, and
// there must be at least through the INFO column.
func ParseRecord(ls *LineSplitter) (*Record, error) {
	n := ls.NWord()
	if n <= ColInfo {
		return nil, newErr(KindMalformedRecord, ls.LineNo(), string(ls.Line()),
			"too few columns: got %d, need at least %d", n, ColInfo+1)
	}
	r := &Record{
		Chrom: string(ls.Word(ColChrom)),
		ID:    string(ls.Word(ColID)),
		Ref:   string(ls.Word(ColRef)),
		Qual:  string(ls.Word(ColQual)),
	}
	if len(r.Ref) == 0 {
		return nil, newErr(KindMalformedRecord, ls.LineNo(), string(ls.Line()), "empty REF field")
	}
	pos, err := strconv.Atoi(string(ls.Word(ColPos)))
	if err != nil {
		return nil, newErr(KindParseFailure, ls.LineNo(), string(ls.Line()), "bad POS: %v", err)
	}
	r.Pos = pos
	r.Alt = splitNonEmpty(ls.Word(ColAlt), ',')
	r.Filter = splitNonEmpty(ls.Word(ColFilter), ';')
	r.Info = splitNonEmpty(ls.Word(ColInfo), ';')
	if n > ColFormat {
		r.Format = splitNonEmpty(ls.Word(ColFormat), ':')
	}
	if n > ColSample {
		r.Sample = splitNonEmpty(ls.Word(ColSample), ':')
	}
	return r, nil
}

func splitNonEmpty(b []byte, sep byte) []string {
	if len(b) == 0 || (len(b) == 1 && b[0] == '.') {
		return nil
	}
	parts := bytes.Split(b, []byte{sep})
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

// Clone returns a deep copy whose slices are independent of r's, so either
// record can be mutated without affecting the other; used by the block
// accumulator and the region handler before they rewrite a record.
func (r *Record) Clone() *Record {
	c := *r
	c.Alt = append([]string(nil), r.Alt...)
	c.Filter = append([]string(nil), r.Filter...)
	c.Info = append([]string(nil), r.Info...)
	c.Format = append([]string(nil), r.Format...)
	c.Sample = append([]string(nil), r.Sample...)
	return &c
}

// IsIndel reports whether this record carries an indel allele: REF longer
// than one base, or any ALT allele whose length differs from REF's.
func (r *Record) IsIndel() bool {
	if len(r.Ref) > 1 {
		return true
	}
	for _, a := range r.Alt {
		if a == "." || len(a) == 0 {
			continue
		}
		if len(a) != len(r.Ref) {
			return true
		}
	}
	return false
}

// IsVariant reports whether this record asserts any alternate allele.
func (r *Record) IsVariant() bool {
	for _, a := range r.Alt {
		if a != "." && len(a) > 0 {
			return true
		}
	}
	return false
}

// IsNonvariantBlock reports whether this record is eligible to participate
// in block compression: no asserted ALT allele and a single-base REF.
func (r *Record) IsNonvariantBlock() bool {
	return !r.IsVariant() && len(r.Ref) == 1
}

// PassFilter reports whether the FILTER column is empty or the literal
// "PASS" marker.
func (r *Record) PassFilter() bool {
	return len(r.Filter) == 0 || (len(r.Filter) == 1 && r.Filter[0] == "PASS")
}

// AppendFilter adds tag to FILTER, first clearing a sole "PASS" placeholder.
func (r *Record) AppendFilter(tag string) {
	if len(r.Filter) == 1 && r.Filter[0] == "PASS" {
		r.Filter = r.Filter[:0]
	}
	for _, f := range r.Filter {
		if f == tag {
			return
		}
	}
	r.Filter = append(r.Filter, tag)
	r.modified = true
}

// InfoVal returns the value of the INFO key=value pair named key, and
// whether it was present. A flag-only INFO entry (no "=") returns ("", true).
func (r *Record) InfoVal(key string) (string, bool) {
	for _, kv := range r.Info {
		k, v, has := cutByte(kv, '=')
		if k == key {
			if has {
				return v, true
			}
			return "", true
		}
	}
	return "", false
}

// SetInfoVal sets (or replaces) the INFO entry for key.
func (r *Record) SetInfoVal(key, val string) {
	entry := key + "=" + val
	for i, kv := range r.Info {
		k, _, _ := cutByte(kv, '=')
		if k == key {
			r.Info[i] = entry
			r.modified = true
			return
		}
	}
	r.Info = append(r.Info, entry)
	r.modified = true
}

// SetInfoFlag sets (or replaces) a flag-only INFO entry (no "=value").
func (r *Record) SetInfoFlag(key string) {
	for i, kv := range r.Info {
		k, _, _ := cutByte(kv, '=')
		if k == key {
			r.Info[i] = key
			r.modified = true
			return
		}
	}
	r.Info = append(r.Info, key)
	r.modified = true
}

// DeleteInfoKeyVal removes the INFO entry for key, if present.
func (r *Record) DeleteInfoKeyVal(key string) {
	for i, kv := range r.Info {
		k, _, _ := cutByte(kv, '=')
		if k == key {
			r.Info = append(r.Info[:i], r.Info[i+1:]...)
			r.modified = true
			return
		}
	}
}

// SampleVal returns the value of the FORMAT-keyed field named key in the
// sole sample column, and whether that key is present in FORMAT.
func (r *Record) SampleVal(key string) (string, bool) {
	for i, f := range r.Format {
		if f == key {
			if i < len(r.Sample) {
				return r.Sample[i], true
			}
			return "", true
		}
	}
	return "", false
}

// SetSampleVal sets the FORMAT-keyed field named key, appending a new
// FORMAT/SAMPLE column pair if key is not already present.
func (r *Record) SetSampleVal(key, val string) {
	for i, f := range r.Format {
		if f == key {
			for len(r.Sample) <= i {
				r.Sample = append(r.Sample, ".")
			}
			r.Sample[i] = val
			r.modified = true
			return
		}
	}
	r.Format = append(r.Format, key)
	r.Sample = append(r.Sample, val)
	r.modified = true
}

// DeleteSampleKeyVal removes the FORMAT-keyed field named key, if present.
func (r *Record) DeleteSampleKeyVal(key string) {
	for i, f := range r.Format {
		if f == key {
			r.Format = append(r.Format[:i], r.Format[i+1:]...)
			if i < len(r.Sample) {
				r.Sample = append(r.Sample[:i], r.Sample[i+1:]...)
			}
			r.modified = true
			return
		}
	}
}

// ClearSample drops every FORMAT/SAMPLE field except GT. GT keeps its value,
// or becomes the no-call placeholder "." when the record had none.
func (r *Record) ClearSample() {
	gt, hasGT := r.SampleVal("GT")
	if !hasGT {
		gt = "."
	}
	r.Format = []string{"GT"}
	r.Sample = []string{gt}
	r.modified = true
}

// IsModified reports whether any mutator has touched this record since it
// was parsed or since the last call to ClearModified.
func (r *Record) IsModified() bool { return r.modified }

// ClearModified resets the modified flag, typically after a derived cache
// (such as GatkRecord's memoized GQX/DP/MQ) has been invalidated in response.
func (r *Record) ClearModified() { r.modified = false }

// Write emits the canonical tab-joined VCF line, using chrom/pos/ref in
// place of the record's own values so callers slicing a block into
// per-position records don't need to clone just to vary those three fields.
func (r *Record) Write(w io.Writer, chrom string, pos int, ref string) error {
	return writeFields(w,
		chrom,
		strconv.Itoa(pos),
		orDot(r.ID),
		orDot(ref),
		joinOrDot(r.Alt, ","),
		orDot(r.Qual),
		joinOrDot(r.Filter, ";"),
		joinOrDot(r.Info, ";"),
		joinOrDot(r.Format, ":"),
		joinOrDot(r.Sample, ":"),
	)
}

// WriteUnaltered writes the record using its own chrom/pos/ref verbatim.
func (r *Record) WriteUnaltered(w io.Writer) error {
	return r.Write(w, r.Chrom, r.Pos, r.Ref)
}

// WriteCompact writes the record using its own chrom/pos, with the
// single-base non-variant shorthand: REF becomes ".." when it is one base
// and no ALT allele is asserted; any other record keeps its literal REF.
// Used by the accumulator's WriteStandalone, which writes variant and
// non-variant records alike.
func (r *Record) WriteCompact(w io.Writer) error {
	ref := r.Ref
	if len(ref) == 1 && !r.IsVariant() {
		ref = ".."
	}
	return r.Write(w, r.Chrom, r.Pos, ref)
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func joinOrDot(ss []string, sep string) string {
	if len(ss) == 0 {
		return "."
	}
	var buf bytes.Buffer
	for i, s := range ss {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(s)
	}
	return buf.String()
}

func writeFields(w io.Writer, fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, f); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func cutByte(s string, sep byte) (before, after string, found bool) {
	i := bytes.IndexByte([]byte(s), sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
