// Package cliopts collects the command-line flag surface shared by every
// gvcftools command, translating it into the Options structs the region,
// blocker, and crawler packages consume. Each tool's main.go registers
// Common, then any flags of its own, then calls grail.Init, which parses
// the flag set.
package cliopts

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sequencing/gvcftools/encoding/fasta"
	"github.com/sequencing/gvcftools/interval"
	"github.com/sequencing/gvcftools/region"
	"github.com/sequencing/gvcftools/vcf"
)

// Common holds the flags documented for "per tool" use: --ref,
// --region-file, --region, the threshold filters, chrom-depth/max-depth,
// blockable/block-range tuning, and the murdock/skip-header/exclude
// switches. A given tool only consults the subset relevant to it.
type Common struct {
	Ref              string
	RegionFile       string
	Region           string
	MinGQX           float64
	hasMinGQX        bool
	MinQD            float64
	hasMinQD         bool
	MinPosRankSum    float64
	hasMinPosRankSum bool
	MinInfoField     infoFieldFlag
	MaxInfoField     infoFieldFlag
	ChromDepthFile   string
	MaxDepthFactor   float64
	MinBlockableNR   float64
	BlockRangeFactor float64
	BlockLabel       string
	SkipHeader       bool
	NoDefaultFilters bool
	Exclude          stringListFlag
	Murdock          bool
}

// RegisterCommon declares every shared flag against the default flag.
// CommandLine and returns the struct grail.Init's flag parse will populate.
func RegisterCommon() *Common {
	c := &Common{}
	flag.StringVar(&c.Ref, "ref", "", "reference FASTA path (with a samtools .fai index alongside it)")
	flag.StringVar(&c.RegionFile, "region-file", "", "BED file restricting the operation to listed intervals")
	flag.StringVar(&c.Region, "region", "", "restrict to a single region: chrom, chrom:pos, or chrom:begin-end")
	flag.Var(newOptFloat(&c.MinGQX, &c.hasMinGQX), "min-gqx", "minimum GQX required to admit a call")
	flag.Var(newOptFloat(&c.MinQD, &c.hasMinQD), "min-qd", "minimum INFO QD required to admit a call")
	flag.Var(newOptFloat(&c.MinPosRankSum, &c.hasMinPosRankSum), "min-pos-rank-sum", "minimum INFO BaseQRankSum required to admit a call")
	flag.Var(&c.MinInfoField, "min-info-field", "\"KEY VAL\": filter records with INFO KEY below VAL (repeatable)")
	flag.Var(&c.MaxInfoField, "max-info-field", "\"KEY VAL\": filter records with INFO KEY above VAL (repeatable)")
	flag.StringVar(&c.ChromDepthFile, "chrom-depth-file", "", "path to <chrom>\\t<mean_depth> lines used for the MaxDepth filter")
	flag.Float64Var(&c.MaxDepthFactor, "max-depth-factor", 3.0, "MaxDepth filter fires above mean_depth * this factor")
	flag.Float64Var(&c.MinBlockableNR, "min-blockable-nonref", 0.2, "a site whose non-reference share of SAMPLE AD exceeds this fraction is not blocked")
	flag.Float64Var(&c.BlockRangeFactor, "block-range-factor", 0.3, "fractional tolerance for block-run admission")
	flag.StringVar(&c.BlockLabel, "block-label", "BLOCKAVG_min30p3a", "INFO flag name stamped on a compressed block")
	flag.BoolVar(&c.SkipHeader, "skip-header", false, "do not read or emit a VCF header; input begins at the first data line")
	flag.BoolVar(&c.NoDefaultFilters, "no-default-filters", false, "disable the GQX/chrom-depth default filters")
	flag.Var(&c.Exclude, "exclude", "chromosome to exclude from the operation (repeatable)")
	flag.BoolVar(&c.Murdock, "murdock", false, "permissive mode: drop out-of-order records (gvcf-merge, gvcf-trio, gvcf-twins) or unparsable records (gatk-to-gvcf, break-blocks, set-haploid-region) instead of failing")
	return c
}

// HasMinGQX, HasMinQD, HasMinPosRankSum report whether the corresponding
// flag was supplied at all, distinguishing "filter disabled" from "filter
// set to zero".
func (c *Common) HasMinGQX() bool        { return c.hasMinGQX }
func (c *Common) HasMinQD() bool         { return c.hasMinQD }
func (c *Common) HasMinPosRankSum() bool { return c.hasMinPosRankSum }

// RegionMap builds a region.Map from RegionFile and/or Region (a single
// region augments rather than replaces a region file, matching how the
// reference tools layer a --region restriction on top of a BED).
func (c *Common) RegionMap() (*region.Map, error) {
	m := region.NewMap()
	if c.RegionFile != "" {
		f, err := os.Open(c.RegionFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		loaded, err := region.LoadBED(f)
		if err != nil {
			return nil, err
		}
		m = loaded
	}
	if c.Region != "" {
		entry, err := interval.ParseRegionString(c.Region)
		if err != nil {
			return nil, err
		}
		m.Add(entry.ChrName, int(entry.Start0)+1, int(entry.End))
		m.Finalize()
	}
	return m, nil
}

// OpenFasta opens path alongside its samtools .fai index and returns a
// region.FastaAccessor backed by the indexed reader, so tools that
// random-access a handful of bases don't pay to load the whole genome into
// memory.
func OpenFasta(path string) (region.FastaAccessor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening reference %s", path)
	}
	idx, err := os.Open(path + ".fai")
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening reference index %s.fai", path)
	}
	defer idx.Close()
	fa, err := fasta.NewIndexed(f, idx)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "indexing reference %s", path)
	}
	return region.NewFastaAccessor(fa), nil
}

// OpenInput opens path for sequential reading, transparently decompressing
// it if its first two bytes carry the gzip magic number: a tabix-indexed
// gVCF file on disk is stored bgzf-compressed, which is valid concatenated
// gzip, so a gzip.Reader reads it sequentially start to end without
// needing the accompanying .tbi index at all.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening input %s", path)
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, errors.Wrapf(err, "reading input %s", path)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening gzip stream %s", path)
		}
		return &gzipFile{Reader: zr, f: f}, nil
	}
	return &plainFile{Reader: br, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

type plainFile struct {
	*bufio.Reader
	f *os.File
}

func (p *plainFile) Close() error { return p.f.Close() }

// DriveHeader feeds raw lines from r to hh until the header is consumed
// (hh.Valid() goes false after #CHROM), writing hh's output to w. r is a
// *bufio.Reader so the caller can hand the same reader to a
// vcf.LineSplitter afterward without losing any read-ahead.
func DriveHeader(r *bufio.Reader, w io.Writer, hh *vcf.HeaderHandler) error {
	for hh.Valid() {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" || err == nil {
			if _, herr := hh.ProcessLine(w, line); herr != nil {
				return herr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// CmdLine joins argv for the ##gvcftools_cmdline meta-value.
func CmdLine(argv []string) string {
	return strings.Join(argv, " ")
}

// ChromDepth parses ChromDepthFile into the mean-depth-per-chromosome map
// the header injector and the MaxDepth filter both consult.
func (c *Common) ChromDepth() (map[string]float64, error) {
	if c.ChromDepthFile == "" {
		return nil, nil
	}
	f, err := os.Open(c.ChromDepthFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out := make(map[string]float64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("chrom-depth-file: bad depth for %s: %v", fields[0], err)
		}
		out[fields[0]] = v
	}
	return out, sc.Err()
}

// IsExcluded reports whether chrom was named by a --exclude flag.
func (c *Common) IsExcluded(chrom string) bool {
	for _, x := range c.Exclude {
		if x == chrom {
			return true
		}
	}
	return false
}

// InfoFilters merges MinInfoField/MaxInfoField into the vcf.FilterSpec
// list the blocker/crawler Options consume.
func (c *Common) InfoFilters() []vcf.FilterSpec {
	var out []vcf.FilterSpec
	for _, f := range c.MinInfoField {
		out = append(out, vcf.FilterSpec{Label: f.Key, Scope: vcf.ScopeLocus, Tag: f.Key, FromInfo: true, LessThan: true, Thresh: f.Val})
	}
	for _, f := range c.MaxInfoField {
		out = append(out, vcf.FilterSpec{Label: f.Key, Scope: vcf.ScopeLocus, Tag: f.Key, FromInfo: true, LessThan: false, Thresh: f.Val})
	}
	return out
}

// optFloat is a flag.Value wrapping a float64 destination plus a "was it
// set" bool, letting a caller distinguish an explicit zero threshold from
// the filter being absent entirely.
type optFloat struct {
	dst *float64
	set *bool
}

func newOptFloat(dst *float64, set *bool) *optFloat { return &optFloat{dst: dst, set: set} }

func (o *optFloat) String() string {
	if o == nil || o.dst == nil {
		return ""
	}
	return strconv.FormatFloat(*o.dst, 'g', -1, 64)
}

func (o *optFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*o.dst = v
	*o.set = true
	return nil
}

// infoField is one parsed --min-info-field/--max-info-field occurrence.
type infoField struct {
	Key string
	Val float64
}

// infoFieldFlag accumulates repeated "KEY VAL" occurrences of an
// info-field flag.
type infoFieldFlag []infoField

func (f *infoFieldFlag) String() string {
	if f == nil {
		return ""
	}
	var parts []string
	for _, v := range *f {
		parts = append(parts, fmt.Sprintf("%s %g", v.Key, v.Val))
	}
	return strings.Join(parts, ",")
}

func (f *infoFieldFlag) Set(s string) error {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return fmt.Errorf("expected \"KEY VAL\", got %q", s)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("bad threshold in %q: %v", s, err)
	}
	*f = append(*f, infoField{Key: fields[0], Val: v})
	return nil
}

// stringListFlag accumulates repeated occurrences of a plain string flag.
type stringListFlag []string

func (f *stringListFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

func (f *stringListFlag) Set(s string) error {
	*f = append(*f, s)
	return nil
}
