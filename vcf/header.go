package vcf

import (
	"fmt"
	"io"
	"strings"
)

// Version is the gvcftools_version meta-value every command stamps into
// its output header.
const Version = "2.0.0"

// FilterScope names which record class a configured filter applies to, used
// only to render the FILTER header description.
type FilterScope string

const (
	ScopeSite  FilterScope = "Site"
	ScopeIndel FilterScope = "Indel"
	ScopeLocus FilterScope = "Locus"
)

// FilterSpec describes one configured threshold filter: a tag read from
// either INFO or SAMPLE, a direction, a threshold, and whether a missing
// value itself triggers the filter.
type FilterSpec struct {
	Label           string
	Scope           FilterScope
	Tag             string
	FromInfo        bool
	LessThan        bool // true: filter fires when value < Thresh; false: value > Thresh
	Thresh          float64
	FilterIfMissing bool
	IndelOnly       bool
	SiteOnly        bool
}

// Description renders the FILTER header wording: "<Scope> <Tag> is
// less|greater than <Thresh>[ or not present]".
func (f FilterSpec) Description() string {
	dir := "greater"
	if f.LessThan {
		dir = "less"
	}
	desc := fmt.Sprintf("%s %s is %s than %s", f.Scope, f.Tag, dir, formatThresh(f.Thresh))
	if f.FilterIfMissing {
		desc += " or not present"
	}
	return desc
}

func formatThresh(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

// HeaderOptions configures the metadata HeaderHandler injects before the
// #CHROM line.
type HeaderOptions struct {
	Version      string
	CmdLine      string
	BlockLabel   string
	BlockFracTol float64
	ChromDepth   map[string]float64
	MaxDepthFact float64
	Filters      []FilterSpec
	GQXFilter    *FilterSpec
}

var dropInfoPrefixes = []string{
	"INFO=<ID=AC",
	"INFO=<ID=AF",
	"INFO=<ID=AN",
}

// HeaderHandler streams a VCF header through, dropping deprecated INFO
// declarations and injecting the tool's own metadata immediately before the
// #CHROM line. Once #CHROM has been consumed, the handler marks itself
// invalid; any further call indicates a malformed or duplicated header.
type HeaderHandler struct {
	opts  HeaderOptions
	valid bool
	// emitted tracks "##FILTER=<ID=<label>" prefixes already written, so a
	// rerun over an already-processed file doesn't duplicate declarations.
	emitted map[string]bool
}

// NewHeaderHandler constructs a handler ready to consume a fresh header.
func NewHeaderHandler(opts HeaderOptions) *HeaderHandler {
	return &HeaderHandler{opts: opts, valid: true, emitted: make(map[string]bool)}
}

// Valid reports whether the handler is still willing to consume header
// lines; false once #CHROM has been seen or a malformed line was rejected.
func (h *HeaderHandler) Valid() bool { return h.valid }

// ProcessLine consumes one header line (including its leading '#'), writing
// it (or its replacement/injected metadata) to w. Returns false once the
// header is finished (after #CHROM) or if called on a non-header line.
func (h *HeaderHandler) ProcessLine(w io.Writer, line string) (bool, error) {
	if !h.valid {
		return false, newErr(KindBadHeader, 0, line, "header already finalized")
	}
	if !strings.HasPrefix(line, "#") {
		h.valid = false
		return false, newErr(KindBadHeader, 0, line, "expected header line, found data")
	}
	if strings.HasPrefix(line, "#CHROM") {
		if err := h.emitMeta(w); err != nil {
			return false, err
		}
		if err := writeLine(w, line); err != nil {
			return false, err
		}
		h.valid = false
		return false, nil
	}
	if h.isSkipLine(line) {
		return true, nil
	}
	if err := h.trackFilterLine(line); err != nil {
		return true, err
	}
	return true, writeLine(w, line)
}

func (h *HeaderHandler) isSkipLine(line string) bool {
	for _, pfx := range dropInfoPrefixes {
		if strings.HasPrefix(line, "##"+pfx) {
			return true
		}
	}
	return false
}

func (h *HeaderHandler) trackFilterLine(line string) error {
	const pfx = "##FILTER=<ID="
	if strings.HasPrefix(line, pfx) {
		rest := line[len(pfx):]
		if i := strings.IndexByte(rest, ','); i >= 0 {
			h.emitted[pfx+rest[:i]] = true
		}
	}
	return nil
}

func (h *HeaderHandler) emitMeta(w io.Writer) error {
	lines := []string{
		fmt.Sprintf(`##gvcftools_version="%s"`, h.opts.Version),
		fmt.Sprintf(`##gvcftools_cmdline="%s"`, h.opts.CmdLine),
		`##INFO=<ID=END,Number=1,Type=Integer,Description="Last reference position in this compressed block">`,
		fmt.Sprintf(`##INFO=<ID=%s,Number=0,Type=Flag,Description="Non-variant block is a summary of more than one genomic position, value reflects the minor allele count, block values are min(x) or flag if y <= max(x+3,(x*(1+%g)))">`, h.opts.BlockLabel, h.opts.BlockFracTol),
		`##FORMAT=<ID=MQ,Number=1,Type=Integer,Description="RMS Mapping Quality">`,
		`##FORMAT=<ID=GQX,Number=1,Type=Integer,Description="Minimum of {Genotype quality assuming variant,Genotype quality assuming non-variant}">`,
		`##FILTER=<ID=IndelConflict,Description="Site is within the uncertainty region of an indel call">`,
		`##FILTER=<ID=SiteConflict,Description="Site genotype conflicts with an overlapping indel call">`,
	}
	for _, l := range lines {
		if err := h.emitOnce(w, l); err != nil {
			return err
		}
	}
	if h.opts.ChromDepth != nil {
		spec := FilterSpec{Label: "MaxDepth", Scope: ScopeLocus, Tag: "DP", LessThan: false}
		if err := h.emitOnce(w, fmt.Sprintf(`##FILTER=<ID=MaxDepth,Description="Site depth is greater than %gx the mean chromosome depth">`, h.opts.MaxDepthFact)); err != nil {
			return err
		}
		_ = spec
		for _, chrom := range sortedKeys(h.opts.ChromDepth) {
			limit := h.opts.ChromDepth[chrom] * h.opts.MaxDepthFact
			if err := writeLine(w, fmt.Sprintf("##MaxDepth_%s=%g", chrom, limit)); err != nil {
				return err
			}
		}
	}
	if h.opts.GQXFilter != nil {
		if err := h.emitOnce(w, fmt.Sprintf(`##FILTER=<ID=%s,Description="%s">`, h.opts.GQXFilter.Label, h.opts.GQXFilter.Description())); err != nil {
			return err
		}
	}
	for _, f := range h.opts.Filters {
		if err := h.emitOnce(w, fmt.Sprintf(`##FILTER=<ID=%s,Description="%s">`, f.Label, f.Description())); err != nil {
			return err
		}
	}
	return nil
}

func (h *HeaderHandler) emitOnce(w io.Writer, line string) error {
	const pfx = "##FILTER=<ID="
	if strings.HasPrefix(line, pfx) {
		rest := line[len(pfx):]
		key := pfx
		if i := strings.IndexByte(rest, ','); i >= 0 {
			key = pfx + rest[:i]
		}
		if h.emitted[key] {
			return nil
		}
		h.emitted[key] = true
	}
	return writeLine(w, line)
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func writeLine(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
