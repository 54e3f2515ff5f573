package vcf_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/vcf"
)

func TestHeaderHandlerDropsDeprecatedInfoAndInjectsMeta(t *testing.T) {
	h := vcf.NewHeaderHandler(vcf.HeaderOptions{
		Version:      "1.0",
		CmdLine:      "gatk-to-gvcf --ref ref.fa",
		BlockLabel:   "BLOCKAVG_min30p3a",
		BlockFracTol: 0.3,
	})
	var buf bytes.Buffer
	lines := []string{
		`##fileformat=VCFv4.1`,
		`##INFO=<ID=AC,Number=A,Type=Integer,Description="Allele count">`,
		`##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">`,
		`#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tSAMPLE`,
	}
	for _, l := range lines {
		more, err := h.ProcessLine(&buf, l)
		if err != nil {
			t.Fatalf("ProcessLine(%q) error: %v", l, err)
		}
		if !more && l != lines[len(lines)-1] {
			t.Fatalf("handler stopped early at %q", l)
		}
	}
	if h.Valid() {
		t.Fatalf("handler should be invalid after #CHROM")
	}
	out := buf.String()
	if strings.Contains(out, "INFO=<ID=AC") {
		t.Fatalf("deprecated AC declaration was not dropped:\n%s", out)
	}
	if !strings.Contains(out, "INFO=<ID=DP") {
		t.Fatalf("DP declaration was dropped unexpectedly:\n%s", out)
	}
	for _, want := range []string{
		`gvcftools_version`,
		`gvcftools_cmdline`,
		`INFO=<ID=END`,
		`BLOCKAVG_min30p3a`,
		`FORMAT=<ID=MQ`,
		`FORMAT=<ID=GQX`,
		`FILTER=<ID=IndelConflict`,
		`FILTER=<ID=SiteConflict`,
		`#CHROM`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHeaderHandlerFilterDescription(t *testing.T) {
	h := vcf.NewHeaderHandler(vcf.HeaderOptions{
		Filters: []vcf.FilterSpec{
			{Label: "LowGQX", Scope: vcf.ScopeSite, Tag: "GQX", LessThan: true, Thresh: 30, FilterIfMissing: true},
		},
	})
	var buf bytes.Buffer
	if _, err := h.ProcessLine(&buf, "#CHROM"); err != nil {
		t.Fatalf("ProcessLine error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Site GQX is less than 30 or not present") {
		t.Fatalf("unexpected filter description:\n%s", out)
	}
}
