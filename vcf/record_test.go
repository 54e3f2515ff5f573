package vcf_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/vcf"
)

func parseOne(t *testing.T, line string) *vcf.Record {
	t.Helper()
	ls := vcf.NewLineSplitter(strings.NewReader(line + "\n"))
	ok, err := ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	r, err := vcf.ParseRecord(ls)
	if err != nil {
		t.Fatalf("ParseRecord() error: %v", err)
	}
	return r
}

func TestParseRecordFields(t *testing.T) {
	r := parseOne(t, "chr1\t100\t.\tA\tC,G\t50\tPASS\tDP=30\tGT:DP\t0/1:30")
	if r.Chrom != "chr1" || r.Pos != 100 || r.Ref != "A" {
		t.Fatalf("unexpected core fields: %+v", r)
	}
	if len(r.Alt) != 2 || r.Alt[0] != "C" || r.Alt[1] != "G" {
		t.Fatalf("unexpected ALT: %v", r.Alt)
	}
	if v, ok := r.InfoVal("DP"); !ok || v != "30" {
		t.Fatalf("InfoVal(DP) = %q, %v", v, ok)
	}
	if v, ok := r.SampleVal("GT"); !ok || v != "0/1" {
		t.Fatalf("SampleVal(GT) = %q, %v", v, ok)
	}
}

func TestParseRecordRejectsEmptyRef(t *testing.T) {
	ls := vcf.NewLineSplitter(strings.NewReader("chr1\t100\t.\t\t.\t.\tPASS\t.\n"))
	ok, _ := ls.Next()
	if !ok {
		t.Fatal("Next() failed")
	}
	if _, err := vcf.ParseRecord(ls); err == nil {
		t.Fatal("expected error for empty REF")
	}
}

func TestParseRecordRejectsTooFewColumns(t *testing.T) {
	ls := vcf.NewLineSplitter(strings.NewReader("chr1\t100\t.\tA\n"))
	ok, _ := ls.Next()
	if !ok {
		t.Fatal("Next() failed")
	}
	if _, err := vcf.ParseRecord(ls); err == nil {
		t.Fatal("expected error for too few columns")
	}
}

func TestAppendFilterClearsPass(t *testing.T) {
	r := parseOne(t, "chr1\t1\t.\tA\t.\t.\tPASS\t.")
	r.AppendFilter("LowGQX")
	if len(r.Filter) != 1 || r.Filter[0] != "LowGQX" {
		t.Fatalf("Filter = %v", r.Filter)
	}
	r.AppendFilter("LowGQX")
	if len(r.Filter) != 1 {
		t.Fatalf("duplicate filter appended: %v", r.Filter)
	}
}

func TestSetAndDeleteInfo(t *testing.T) {
	r := parseOne(t, "chr1\t1\t.\tA\t.\t.\tPASS\tDP=10;MQ=60")
	r.SetInfoVal("MQ", "59")
	if v, _ := r.InfoVal("MQ"); v != "59" {
		t.Fatalf("SetInfoVal did not replace in place: %v", r.Info)
	}
	r.DeleteInfoKeyVal("DP")
	if _, ok := r.InfoVal("DP"); ok {
		t.Fatalf("DP not deleted: %v", r.Info)
	}
}

func TestSetSampleValAppends(t *testing.T) {
	r := parseOne(t, "chr1\t1\t.\tA\t.\t.\tPASS\t.\tGT\t0/0")
	r.SetSampleVal("GQX", "40")
	if len(r.Format) != 2 || r.Format[1] != "GQX" || r.Sample[1] != "40" {
		t.Fatalf("unexpected format/sample: %v %v", r.Format, r.Sample)
	}
}

func TestClearSampleScrubs(t *testing.T) {
	r := parseOne(t, "chr1\t1\t.\tA\t.\t90\tPASS\t.\tGT:PL:GQ\t0/1:0,10,20:40")
	r.ClearSample()
	if len(r.Format) != 1 || r.Format[0] != "GT" || r.Sample[0] != "0/1" {
		t.Fatalf("ClearSample did not preserve GT: %v %v", r.Format, r.Sample)
	}
}

func TestWriteCompactNonVariantShorthand(t *testing.T) {
	r := parseOne(t, "chr1\t5\t.\tA\t.\t.\tPASS\t.")
	var buf bytes.Buffer
	if err := r.WriteCompact(&buf); err != nil {
		t.Fatalf("WriteCompact error: %v", err)
	}
	got := buf.String()
	want := "chr1\t5\t.\t..\t.\t.\tPASS\t.\t.\t.\n"
	if got != want {
		t.Fatalf("WriteCompact() = %q; want %q", got, want)
	}
}

func TestWriteUnalteredKeepsLiteralRef(t *testing.T) {
	r := parseOne(t, "chr1\t5\t.\tA\t.\t.\tPASS\t.")
	var buf bytes.Buffer
	if err := r.WriteUnaltered(&buf); err != nil {
		t.Fatalf("WriteUnaltered error: %v", err)
	}
	got := buf.String()
	want := "chr1\t5\t.\tA\t.\t.\tPASS\t.\t.\t.\n"
	if got != want {
		t.Fatalf("WriteUnaltered() = %q; want %q", got, want)
	}
}

func TestWriteVariantKeepsRef(t *testing.T) {
	r := parseOne(t, "chr1\t5\t.\tA\tC\t50\tPASS\t.")
	var buf bytes.Buffer
	if err := r.WriteUnaltered(&buf); err != nil {
		t.Fatalf("WriteUnaltered error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "chr1\t5\t.\tA\tC\t") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
