package blocker_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/blocker"
	"github.com/sequencing/gvcftools/vcf"
)

func rec(t *testing.T, line string) *vcf.Record {
	t.Helper()
	ls := vcf.NewLineSplitter(strings.NewReader(line + "\n"))
	ok, err := ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	r, err := vcf.ParseRecord(ls)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	return r
}

func TestIndelSiteOverlapReconciliation(t *testing.T) {
	// Deletion AGGG->A at pos 500 (span [500,503]), GT 0/1, QUAL 40;
	// overlapping site at 502 with GT 0/1, QUAL 90.
	var buf bytes.Buffer
	acc := blocker.NewAccumulator(&buf, blocker.DefaultOptions())
	rb := blocker.NewRecordBlocker(acc, blocker.DefaultOptions())

	if err := rb.Append(rec(t, "chr1\t500\t.\tAGGG\tA\t40\tPASS\t.\tGT\t0/1")); err != nil {
		t.Fatalf("Append indel error: %v", err)
	}
	if err := rb.Append(rec(t, "chr1\t502\t.\tG\tT\t90\tPASS\t.\tGT:PL\t0/1:0,10,90")); err != nil {
		t.Fatalf("Append site error: %v", err)
	}
	if err := rb.Finish(); err != nil {
		t.Fatalf("Finish error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "chr1\t500\t.\tAGGG\tA\t40\tPASS") {
		t.Fatalf("indel record should be unchanged (QUAL 40, GT 0/1):\n%s", out)
	}
	if !strings.Contains(out, "chr1\t502") {
		t.Fatalf("site record missing from output:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if strings.HasPrefix(line, "chr1\t502") {
			if !strings.Contains(line, "\t40\t") {
				t.Errorf("site QUAL should be lowered to 40: %q", line)
			}
			if strings.Contains(line, "PL") {
				t.Errorf("site PL should be removed: %q", line)
			}
		}
	}
}

func TestTwoIndelsFlagConflict(t *testing.T) {
	var buf bytes.Buffer
	acc := blocker.NewAccumulator(&buf, blocker.DefaultOptions())
	rb := blocker.NewRecordBlocker(acc, blocker.DefaultOptions())

	if err := rb.Append(rec(t, "chr1\t500\t.\tAGG\tA\t40\tPASS\t.\tGT\t0/1")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := rb.Append(rec(t, "chr1\t501\t.\tGGT\tG\t40\tPASS\t.\tGT\t0/1")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := rb.Finish(); err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "IndelConflict") < 2 {
		t.Fatalf("expected both indels flagged IndelConflict:\n%s", out)
	}
}
