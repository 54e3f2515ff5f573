package blocker_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/blocker"
	"github.com/sequencing/gvcftools/vcf"
)

func gatk(t *testing.T, line string) *vcf.GatkRecord {
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
	return vcf.NewGatkRecord(r)
}

func TestAccumulatorBasicBlockEmit(t *testing.T) {
	opts := blocker.DefaultOptions()
	opts.BlockAbsTol = 3
	opts.BlockFracTol = 0.3
	opts.BlockLabel = "B"

	var buf bytes.Buffer
	acc := blocker.NewAccumulator(&buf, opts)

	records := []string{
		"chr1\t100\t.\tA\t.\t.\tPASS\t.\tGT:DP:MQ:GQ\t0/0:30:60:50",
		"chr1\t101\t.\tC\t.\t.\tPASS\t.\tGT:DP:MQ:GQ\t0/0:31:60:49",
		"chr1\t102\t.\tG\t.\t.\tPASS\t.\tGT:DP:MQ:GQ\t0/0:30:60:50",
	}
	for _, line := range records {
		if err := acc.Add(gatk(t, line)); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	if err := acc.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	got := buf.String()
	want := "chr1\t100\t.\tA\t.\t.\tPASS\tEND=102;B\tGT:DP:GQX:MQ\t0/0:30:49:60\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestAccumulatorBreaksOnChromChange(t *testing.T) {
	opts := blocker.DefaultOptions()
	var buf bytes.Buffer
	acc := blocker.NewAccumulator(&buf, opts)

	if err := acc.Add(gatk(t, "chr1\t1\t.\tA\t.\t.\tPASS\t.\tGT:DP\t0/0:10")); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := acc.Add(gatk(t, "chr2\t1\t.\tA\t.\t.\tPASS\t.\tGT:DP\t0/0:10")); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := acc.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) != 2 {
		t.Fatalf("expected 2 flushed records across chromosomes, got %d: %v", len(out), out)
	}
}

func TestAccumulatorSingleSiteHasNoEndTag(t *testing.T) {
	opts := blocker.DefaultOptions()
	var buf bytes.Buffer
	acc := blocker.NewAccumulator(&buf, opts)
	if err := acc.Add(gatk(t, "chr1\t5\t.\tA\t.\t.\tPASS\t.\tGT:DP\t0/0:20")); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := acc.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if strings.Contains(buf.String(), "END=") {
		t.Fatalf("single-site block should not carry END: %q", buf.String())
	}
}
