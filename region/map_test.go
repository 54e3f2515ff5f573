package region_test

import (
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/region"
)

func TestLoadBEDConvertsAndMerges(t *testing.T) {
	bed := "chr1\t9\t20\nchr1\t19\t30\nchr1\t100\t110\n"
	m, err := region.LoadBED(strings.NewReader(bed))
	if err != nil {
		t.Fatalf("LoadBED error: %v", err)
	}
	if !m.HasChrom("chr1") {
		t.Fatalf("expected chr1 to have intervals")
	}
	c := m.NewCursor("chr1")
	inRegion, end, more := c.NextSlice(1, 200)
	if inRegion {
		t.Fatalf("expected out-of-region slice first")
	}
	if end != 9 {
		t.Fatalf("end = %d; want 9 (one before merged interval begin 10)", end)
	}
	if !more {
		t.Fatalf("expected more slices")
	}

	inRegion, end, more = c.NextSlice(end+1, 200)
	if !inRegion {
		t.Fatalf("expected in-region slice")
	}
	if end != 30 {
		t.Fatalf("end = %d; want 30 (merged interval end)", end)
	}
	if !more {
		t.Fatalf("expected more slices")
	}

	inRegion, end, more = c.NextSlice(end+1, 200)
	if inRegion {
		t.Fatalf("expected out-of-region slice before second interval")
	}
	if end != 100 {
		t.Fatalf("end = %d; want 100", end)
	}
	if !more {
		t.Fatalf("expected more slices")
	}

	inRegion, end, more = c.NextSlice(end+1, 200)
	if !inRegion || end != 110 {
		t.Fatalf("inRegion=%v end=%d; want true, 110", inRegion, end)
	}
	if !more {
		t.Fatalf("expected remaining out-of-region tail")
	}

	inRegion, end, more = c.NextSlice(end+1, 200)
	if inRegion || end != 200 || more {
		t.Fatalf("final slice: inRegion=%v end=%d more=%v; want false,200,false", inRegion, end, more)
	}
}

func TestCursorNoIntervalsAlwaysOutOfRegion(t *testing.T) {
	m := region.NewMap()
	c := m.NewCursor("chrZ")
	inRegion, end, more := c.NextSlice(1, 50)
	if inRegion || end != 50 || more {
		t.Fatalf("inRegion=%v end=%d more=%v; want false,50,false", inRegion, end, more)
	}
}

func TestLoadBEDSkipsTrackAndBrowserLines(t *testing.T) {
	bed := "track name=x\nbrowser position chr1:1-100\nchr1\t0\t10\n"
	m, err := region.LoadBED(strings.NewReader(bed))
	if err != nil {
		t.Fatalf("LoadBED error: %v", err)
	}
	if !m.HasChrom("chr1") {
		t.Fatalf("expected chr1 interval to be parsed")
	}
}
