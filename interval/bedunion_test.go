package interval

import (
	"math"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestLoadSortedBEDIntervals(t *testing.T) {
	bed := "chr1\t100\t200\n" +
		"chr1\t200\t250\n" + // touches the previous interval; should merge
		"chr1\t300\t400\n" +
		"chr2\t10\t20\n"

	u, err := NewBEDUnion(strings.NewReader(bed), NewBEDOpts{})
	expect.NoError(t, err)

	cases := []struct {
		chr  string
		pos  PosType
		want bool
	}{
		{"chr1", 99, false},
		{"chr1", 100, true},
		{"chr1", 199, true},
		{"chr1", 249, true},
		{"chr1", 250, false},
		{"chr1", 300, true},
		{"chr1", 399, true},
		{"chr1", 400, false},
		{"chr2", 10, true},
		{"chr2", 20, false},
		{"chr3", 0, false},
	}
	for _, tt := range cases {
		if got := u.ContainsByName(tt.chr, tt.pos); got != tt.want {
			t.Errorf("ContainsByName(%q, %d) = %v, want %v", tt.chr, tt.pos, got, tt.want)
		}
	}
}

func TestLoadSortedBEDIntervalsInverted(t *testing.T) {
	bed := "chr1\t100\t200\n"
	u, err := NewBEDUnion(strings.NewReader(bed), NewBEDOpts{Invert: true})
	expect.NoError(t, err)

	if u.ContainsByName("chr1", 150) {
		t.Errorf("inverted union should exclude the original interval")
	}
	if !u.ContainsByName("chr1", 50) {
		t.Errorf("inverted union should include positions before the original interval")
	}
	if !u.ContainsByName("chr1", 500) {
		t.Errorf("inverted union should include positions after the original interval")
	}
}

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		chrName string
		start0  PosType
		end     PosType
	}{
		{
			"chr1:1-1000",
			"chr1",
			0,
			1000,
		},
		{
			"chr1:1000",
			"chr1",
			999,
			1000,
		},
		{
			"chr1",
			"chr1",
			0,
			math.MaxInt32 - 1,
		},
	}

	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		expect.NoError(t, err)
		expect.EQ(t, tt.chrName, result.ChrName)
		expect.EQ(t, tt.start0, result.Start0)
		expect.EQ(t, tt.end, result.End)
	}
}

func TestParseRegionStringErrors(t *testing.T) {
	for _, region := range []string{"", ":100", "chr1:0-10", "chr1:10-5"} {
		if _, err := ParseRegionString(region); err == nil {
			t.Errorf("ParseRegionString(%q) should have failed", region)
		}
	}
}

func TestNewBEDUnionFromEntries(t *testing.T) {
	entries := []Entry{
		{ChrName: "chr1", Start0: 100, End: 200},
		{ChrName: "chr1", Start0: 150, End: 300}, // overlaps; should merge
		{ChrName: "chr2", Start0: 0, End: 10},
	}
	u, err := NewBEDUnionFromEntries(entries, NewBEDOpts{})
	expect.NoError(t, err)

	if !u.ContainsByName("chr1", 250) {
		t.Errorf("expected merged interval to cover position 250")
	}
	if u.ContainsByName("chr1", 300) {
		t.Errorf("end coordinate is exclusive; 300 should not be contained")
	}
	if !u.ContainsByName("chr2", 5) {
		t.Errorf("expected chr2 interval to be loaded")
	}
}
