package vcf_test

import (
	"strings"
	"testing"

	"github.com/sequencing/gvcftools/vcf"
)

func TestLineSplitterBasic(t *testing.T) {
	input := "chr1\t100\t.\tA\t.\t.\tPASS\t.\n\nchr1\t101\t.\tC\t.\t.\tPASS\t.\n"
	ls := vcf.NewLineSplitter(strings.NewReader(input))

	ok, err := ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() = %v, %v; want true, nil", ok, err)
	}
	if ls.NWord() != 8 {
		t.Fatalf("NWord() = %d; want 8", ls.NWord())
	}
	if string(ls.Word(0)) != "chr1" || string(ls.Word(1)) != "100" {
		t.Fatalf("unexpected fields: %q %q", ls.Word(0), ls.Word(1))
	}
	if ls.LineNo() != 1 {
		t.Fatalf("LineNo() = %d; want 1", ls.LineNo())
	}

	ok, err = ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() on blank line = %v, %v", ok, err)
	}
	if ls.NWord() != 1 || len(ls.Word(0)) != 0 {
		t.Fatalf("blank line should yield one zero-length word, got NWord=%d word=%q", ls.NWord(), ls.Word(0))
	}

	ok, err = ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	if string(ls.Word(1)) != "101" {
		t.Fatalf("unexpected POS field: %q", ls.Word(1))
	}

	ok, err = ls.Next()
	if ok || err != nil {
		t.Fatalf("Next() at EOF = %v, %v; want false, nil", ok, err)
	}
}

func TestLineSplitterNoTrailingNewline(t *testing.T) {
	ls := vcf.NewLineSplitter(strings.NewReader("chr1\t5\t.\tA\t.\t.\tPASS\t."))
	ok, err := ls.Next()
	if !ok || err != nil {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	if string(ls.Word(0)) != "chr1" {
		t.Fatalf("unexpected first field: %q", ls.Word(0))
	}
	ok, _ = ls.Next()
	if ok {
		t.Fatalf("expected EOF after sole unterminated line")
	}
}
