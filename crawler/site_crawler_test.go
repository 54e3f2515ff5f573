package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFasta struct{ base byte }

func (s stubFasta) BaseAt(chrom string, pos int) (byte, error) { return s.base, nil }

func TestSiteCrawlerExpandsBlock(t *testing.T) {
	in := "chr1\t100\t.\tA\t.\t.\tPASS\tEND=103\tGT\t0/0\n"
	c := NewSiteCrawler(strings.NewReader(in), stubFasta{base: 'A'}, Options{})

	var positions []int
	for c.Update() {
		positions = append(positions, c.Current().Pos)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []int{100, 101, 102, 103}, positions)
}

func TestSiteCrawlerSkipsIndelCallRange(t *testing.T) {
	in := "" +
		"chr1\t500\t.\tAGGG\tA\t.\tPASS\t.\tGT\t0/1\n" +
		"chr1\t501\t.\tG\t.\t.\tPASS\t.\tGT\t0/0\n" +
		"chr1\t503\t.\tG\t.\t.\tPASS\t.\tGT\t0/0\n"
	c := NewSiteCrawler(strings.NewReader(in), stubFasta{base: 'G'}, Options{})

	var positions []int
	for c.Update() {
		positions = append(positions, c.Current().Pos)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []int{503}, positions)
}

func TestSiteCrawlerRejectsPositionRegression(t *testing.T) {
	in := "chr1\t200\t.\tA\t.\t.\tPASS\t.\tGT\t0/0\n" +
		"chr1\t150\t.\tA\t.\t.\tPASS\t.\tGT\t0/0\n"
	c := NewSiteCrawler(strings.NewReader(in), stubFasta{base: 'A'}, Options{})

	require.True(t, c.Update())
	require.False(t, c.Update())
	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "PositionOrder")
}

func TestSiteCrawlerMurdockDropsRegression(t *testing.T) {
	in := "chr1\t200\t.\tA\t.\t.\tPASS\t.\tGT\t0/0\n" +
		"chr1\t150\t.\tA\t.\t.\tPASS\t.\tGT\t0/0\n" +
		"chr1\t201\t.\tA\t.\t.\tPASS\t.\tGT\t0/0\n"
	c := NewSiteCrawler(strings.NewReader(in), stubFasta{base: 'A'}, Options{Murdock: true})

	var positions []int
	for c.Update() {
		positions = append(positions, c.Current().Pos)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []int{200, 201}, positions)
}

func TestSiteCrawlerRegionBounds(t *testing.T) {
	in := "chr1\t100\t.\tA\t.\t.\tPASS\tEND=110\tGT\t0/0\n"
	c := NewSiteCrawler(strings.NewReader(in), stubFasta{base: 'A'}, Options{
		HasRegion: true, RegionBegin: 104, RegionEnd: 106,
	})

	var positions []int
	for c.Update() {
		positions = append(positions, c.Current().Pos)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []int{104, 105, 106}, positions)
}
