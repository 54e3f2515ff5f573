package main

/*
gvcf-twins co-traverses a pair of single-sample gVCF files expected to carry
identical genotypes (monozygotic twins, or a sample run in replicate) and
reports concordance statistics: how many sites each sample maps and calls,
and how many jointly-called, non-reference sites agree versus disagree.
Discordant positions are optionally written to a file for review.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/sequencing/gvcftools/cmd/internal/cliopts"
	"github.com/sequencing/gvcftools/crawler"
	"github.com/sequencing/gvcftools/region"
	"github.com/sequencing/gvcftools/trio"
	"github.com/sequencing/gvcftools/vcf"
)

func main() {
	common := cliopts.RegisterCommon()
	var twin1Path, twin2Path, conflictPath string
	flag.StringVar(&twin1Path, "twin1", "", "first sample's gVCF file (required)")
	flag.StringVar(&twin2Path, "twin2", "", "second sample's gVCF file (required)")
	flag.StringVar(&conflictPath, "conflict-file", "", "write discordant positions to this file")
	shutdown := grail.Init()
	defer shutdown()

	if twin1Path == "" || twin2Path == "" {
		log.Fatalf("gvcf-twins requires --twin1 and --twin2")
	}
	if common.Ref == "" {
		log.Fatalf("gvcf-twins requires --ref")
	}

	fa, err := cliopts.OpenFasta(common.Ref)
	if err != nil {
		log.Fatalf("opening --ref: %v", err)
	}

	opts := crawler.Options{
		MinGQX:           common.MinGQX,
		HasMinGQX:        common.HasMinGQX(),
		MinQD:            common.MinQD,
		HasMinQD:         common.HasMinQD(),
		MinPosRankSum:    common.MinPosRankSum,
		HasMinPosRankSum: common.HasMinPosRankSum(),
		InfoFilters:      common.InfoFilters(),
		Murdock:          common.Murdock,
	}

	paths := [2]string{twin1Path, twin2Path}
	var crawlers [2]*crawler.SiteCrawler
	for i, p := range paths {
		crawlers[i] = openSample(p, fa, opts, common.SkipHeader)
		crawlers[i].Update()
	}

	var conflictOut *bufio.Writer
	if conflictPath != "" {
		cf, err := os.Create(conflictPath)
		if err != nil {
			log.Fatalf("creating --conflict-file: %v", err)
		}
		defer cf.Close()
		conflictOut = bufio.NewWriter(cf)
		defer conflictOut.Flush()
	}

	var ss trio.ConcordanceStats
	for {
		chrom, pos, any := lowest(crawlers[:])
		if !any {
			break
		}
		var present [2]bool
		var positions [2]crawler.Position
		for i, c := range crawlers {
			if c.Valid() && c.Current().Pos == pos {
				present[i] = true
				positions[i] = c.Current()
			}
		}

		refBase := byte('N')
		if b, err := fa.BaseAt(chrom, pos); err == nil {
			refBase = b
		}

		ss.RefSize++
		ss.KnownSize++
		site := trio.TwinSite{
			Twin1: trio.FromCrawlerPosition(positions[0], present[0]),
			Twin2: trio.FromCrawlerPosition(positions[1], present[1]),
		}
		if trio.CheckConcordance(site, string(refBase), &ss) && conflictOut != nil {
			writeConflict(conflictOut, chrom, pos, []string{"twin1", "twin2"}, positions[:], present[:])
		}

		for i, p := range present {
			if p {
				crawlers[i].Update()
			}
		}
	}

	if err := ss.Report(os.Stdout, cliopts.CmdLine(os.Args)); err != nil {
		log.Fatalf("writing report: %v", err)
	}
}

func openSample(path string, fa region.FastaAccessor, opts crawler.Options, skipHeader bool) *crawler.SiteCrawler {
	f, err := cliopts.OpenInput(path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	r := bufio.NewReader(f)
	if !skipHeader {
		hh := vcf.NewHeaderHandler(vcf.HeaderOptions{Version: vcf.Version})
		if err := cliopts.DriveHeader(r, discard{}, hh); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
	return crawler.NewSiteCrawler(r, fa, opts)
}

// lowest returns the lowest position among every still-valid crawler.
func lowest(crawlers []*crawler.SiteCrawler) (chrom string, pos int, any bool) {
	for _, c := range crawlers {
		if !c.Valid() {
			continue
		}
		cur := c.Current()
		if !any || cur.Pos < pos {
			chrom, pos, any = cur.Chrom, cur.Pos, true
		}
	}
	return chrom, pos, any
}

func writeConflict(w *bufio.Writer, chrom string, pos int, labels []string, positions []crawler.Position, present []bool) {
	fmt.Fprintf(w, "EVENT\t%s\t%d\n", chrom, pos)
	for i, label := range labels {
		if !present[i] {
			fmt.Fprintf(w, "%s\t.\n", label)
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", label, positions[i].Alleles)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
