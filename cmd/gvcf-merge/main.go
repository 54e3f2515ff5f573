package main

/*
gvcf-merge co-traverses two or more single-sample gVCF files and writes one
position-ordered, multi-sample VCF to standard output: at each step the
lowest-ordered position among every still-live input is selected, a union
ALT table is built from whichever samples sit on that position, and every
other sample is assigned a "." genotype. Non-variant positions are dropped
unless at least one sample carries a non-reference call there.
*/

import (
	"bufio"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/sequencing/gvcftools/cmd/internal/cliopts"
	"github.com/sequencing/gvcftools/crawler"
	"github.com/sequencing/gvcftools/interval"
	"github.com/sequencing/gvcftools/region"
	"github.com/sequencing/gvcftools/vcf"
)

func main() {
	common := cliopts.RegisterCommon()
	shutdown := grail.Init()
	defer shutdown()

	paths := flag.Args()
	if len(paths) < 2 {
		log.Fatalf("gvcf-merge requires at least two input gVCF files")
	}

	var fa region.FastaAccessor
	if common.Ref != "" {
		f, err := cliopts.OpenFasta(common.Ref)
		if err != nil {
			log.Fatalf("opening --ref: %v", err)
		}
		fa = f
	}

	opts := crawler.Options{
		MinGQX:           common.MinGQX,
		HasMinGQX:        common.HasMinGQX(),
		MinQD:            common.MinQD,
		HasMinQD:         common.HasMinQD(),
		MinPosRankSum:    common.MinPosRankSum,
		HasMinPosRankSum: common.HasMinPosRankSum(),
		InfoFilters:      common.InfoFilters(),
		ReturnIndels:     true,
		Murdock:          common.Murdock,
	}
	if common.Region != "" {
		entry, err := interval.ParseRegionString(common.Region)
		if err != nil {
			log.Fatalf("--region: %v", err)
		}
		opts.HasRegion = true
		opts.RegionBegin = int(entry.Start0) + 1
		opts.RegionEnd = int(entry.End)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	samples := make([]crawler.Sample, len(paths))
	names := make([]string, len(paths))
	for i, p := range paths {
		f, err := cliopts.OpenInput(p)
		if err != nil {
			log.Fatalf("opening %s: %v", p, err)
		}
		defer f.Close()
		r := bufio.NewReader(f)
		name := sampleName(p)
		if !common.SkipHeader {
			hh := vcf.NewHeaderHandler(vcf.HeaderOptions{Version: vcf.Version})
			if err := cliopts.DriveHeader(r, discard{}, hh); err != nil {
				log.Fatalf("%s: %v", p, err)
			}
		}
		names[i] = name
		samples[i] = crawler.Sample{Name: name, Crawler: crawler.NewSiteCrawler(r, fa, opts)}
	}

	if !common.SkipHeader {
		hh := vcf.NewHeaderHandler(vcf.HeaderOptions{
			Version: vcf.Version,
			CmdLine: cliopts.CmdLine(os.Args),
		})
		chromLine := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t" + strings.Join(names, "\t")
		if _, err := hh.ProcessLine(out, chromLine); err != nil {
			log.Fatalf("%v", err)
		}
	}

	m := crawler.NewMerger(out, samples)
	if err := m.Run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func sampleName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".gvcf", ".vcf"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// discard implements io.Writer, used to drain a per-sample input header
// without re-emitting it on the merged output stream.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
