package main

/*
break-blocks expands every compressed non-variant block falling inside a
configured region into one record per genomic position, so that a
downstream single-position tool never has to reason about the gVCF block
encoding within the region of interest. Outside the region, a block's END
tag is merely adjusted to the slice boundary.
*/

import (
	"bufio"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/sequencing/gvcftools/cmd/internal/cliopts"
	"github.com/sequencing/gvcftools/region"
	"github.com/sequencing/gvcftools/vcf"
)

func main() {
	common := cliopts.RegisterCommon()
	shutdown := grail.Init()
	defer shutdown()

	if common.Ref == "" {
		log.Fatalf("--ref is required")
	}
	fa, err := cliopts.OpenFasta(common.Ref)
	if err != nil {
		log.Fatalf("opening --ref: %v", err)
	}
	regionMap, err := common.RegionMap()
	if err != nil {
		log.Fatalf("loading region: %v", err)
	}

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if !common.SkipHeader {
		hh := vcf.NewHeaderHandler(vcf.HeaderOptions{
			Version: vcf.Version,
			CmdLine: cliopts.CmdLine(os.Args),
		})
		if err := cliopts.DriveHeader(in, out, hh); err != nil {
			log.Fatalf("%v", err)
		}
	}

	handler := region.NewHandler(regionMap, fa, region.BreakBlocks(out, fa))
	ls := vcf.NewLineSplitter(in)
	for {
		ok, err := ls.Next()
		if err != nil {
			log.Fatalf("%v", err)
		}
		if !ok {
			break
		}
		rec, err := vcf.ParseRecord(ls)
		if err != nil {
			if common.Murdock {
				continue
			}
			log.Fatalf("%v", err)
		}
		if common.IsExcluded(rec.Chrom) {
			continue
		}
		if err := handler.ProcessRecord(rec); err != nil {
			log.Fatalf("%v", err)
		}
	}
}
