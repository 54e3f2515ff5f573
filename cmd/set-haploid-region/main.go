package main

/*
set-haploid-region coerces diploid calls inside a configured region (e.g.
the non-pseudoautosomal portion of chrX/chrY in a male sample) to haploid:
a biallelic call with equal homologs collapses to a single allele, moving
its likelihoods to FORMAT OPL; a genuinely heterozygous call in-region is
left alone but flagged HAPLOID_CONFLICT.
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
			Filters: []vcf.FilterSpec{
				{Label: region.HaploidConflictFilter, Scope: vcf.ScopeSite, Tag: "GT", LessThan: false},
			},
		})
		if err := cliopts.DriveHeader(in, out, hh); err != nil {
			log.Fatalf("%v", err)
		}
	}

	handler := region.NewHandler(regionMap, fa, region.SetHaploid(out))
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
