package main

/*
gatk-to-gvcf reads a per-site GATK VCF stream on standard input and writes
a block-compressed gVCF to standard output: it grooms every record
(threshold filters, chrom-depth filtering, MQ migration, indel/site
overlap reconciliation) and compresses runs of homogeneous reference calls
into single END-tagged records.
*/

import (
	"bufio"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/sequencing/gvcftools/blocker"
	"github.com/sequencing/gvcftools/cmd/internal/cliopts"
	"github.com/sequencing/gvcftools/vcf"
)

func main() {
	common := cliopts.RegisterCommon()
	shutdown := grail.Init()
	defer shutdown()

	opts := blocker.DefaultOptions()
	opts.BlockFracTol = common.BlockRangeFactor
	opts.BlockLabel = common.BlockLabel
	opts.MinBlockableNR = common.MinBlockableNR
	opts.Murdock = common.Murdock
	opts.NoDefaultFilter = common.NoDefaultFilters
	opts.Filters = common.InfoFilters()

	if !common.NoDefaultFilters && common.HasMinGQX() {
		opts.GQXFilter = &vcf.FilterSpec{Label: "LowGQX", Scope: vcf.ScopeSite, Tag: "GQX", LessThan: true, Thresh: common.MinGQX, FilterIfMissing: true}
	}
	chromDepth, err := common.ChromDepth()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !common.NoDefaultFilters {
		opts.ChromDepth = chromDepth
		opts.MaxDepthFactor = common.MaxDepthFactor
	}

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if !common.SkipHeader {
		hh := vcf.NewHeaderHandler(vcf.HeaderOptions{
			Version:      vcf.Version,
			CmdLine:      cliopts.CmdLine(os.Args),
			BlockLabel:   opts.BlockLabel,
			BlockFracTol: opts.BlockFracTol,
			ChromDepth:   opts.ChromDepth,
			MaxDepthFact: opts.MaxDepthFactor,
			Filters:      opts.Filters,
			GQXFilter:    opts.GQXFilter,
		})
		if err := cliopts.DriveHeader(in, out, hh); err != nil {
			log.Fatalf("%v", err)
		}
	}

	accum := blocker.NewAccumulator(out, opts)
	rb := blocker.NewRecordBlocker(accum, opts)

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
		if err := rb.Append(rec); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if err := rb.Finish(); err != nil {
		log.Fatalf("%v", err)
	}
}
