// Package region implements the chromosome-to-interval map that drives
// region-restricted block splitting, and the per-chromosome cursor that
// partitions a query range into in-region/out-of-region slices.
package region

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Interval is a closed, 1-based interval [Begin, End].
type Interval struct {
	Begin int
	End   int
}

// Map holds, per chromosome, a sorted list of non-overlapping, non-touching
// intervals.
type Map struct {
	chroms map[string][]Interval
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{chroms: make(map[string][]Interval)}
}

// LoadBED reads a BED-format region file (0-based, half-open on disk) into
// the map, converting to the 1-based inclusive convention used internally
// and merging touching or overlapping intervals per chromosome. Lines
// beginning with "track" or "browser" are skipped, matching the reference
// region-file reader.
func LoadBED(r io.Reader) (*Map, error) {
	m := NewMap()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("region file line %d: need at least 3 columns, got %d", lineNo, len(fields))
		}
		begin0, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("region file line %d: bad begin: %v", lineNo, err)
		}
		end0, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("region file line %d: bad end: %v", lineNo, err)
		}
		m.Add(fields[0], begin0+1, end0)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	m.mergeAll()
	return m, nil
}

// Add registers one 1-based closed interval for chrom. Call Finalize (or
// LoadBED, which calls it automatically) once all intervals are added.
func (m *Map) Add(chrom string, begin, end int) {
	m.chroms[chrom] = append(m.chroms[chrom], Interval{Begin: begin, End: end})
}

// Finalize sorts and merges every chromosome's interval list. Must be
// called after direct use of Add, before any Cursor is constructed.
func (m *Map) Finalize() {
	m.mergeAll()
}

func (m *Map) mergeAll() {
	for chrom, ivs := range m.chroms {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].Begin < ivs[j].Begin })
		merged := ivs[:0]
		for _, iv := range ivs {
			if len(merged) > 0 && iv.Begin <= merged[len(merged)-1].End+1 {
				last := &merged[len(merged)-1]
				if iv.End > last.End {
					last.End = iv.End
				}
				continue
			}
			merged = append(merged, iv)
		}
		m.chroms[chrom] = merged
	}
}

// HasChrom reports whether chrom has any registered intervals.
func (m *Map) HasChrom(chrom string) bool {
	ivs, ok := m.chroms[chrom]
	return ok && len(ivs) > 0
}

// Cursor walks one chromosome's interval list in increasing-position order,
// partitioning successive query ranges into in-region/out-of-region slices.
// Queries must be presented with non-decreasing Begin, mirroring a single
// forward pass over a sorted VCF stream.
type Cursor struct {
	ivs  []Interval
	head int
}

// NewCursor returns a cursor over chrom's intervals. If chrom is unknown,
// the cursor behaves as if it had no intervals at all: every slice reports
// out-of-region.
func (m *Map) NewCursor(chrom string) *Cursor {
	return &Cursor{ivs: m.chroms[chrom]}
}

// NextSlice partitions off the first sub-range of [begin,end], returning
// whether it lies in-region, the sub-range's end (inclusive), and whether
// any more of [begin,end] remains after advancing begin to end+1.
//
// This ports RegionVcfRecordHandler's get_next_record_region_interval: the
// cursor advances past any interval whose End is before begin, then picks
// the minimal slice end from either the next interval boundary or the
// query's own end.
func (c *Cursor) NextSlice(begin, queryEnd int) (inRegion bool, end int, more bool) {
	for c.head < len(c.ivs) && begin > c.ivs[c.head].End {
		c.head++
	}
	if c.head >= len(c.ivs) {
		return false, queryEnd, false
	}
	iv := c.ivs[c.head]
	if begin < iv.Begin {
		end = queryEnd
		if iv.Begin-1 < end {
			end = iv.Begin - 1
		}
		inRegion = false
	} else {
		end = queryEnd
		if iv.End < end {
			end = iv.End
		}
		inRegion = begin <= iv.End
	}
	more = end < queryEnd
	return inRegion, end, more
}
