package genome

import "fmt"

// Strand values carried by Interval.Strand.
const (
	Reverse int8 = -1
	Unknown int8 = 0
	Forward int8 = 1
)

// Interval is a closed genomic range [Start, End] on one chromosome.
// Coordinates are 0-based; Start <= End always holds.
type Interval struct {
	Chrom  string
	Start  int
	End    int
	Strand int8
}

// Len returns the number of bases covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// Contains returns true if pos lies within the interval.
func (iv Interval) Contains(pos int) bool {
	return pos >= iv.Start && pos <= iv.End
}

// Overlaps returns true if the two intervals share at least one base.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Chrom == o.Chrom && iv.Start <= o.End && o.Start <= iv.End
}

// Includes returns true if o lies entirely within iv.
func (iv Interval) Includes(o Interval) bool {
	return iv.Chrom == o.Chrom && iv.Start <= o.Start && o.End <= iv.End
}

// Intersect returns the overlapping part of the two intervals, keeping
// the receiver's strand.
func (iv Interval) Intersect(o Interval) (Interval, bool) {
	if !iv.Overlaps(o) {
		return Interval{}, false
	}
	return Interval{
		Chrom:  iv.Chrom,
		Start:  max(iv.Start, o.Start),
		End:    min(iv.End, o.End),
		Strand: iv.Strand,
	}, true
}

// IsReverse returns true if the interval is on the reverse strand.
func (iv Interval) IsReverse() bool {
	return iv.Strand == Reverse
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}
