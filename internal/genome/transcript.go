package genome

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Transcript is a read-only view over a transcript feature and its
// sub-features. Feature slices are in transcription order.
type Transcript struct {
	g          *Genome
	f          *Feature
	exons      []*Feature
	introns    []*Feature
	utr5       []*Feature
	utr3       []*Feature
	cds        []*Feature
	splices    []*Feature
	branches   []*Feature
	upstream   *Feature
	downstream *Feature

	model atomic.Pointer[codingModel]
	check atomic.Pointer[codingCheckEntry]
}

func newTranscript(g *Genome, f *Feature) (*Transcript, error) {
	t := &Transcript{g: g, f: f}
	for _, r := range g.children[f.Ref] {
		c := &g.features[r]
		switch c.Kind {
		case KindExon:
			t.exons = append(t.exons, c)
		case KindIntron:
			t.introns = append(t.introns, c)
		case KindUTR5:
			t.utr5 = append(t.utr5, c)
		case KindUTR3:
			t.utr3 = append(t.utr3, c)
		case KindCDS:
			t.cds = append(t.cds, c)
		case KindSpliceDonor, KindSpliceAcceptor, KindSpliceRegion:
			t.splices = append(t.splices, c)
		case KindSpliceBranch:
			t.branches = append(t.branches, c)
		case KindUpstream:
			t.upstream = c
		case KindDownstream:
			t.downstream = c
		}
	}

	byRank := func(fs []*Feature) {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Rank < fs[j].Rank })
	}
	byRank(t.exons)
	byRank(t.introns)
	for i, e := range t.exons {
		if e.Rank != i+1 {
			return nil, fmt.Errorf("%w: transcript %q exon ranks are not contiguous from 1", ErrMalformedHierarchy, f.ID)
		}
	}
	for _, fs := range [][]*Feature{t.utr5, t.utr3, t.cds, t.splices, t.branches} {
		t.sortTranscriptional(fs)
	}
	return t, nil
}

func (t *Transcript) sortTranscriptional(fs []*Feature) {
	if t.IsReverse() {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Start > fs[j].Start })
		return
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].Start < fs[j].Start })
}

// Feature returns the underlying transcript feature.
func (t *Transcript) Feature() *Feature { return t.f }

// Genome returns the genome the transcript belongs to.
func (t *Transcript) Genome() *Genome { return t.g }

// ID returns the transcript identifier.
func (t *Transcript) ID() string { return t.f.ID }

// Gene returns the parent gene feature.
func (t *Transcript) Gene() *Feature { return t.g.Parent(t.f) }

// IsReverse returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverse() bool { return t.f.IsReverse() }

// IsCoding returns true if the transcript is protein coding and has a
// non-empty coding region.
func (t *Transcript) IsCoding() bool {
	return t.f.Coding && t.coding().cdsLen > 0
}

// Exons returns the exons ordered by rank.
func (t *Transcript) Exons() []*Feature { return t.exons }

// Introns returns the introns ordered by rank.
func (t *Transcript) Introns() []*Feature { return t.introns }

// UTR5 returns the 5' UTR segments in transcription order.
func (t *Transcript) UTR5() []*Feature { return t.utr5 }

// UTR3 returns the 3' UTR segments in transcription order.
func (t *Transcript) UTR3() []*Feature { return t.utr3 }

// CDSSegments returns the annotated CDS segments in transcription order.
func (t *Transcript) CDSSegments() []*Feature { return t.cds }

// SpliceSites returns donor, acceptor and region sites.
func (t *Transcript) SpliceSites() []*Feature { return t.splices }

// BranchSites returns the branch splice sites.
func (t *Transcript) BranchSites() []*Feature { return t.branches }

// Upstream returns the upstream region, or nil.
func (t *Transcript) Upstream() *Feature { return t.upstream }

// Downstream returns the downstream region, or nil.
func (t *Transcript) Downstream() *Feature { return t.downstream }

// FindExon returns the exon containing the given genomic position, or nil.
// Exons are in rank order, so they ascend on the forward strand and
// descend on the reverse strand.
func (t *Transcript) FindExon(pos int) *Feature {
	if i := t.searchExon(pos); i >= 0 {
		return t.exons[i]
	}
	return nil
}

func (t *Transcript) searchExon(pos int) int {
	ascending := !t.IsReverse()
	lo, hi := 0, len(t.exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := t.exons[mid]
		if e.Contains(pos) {
			return mid
		}
		if ascending == (pos < e.Start) {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return -1
}

// FindIntron returns the intron containing pos, or nil.
func (t *Transcript) FindIntron(pos int) *Feature {
	for _, in := range t.introns {
		if in.Contains(pos) {
			return in
		}
	}
	return nil
}

// IsExonic returns true if pos lies in an exon.
func (t *Transcript) IsExonic(pos int) bool {
	return t.searchExon(pos) >= 0
}

// firstExonPositionAfter returns pos if exonic, otherwise the start of the
// first exon beginning after pos. It returns -1 when no exon follows.
func (t *Transcript) firstExonPositionAfter(pos int) int {
	best := -1
	for _, e := range t.exons {
		if e.Contains(pos) {
			return pos
		}
		if e.Start > pos && (best < 0 || e.Start < best) {
			best = e.Start
		}
	}
	return best
}

// lastExonPositionBefore returns pos if exonic, otherwise the end of the
// last exon ending before pos. It returns -1 when no exon precedes.
func (t *Transcript) lastExonPositionBefore(pos int) int {
	best := -1
	for _, e := range t.exons {
		if e.Contains(pos) {
			return pos
		}
		if e.End < pos && e.End > best {
			best = e.End
		}
	}
	return best
}
