package genome

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// Forest holds one interval tree per chromosome over every feature of a
// genome. It is built once and never modified, so concurrent queries are
// safe.
type Forest struct {
	trees  map[string]*interval.IntTree
	strict bool
}

// treeNode stores a feature as a half-open biogo range [Start, End+1).
type treeNode struct {
	f *Feature
}

func (n treeNode) ID() uintptr { return uintptr(n.f.Ref) }

func (n treeNode) Range() interval.IntRange {
	return interval.IntRange{Start: n.f.Start, End: n.f.End + 1}
}

func (n treeNode) Overlap(b interval.IntRange) bool {
	return b.Start <= n.f.End && n.f.Start < b.End
}

// closedQuery matches stored ranges sharing a base with [start, end].
type closedQuery struct {
	start, end int
}

func (q closedQuery) Overlap(b interval.IntRange) bool {
	return b.Start <= q.end && q.start < b.End
}

// BuildForest indexes every feature of g. In strict mode queries on an
// unknown chromosome fail with ErrChromosomeMissing.
func BuildForest(g *Genome, strict bool) (*Forest, error) {
	f := &Forest{trees: make(map[string]*interval.IntTree), strict: strict}
	features := g.Features()
	for i := range features {
		feat := &features[i]
		tree, ok := f.trees[feat.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			f.trees[feat.Chrom] = tree
		}
		if err := tree.Insert(treeNode{f: feat}, true); err != nil {
			return nil, fmt.Errorf("index %s %q: %w", feat.Kind, feat.ID, err)
		}
	}
	for _, tree := range f.trees {
		tree.AdjustRanges()
	}
	return f, nil
}

// Query returns every feature overlapping iv, including the chromosome
// itself, ordered by arena position.
func (f *Forest) Query(iv Interval) ([]*Feature, error) {
	tree, ok := f.trees[iv.Chrom]
	if !ok {
		if f.strict {
			return nil, fmt.Errorf("%w: %s", ErrChromosomeMissing, iv.Chrom)
		}
		return nil, nil
	}
	hits := tree.Get(closedQuery{start: iv.Start, end: iv.End})
	out := make([]*Feature, len(hits))
	for i, h := range hits {
		out[i] = h.(treeNode).f
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out, nil
}

// Len returns the number of indexed features.
func (f *Forest) Len() int {
	n := 0
	for _, tree := range f.trees {
		n += tree.Len()
	}
	return n
}
