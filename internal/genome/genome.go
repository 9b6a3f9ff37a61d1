// Package genome holds the reference feature model used for variant effect
// prediction: an arena of genomic features, per-transcript coordinate
// transforms and the interval forest that finds the features a variant
// touches.
package genome

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrChromosomeMissing is returned by strict lookups on a chromosome
	// the genome does not know.
	ErrChromosomeMissing = errors.New("chromosome not in genome")
	// ErrMalformedHierarchy is returned when features violate the
	// parent/child invariants.
	ErrMalformedHierarchy = errors.New("malformed feature hierarchy")
)

// Genome is an immutable arena of features. Parents always precede their
// children in the arena.
type Genome struct {
	features    []Feature
	children    [][]Ref
	views       []*Transcript
	chroms      map[string]Ref
	transcripts map[string]*Transcript
}

// Snapshot is the serializable form of a Genome.
type Snapshot struct {
	Features []Feature
}

// Restore rebuilds a Genome from a snapshot, validating every parent link.
func Restore(s Snapshot) (*Genome, error) {
	g := &Genome{features: s.Features}
	if err := g.index(); err != nil {
		return nil, err
	}
	return g, nil
}

// Snapshot returns a copy of the arena suitable for encoding.
func (g *Genome) Snapshot() Snapshot {
	features := make([]Feature, len(g.features))
	copy(features, g.features)
	return Snapshot{Features: features}
}

// index validates the arena and derives lookup tables and transcript views.
func (g *Genome) index() error {
	n := len(g.features)
	g.children = make([][]Ref, n)
	g.views = make([]*Transcript, n)
	g.chroms = make(map[string]Ref)
	g.transcripts = make(map[string]*Transcript)

	for i := range g.features {
		f := &g.features[i]
		if f.Ref != Ref(i) {
			return fmt.Errorf("%w: feature %q stored at %d has ref %d", ErrMalformedHierarchy, f.ID, i, f.Ref)
		}
		if f.Start > f.End {
			return fmt.Errorf("%w: feature %q has start %d after end %d", ErrMalformedHierarchy, f.ID, f.Start, f.End)
		}
		if f.Kind == KindChromosome {
			if f.Parent != NoRef {
				return fmt.Errorf("%w: chromosome %q has a parent", ErrMalformedHierarchy, f.Chrom)
			}
			if _, dup := g.chroms[f.Chrom]; dup {
				return fmt.Errorf("%w: chromosome %q defined twice", ErrMalformedHierarchy, f.Chrom)
			}
			g.chroms[f.Chrom] = f.Ref
			continue
		}
		if f.Parent < 0 || int(f.Parent) >= i {
			return fmt.Errorf("%w: %s %q has invalid parent %d", ErrMalformedHierarchy, f.Kind, f.ID, f.Parent)
		}
		p := &g.features[f.Parent]
		if p.Kind != f.Kind.parentKind() {
			return fmt.Errorf("%w: %s %q cannot have a %s parent", ErrMalformedHierarchy, f.Kind, f.ID, p.Kind)
		}
		if p.Chrom != f.Chrom {
			return fmt.Errorf("%w: %s %q on %s has parent on %s", ErrMalformedHierarchy, f.Kind, f.ID, f.Chrom, p.Chrom)
		}
		if !f.Kind.exemptFromContainment() && !p.Includes(f.Interval) {
			return fmt.Errorf("%w: %s %q %s not contained in %s %q %s",
				ErrMalformedHierarchy, f.Kind, f.ID, f.Interval, p.Kind, p.ID, p.Interval)
		}
		g.children[f.Parent] = append(g.children[f.Parent], f.Ref)
	}

	for i := range g.features {
		f := &g.features[i]
		if f.Kind != KindTranscript {
			continue
		}
		t, err := newTranscript(g, f)
		if err != nil {
			return err
		}
		g.views[i] = t
		g.transcripts[f.ID] = t
	}
	return nil
}

// Len returns the number of features in the arena.
func (g *Genome) Len() int {
	return len(g.features)
}

// Feature returns the feature stored at r.
func (g *Genome) Feature(r Ref) *Feature {
	if r < 0 || int(r) >= len(g.features) {
		return nil
	}
	return &g.features[r]
}

// Features returns the arena. Callers must not modify it.
func (g *Genome) Features() []Feature {
	return g.features
}

// Children returns the direct children of r.
func (g *Genome) Children(r Ref) []Ref {
	return g.children[r]
}

// Parent returns the direct parent of f, or nil for a chromosome.
func (g *Genome) Parent(f *Feature) *Feature {
	return g.Feature(f.Parent)
}

// FindParent walks up from f and returns the first ancestor of the given
// kind, or nil. The walk is bounded by the depth of the hierarchy.
func (g *Genome) FindParent(f *Feature, kind Kind) *Feature {
	r := f.Parent
	for i := 0; i < NumKinds && r != NoRef; i++ {
		p := &g.features[r]
		if p.Kind == kind {
			return p
		}
		r = p.Parent
	}
	return nil
}

// Transcript returns the transcript view for a transcript feature, or for
// any feature hanging off a transcript.
func (g *Genome) Transcript(f *Feature) *Transcript {
	if f.Kind == KindTranscript {
		return g.views[f.Ref]
	}
	if p := g.FindParent(f, KindTranscript); p != nil {
		return g.views[p.Ref]
	}
	return nil
}

// TranscriptByID returns a transcript by its identifier, or nil.
func (g *Genome) TranscriptByID(id string) *Transcript {
	return g.transcripts[id]
}

// GeneTranscripts returns the transcripts of a gene.
func (g *Genome) GeneTranscripts(gene *Feature) []*Transcript {
	var out []*Transcript
	for _, r := range g.children[gene.Ref] {
		if t := g.views[r]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Chromosome returns the chromosome feature for name, or nil.
func (g *Genome) Chromosome(name string) *Feature {
	r, ok := g.chroms[name]
	if !ok {
		return nil
	}
	return &g.features[r]
}

// Chromosomes returns a sorted list of chromosome names.
func (g *Genome) Chromosomes() []string {
	chroms := make([]string, 0, len(g.chroms))
	for chrom := range g.chroms {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// TranscriptCount returns the number of transcripts in the genome.
func (g *Genome) TranscriptCount() int {
	return len(g.transcripts)
}
