package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eff/internal/genome"
)

type memSeq map[string]string

func (m memSeq) Sequence(chrom string, start, end int) (string, bool) {
	s, ok := m[chrom]
	if !ok || start < 0 || end >= len(s) || start > end {
		return "", false
	}
	return s[start : end+1], true
}

const (
	shortCDS = "ATGAAATAG"
	utr5     = "GCCACGCCCC"
	cdsExon1 = "ATGACGACGACGTTTCCCGG"
	cdsExon2 = "GAAACTGGATTGCGCATAA"
	utr3     = "GCCTGATTTAA"
	revCDS   = "ATGCCCAAAGGGTTTCCCTAA"
)

// testGenome builds chromosome 1:
//
//	G1 (+) T1 exon 100-108, CDS ATG AAA TAG
//	G2 (+) T2 exons 300-329, 400-429; CDS 310-418
//	G3 (-) T3 exon 600-629; CDS 603-623
//	custom marker at 900-910
func testGenome(t *testing.T) *genome.Genome {
	t.Helper()
	b := []byte(strings.Repeat("A", 1000))
	for pos, s := range map[int]string{
		100: shortCDS,
		300: utr5 + cdsExon1,
		400: cdsExon2 + utr3,
		603: genome.ReverseComplement(revCDS),
	} {
		copy(b[pos:], s)
	}

	opts := genome.DefaultBuildOptions()
	opts.UpstreamLength = 60
	opts.DownstreamLength = 60

	bld := genome.NewBuilder(opts)
	bld.SetSequenceSource(memSeq{"1": string(b)})
	for _, r := range []genome.Record{
		{Kind: genome.KindChromosome, Chrom: "1", Start: 0, End: 999},

		{Kind: genome.KindGene, Chrom: "1", Start: 100, End: 108, Strand: genome.Forward, ID: "G1", Name: "GENE1"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 100, End: 108, Strand: genome.Forward, ID: "T1", Parent: "G1", Coding: true},
		{Kind: genome.KindExon, Chrom: "1", Start: 100, End: 108, Parent: "T1", Rank: 1},
		{Kind: genome.KindCDS, Chrom: "1", Start: 100, End: 108, Parent: "T1"},

		{Kind: genome.KindGene, Chrom: "1", Start: 300, End: 429, Strand: genome.Forward, ID: "G2", Name: "GENE2"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 300, End: 429, Strand: genome.Forward, ID: "T2", Parent: "G2", Coding: true},
		{Kind: genome.KindExon, Chrom: "1", Start: 300, End: 329, Parent: "T2", Rank: 1},
		{Kind: genome.KindExon, Chrom: "1", Start: 400, End: 429, Parent: "T2", Rank: 2},
		{Kind: genome.KindCDS, Chrom: "1", Start: 310, End: 329, Parent: "T2"},
		{Kind: genome.KindCDS, Chrom: "1", Start: 400, End: 418, Parent: "T2"},

		{Kind: genome.KindGene, Chrom: "1", Start: 600, End: 629, Strand: genome.Reverse, ID: "G3", Name: "GENE3"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 600, End: 629, Strand: genome.Reverse, ID: "T3", Parent: "G3", Coding: true},
		{Kind: genome.KindExon, Chrom: "1", Start: 600, End: 629, Parent: "T3", Rank: 1},
		{Kind: genome.KindCDS, Chrom: "1", Start: 603, End: 623, Parent: "T3"},

		{Kind: genome.KindCustom, Chrom: "1", Start: 900, End: 910, ID: "M1", Name: "marker"},
	} {
		bld.Add(r)
	}
	g, err := bld.Build()
	require.NoError(t, err)
	return g
}

func testPredictor(t *testing.T, opts Options) *Predictor {
	t.Helper()
	tables, err := genome.NewCodonTables(1, map[string]int{"MT": 2})
	require.NoError(t, err)
	opts.CodonTables = tables
	p, err := NewPredictor(testGenome(t), opts)
	require.NoError(t, err)
	return p
}

// effectOn returns the single effect of type typ on transcript id.
func effectOn(t *testing.T, effs []*ChangeEffect, id string, typ EffectType) *ChangeEffect {
	t.Helper()
	var found []*ChangeEffect
	for _, e := range effs {
		if e.TranscriptID() == id && e.Has(typ) {
			found = append(found, e)
		}
	}
	require.Len(t, found, 1, "effects %v", typeStrings(effs))
	return found[0]
}

func typeStrings(effs []*ChangeEffect) []string {
	out := make([]string, len(effs))
	for i, e := range effs {
		out[i] = e.TranscriptID() + ":" + e.TypeString()
	}
	return out
}
