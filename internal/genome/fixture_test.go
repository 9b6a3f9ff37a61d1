package genome

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// memSeq is an in-memory SequenceSource.
type memSeq map[string]string

func (m memSeq) Sequence(chrom string, start, end int) (string, bool) {
	s, ok := m[chrom]
	if !ok || start < 0 || end >= len(s) || start > end {
		return "", false
	}
	return s[start : end+1], true
}

// chromSeq returns n filler bases with the given fragments written at
// their positions.
func chromSeq(n int, at map[int]string) string {
	b := []byte(strings.Repeat("A", n))
	for pos, s := range at {
		copy(b[pos:], s)
	}
	return string(b)
}

const (
	fwdCDS = "ATGAAACCCGGGTTT" + "CCCAAAGGGTTTCCCAAAGG" + "GCCCATTTAA"
	revCDS = "ATGCCCAAAGGGTTTCCCTAA"
)

// testGenome builds chromosome 1 with two genes:
//
//	G1 (+) T1 exons 100-119, 200-219, 300-319; CDS 105-309
//	G2 (-) T2 exons 500-519, 600-619; CDS 509-609
func testGenome(t *testing.T) *Genome {
	t.Helper()
	seq := chromSeq(1000, map[int]string{
		105: fwdCDS[:15],
		200: fwdCDS[15:35],
		300: fwdCDS[35:],
		600: ReverseComplement(revCDS[:10]),
		509: ReverseComplement(revCDS[10:]),
	})

	opts := DefaultBuildOptions()
	opts.UpstreamLength = 50
	opts.DownstreamLength = 50

	b := NewBuilder(opts)
	b.SetSequenceSource(memSeq{"1": seq})
	b.Add(Record{Kind: KindChromosome, Chrom: "1", Start: 0, End: 999})
	for _, r := range testRecords() {
		b.Add(r)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func testRecords() []Record {
	return []Record{
		{Kind: KindGene, Chrom: "1", Start: 100, End: 319, Strand: Forward, ID: "G1", Name: "GENE1", Biotype: "protein_coding"},
		{Kind: KindTranscript, Chrom: "1", Start: 100, End: 319, Strand: Forward, ID: "T1", Parent: "G1", Coding: true},
		{Kind: KindExon, Chrom: "1", Start: 100, End: 119, ID: "T1.e1", Parent: "T1", Rank: 1},
		{Kind: KindExon, Chrom: "1", Start: 200, End: 219, ID: "T1.e2", Parent: "T1", Rank: 2},
		{Kind: KindExon, Chrom: "1", Start: 300, End: 319, ID: "T1.e3", Parent: "T1", Rank: 3},
		{Kind: KindCDS, Chrom: "1", Start: 105, End: 119, Parent: "T1"},
		{Kind: KindCDS, Chrom: "1", Start: 200, End: 219, Parent: "T1"},
		{Kind: KindCDS, Chrom: "1", Start: 300, End: 309, Parent: "T1"},

		{Kind: KindGene, Chrom: "1", Start: 500, End: 619, Strand: Reverse, ID: "G2", Name: "GENE2", Biotype: "protein_coding"},
		{Kind: KindTranscript, Chrom: "1", Start: 500, End: 619, Strand: Reverse, ID: "T2", Parent: "G2", Coding: true},
		{Kind: KindExon, Chrom: "1", Start: 500, End: 519, ID: "T2.e2", Parent: "T2", Rank: 2},
		{Kind: KindExon, Chrom: "1", Start: 600, End: 619, ID: "T2.e1", Parent: "T2", Rank: 1},
		{Kind: KindCDS, Chrom: "1", Start: 509, End: 519, Parent: "T2"},
		{Kind: KindCDS, Chrom: "1", Start: 600, End: 609, Parent: "T2"},
	}
}

// childrenOfKind returns the children of a transcript with a given kind.
func childrenOfKind(g *Genome, tx *Transcript, k Kind) []*Feature {
	var out []*Feature
	for _, r := range g.Children(tx.Feature().Ref) {
		if f := g.Feature(r); f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}
