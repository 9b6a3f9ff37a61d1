package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCDSBounds(t *testing.T) {
	g := testGenome(t)

	assert.Equal(t, Bounds{Start: 105, End: 309}, g.TranscriptByID("T1").CDSBounds())
	assert.Equal(t, Bounds{Start: 609, End: 509}, g.TranscriptByID("T2").CDSBounds())
}

func TestCDSBounds_NoUTR(t *testing.T) {
	b := NewBuilder(DefaultBuildOptions())
	b.Add(Record{Kind: KindGene, Chrom: "1", Start: 100, End: 300, Strand: Reverse, ID: "G"})
	b.Add(Record{Kind: KindTranscript, Chrom: "1", Start: 100, End: 300, Strand: Reverse, ID: "T", Parent: "G", Coding: true})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 100, End: 150, Parent: "T"})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 250, End: 300, Parent: "T"})
	g, err := b.Build()
	require.NoError(t, err)

	bounds := g.TranscriptByID("T").CDSBounds()
	assert.Equal(t, 300, bounds.Start)
	assert.Equal(t, 100, bounds.End)
	assert.False(t, bounds.Snapped)
	assert.Equal(t, 102, g.TranscriptByID("T").CDSLength())
}

func TestCDSBounds_SnappedIntoExon(t *testing.T) {
	b := NewBuilder(DefaultBuildOptions())
	b.Add(Record{Kind: KindGene, Chrom: "1", Start: 100, End: 300, Strand: Forward, ID: "G"})
	b.Add(Record{Kind: KindTranscript, Chrom: "1", Start: 100, End: 300, Strand: Forward, ID: "T", Parent: "G", Coding: true})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 100, End: 150, Parent: "T"})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 250, End: 300, Parent: "T"})
	// The 5' UTR runs past the first exon into the intron.
	b.Add(Record{Kind: KindUTR5, Chrom: "1", Start: 100, End: 170, Parent: "T"})
	g, err := b.Build()
	require.NoError(t, err)

	bounds := g.TranscriptByID("T").CDSBounds()
	assert.Equal(t, 250, bounds.Start)
	assert.Equal(t, 300, bounds.End)
	assert.True(t, bounds.Snapped)
}

func TestCDSBounds_UTREndingOnExonEdge(t *testing.T) {
	b := NewBuilder(DefaultBuildOptions())
	b.Add(Record{Kind: KindGene, Chrom: "1", Start: 100, End: 300, Strand: Forward, ID: "G"})
	b.Add(Record{Kind: KindTranscript, Chrom: "1", Start: 100, End: 300, Strand: Forward, ID: "T", Parent: "G", Coding: true})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 100, End: 150, Parent: "T"})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 250, End: 300, Parent: "T"})
	b.Add(Record{Kind: KindCDS, Chrom: "1", Start: 250, End: 290, Parent: "T"})
	g, err := b.Build()
	require.NoError(t, err)

	bounds := g.TranscriptByID("T").CDSBounds()
	assert.Equal(t, Bounds{Start: 250, End: 290}, bounds)
}

func TestGenomicToCDSBase(t *testing.T) {
	g := testGenome(t)

	tests := []struct {
		name string
		tx   string
		pos  int
		want int
	}{
		{"fwd before CDS", "T1", 50, 0},
		{"fwd 5' UTR", "T1", 104, 0},
		{"fwd CDS start", "T1", 105, 0},
		{"fwd end of exon 1", "T1", 119, 14},
		{"fwd intron", "T1", 150, 15},
		{"fwd start of exon 2", "T1", 200, 15},
		{"fwd exon 3", "T1", 300, 35},
		{"fwd CDS end", "T1", 309, 44},
		{"fwd 3' UTR", "T1", 315, 45},
		{"rev CDS start", "T2", 609, 0},
		{"rev end of exon 1", "T2", 600, 9},
		{"rev intron", "T2", 550, 10},
		{"rev start of exon 2", "T2", 519, 10},
		{"rev CDS end", "T2", 509, 20},
		{"rev 5' UTR", "T2", 615, 0},
		{"rev 3' UTR", "T2", 505, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := g.TranscriptByID(tt.tx)
			assert.Equal(t, tt.want, tx.GenomicToCDSBase(tt.pos))
		})
	}
}

func TestCDSBase_RoundTrip(t *testing.T) {
	g := testGenome(t)

	for _, id := range []string{"T1", "T2"} {
		tx := g.TranscriptByID(id)
		for n := 0; n < tx.CDSLength(); n++ {
			pos, ok := tx.CDSBaseToGenomic(n)
			require.True(t, ok, "%s base %d", id, n)
			assert.Equal(t, n, tx.GenomicToCDSBase(pos), "%s base %d at %d", id, n, pos)
		}
		_, ok := tx.CDSBaseToGenomic(tx.CDSLength())
		assert.False(t, ok)

		bounds := tx.CDSBounds()
		assert.Equal(t, 0, tx.GenomicToCDSBase(bounds.Start))
		assert.Equal(t, tx.CDSLength()-1, tx.GenomicToCDSBase(bounds.End))
	}
}

func TestCDSBaseToCodon(t *testing.T) {
	codon, offset := CDSBaseToCodon(0)
	assert.Equal(t, 0, codon)
	assert.Equal(t, 0, offset)

	codon, offset = CDSBaseToCodon(35)
	assert.Equal(t, 11, codon)
	assert.Equal(t, 2, offset)
}

func TestGenomicToMRNA(t *testing.T) {
	g := testGenome(t)

	t1 := g.TranscriptByID("T1")
	n, ok := t1.GenomicToMRNA(200)
	require.True(t, ok)
	assert.Equal(t, 20, n)
	_, ok = t1.GenomicToMRNA(150)
	assert.False(t, ok, "intronic")

	t2 := g.TranscriptByID("T2")
	n, ok = t2.GenomicToMRNA(619)
	require.True(t, ok)
	assert.Equal(t, 0, n)
	n, ok = t2.GenomicToMRNA(519)
	require.True(t, ok)
	assert.Equal(t, 20, n)
}

func TestSequences(t *testing.T) {
	g := testGenome(t)

	t1 := g.TranscriptByID("T1")
	assert.True(t, t1.HasSequence())
	assert.Equal(t, fwdCDS, t1.CDS())
	assert.Equal(t, 5, t1.UTR5Length())
	assert.Len(t, t1.MRNA(), 60)
	assert.Len(t, t1.UTR3Sequence(), 10)

	t2 := g.TranscriptByID("T2")
	assert.Equal(t, revCDS, t2.CDS())
	assert.Equal(t, 10, t2.UTR5Length())
}

func TestSequences_Unavailable(t *testing.T) {
	b := NewBuilder(DefaultBuildOptions())
	for _, r := range testRecords() {
		b.Add(r)
	}
	g, err := b.Build()
	require.NoError(t, err)

	t1 := g.TranscriptByID("T1")
	assert.False(t, t1.HasSequence())
	assert.Empty(t, t1.CDS())
	assert.Equal(t, 45, t1.CDSLength(), "coordinates still work without sequence")
}

func TestCheckCoding(t *testing.T) {
	g := testGenome(t)
	table, err := NewCodonTable(1)
	require.NoError(t, err)

	assert.False(t, g.TranscriptByID("T1").CheckCoding(table).Any())
	assert.False(t, g.TranscriptByID("T2").CheckCoding(table).Any())

	seq := chromSeq(400, map[int]string{100: "ATGTAACCCGG"})
	b := NewBuilder(DefaultBuildOptions())
	b.SetSequenceSource(memSeq{"1": seq})
	b.Add(Record{Kind: KindGene, Chrom: "1", Start: 100, End: 110, Strand: Forward, ID: "G"})
	b.Add(Record{Kind: KindTranscript, Chrom: "1", Start: 100, End: 110, Strand: Forward, ID: "T", Parent: "G", Coding: true})
	b.Add(Record{Kind: KindExon, Chrom: "1", Start: 100, End: 110, Parent: "T"})
	g2, err := b.Build()
	require.NoError(t, err)

	check := g2.TranscriptByID("T").CheckCoding(table)
	assert.False(t, check.NoStart)
	assert.True(t, check.NoStop)
	assert.True(t, check.MultipleStops)
	assert.True(t, check.Incomplete)
}
