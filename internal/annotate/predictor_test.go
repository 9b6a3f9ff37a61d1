package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

func TestPredict_Coding(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	tests := []struct {
		name     string
		v        *variant.Variant
		tx       string
		typ      EffectType
		impact   Impact
		oldAA    string
		newAA    string
		codonNum int
		hgvsc    string
		hgvsp    string
	}{
		{"missense", variant.NewSNP("1", 104, "A", "T", ""), "T1", EffectNonSynonymousCoding, ImpactModerate, "K", "I", 1, "c.5A>T", "p.Lys2Ile"},
		{"synonymous stop", variant.NewSNP("1", 108, "G", "A", ""), "T1", EffectSynonymousStop, ImpactLow, "*", "*", 2, "c.9G>A", "p.Ter3="},
		{"stop gained", variant.NewSNP("1", 103, "A", "T", ""), "T1", EffectStopGained, ImpactHigh, "K", "*", 1, "c.4A>T", "p.Lys2Ter"},
		{"start lost", variant.NewSNP("1", 102, "G", "A", ""), "T1", EffectStartLost, ImpactHigh, "M", "I", 0, "c.3G>A", "p.Met1?"},
		{"missense second exon", variant.NewSNP("1", 401, "A", "G", ""), "T2", EffectNonSynonymousCoding, ImpactModerate, "K", "E", 7, "c.22A>G", "p.Lys8Glu"},
		{"stop lost", variant.NewSNP("1", 418, "A", "C", ""), "T2", EffectStopLost, ImpactHigh, "*", "Y", 12, "c.39A>C", "p.Ter13Tyrext*2"},
		{"reverse strand", variant.NewSNP("1", 620, "G", "A", ""), "T3", EffectNonSynonymousCoding, ImpactModerate, "P", "S", 1, "c.4C>T", "p.Pro2Ser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			e := effectOn(t, effs, tt.tx, tt.typ)
			assert.Equal(t, tt.typ, e.Primary())
			assert.Equal(t, tt.impact, e.Impact)
			assert.Equal(t, tt.oldAA, e.OldAA)
			assert.Equal(t, tt.newAA, e.NewAA)
			assert.Equal(t, tt.codonNum, e.CodonNum)
			assert.Equal(t, tt.hgvsc, e.HGVSc)
			assert.Equal(t, tt.hgvsp, e.HGVSp)
			assert.Empty(t, e.Issues)
		})
	}
}

func TestPredict_MissenseCodons(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 104, "A", "T", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectNonSynonymousCoding)
	assert.Equal(t, "AAA", e.OldCodon)
	assert.Equal(t, "ATA", e.NewCodon)
	assert.Equal(t, 4, e.CDSBase)
	assert.Equal(t, 1, e.CodonIndex)
	assert.Equal(t, 9, e.CDSLength)
	assert.Equal(t, "GENE1", e.GeneName())
	assert.Empty(t, e.HGVSc, "HGVS disabled")
}

func TestPredict_FrameShiftAtStart(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})
	effs, err := p.Predict(variant.NewDeletion("1", 100, "A", ""))
	require.NoError(t, err)

	e := effectOn(t, effs, "T1", EffectFrameShift)
	assert.Equal(t, []EffectType{EffectFrameShift, EffectStartLost}, e.Types)
	assert.Equal(t, ImpactHigh, e.Impact)
	assert.Equal(t, "c.1del", e.HGVSc)
	assert.Equal(t, "p.Met1?", e.HGVSp)
}

func TestPredict_Upstream(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 50, "A", "G", ""))
	require.NoError(t, err)
	require.Len(t, effs, 1)
	e := effs[0]
	assert.Equal(t, EffectUpstream, e.Primary())
	assert.Equal(t, 50, e.Distance)
	assert.Equal(t, ImpactModifier, e.Impact)
	assert.Equal(t, "T1", e.TranscriptID())
}

func TestPredict_Downstream(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 120, "A", "G", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectDownstream)
	assert.Equal(t, 12, e.Distance)

	// the reverse transcript's downstream flank lies below it
	effs, err = p.Predict(variant.NewSNP("1", 590, "A", "G", ""))
	require.NoError(t, err)
	e = effectOn(t, effs, "T3", EffectDownstream)
	assert.Equal(t, 10, e.Distance)
}

func TestPredict_Intergenic(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 200, "A", "G", ""))
	require.NoError(t, err)
	require.Len(t, effs, 1)
	assert.Equal(t, EffectIntergenic, effs[0].Primary())
	assert.Equal(t, "GENE1-GENE2", effs[0].Detail)

	// only the chromosome is hit
	effs, err = p.Predict(variant.NewSNP("1", 20, "A", "G", ""))
	require.NoError(t, err)
	require.Len(t, effs, 1)
	assert.Equal(t, EffectIntergenic, effs[0].Primary())
	assert.Equal(t, genome.KindChromosome, effs[0].Feature.Kind)
}

func TestPredict_UTR(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	effs, err := p.Predict(variant.NewSNP("1", 304, "C", "T", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T2", EffectUTR5Prime)
	assert.Equal(t, []EffectType{EffectUTR5Prime, EffectStartGained}, e.Types)
	assert.Equal(t, ImpactLow, e.Impact)
	assert.Equal(t, 6, e.Distance)
	assert.Equal(t, "c.-6C>T", e.HGVSc)

	effs, err = p.Predict(variant.NewSNP("1", 305, "G", "T", ""))
	require.NoError(t, err)
	e = effectOn(t, effs, "T2", EffectUTR5Prime)
	assert.Equal(t, []EffectType{EffectUTR5Prime}, e.Types)

	effs, err = p.Predict(variant.NewSNP("1", 420, "C", "T", ""))
	require.NoError(t, err)
	e = effectOn(t, effs, "T2", EffectUTR3Prime)
	assert.Equal(t, 2, e.Distance)
	assert.Equal(t, "c.*2C>T", e.HGVSc)
	assert.Equal(t, ImpactModifier, e.Impact)
}

func TestPredict_Splicing(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	effs, err := p.Predict(variant.NewSNP("1", 331, "A", "G", ""))
	require.NoError(t, err)
	donor := effectOn(t, effs, "T2", EffectSpliceSiteDonor)
	assert.Equal(t, 2, donor.Distance)
	assert.Equal(t, ImpactHigh, donor.Impact)
	assert.Equal(t, "c.20+2A>G", donor.HGVSc)
	intron := effectOn(t, effs, "T2", EffectIntron)
	assert.Equal(t, 1, intron.Rank)
	assert.Equal(t, 2, intron.Distance)

	effs, err = p.Predict(variant.NewSNP("1", 398, "A", "G", ""))
	require.NoError(t, err)
	acceptor := effectOn(t, effs, "T2", EffectSpliceSiteAcceptor)
	assert.Equal(t, 2, acceptor.Distance)
	assert.Equal(t, "c.21-2A>G", acceptor.HGVSc)

	effs, err = p.Predict(variant.NewSNP("1", 334, "A", "G", ""))
	require.NoError(t, err)
	region := effectOn(t, effs, "T2", EffectSpliceSiteRegion)
	assert.Equal(t, "intron", region.Detail)
	assert.Equal(t, ImpactLow, region.Impact)
	assert.Equal(t, "c.20+5A>G", region.HGVSc)

	effs, err = p.Predict(variant.NewSNP("1", 360, "A", "G", ""))
	require.NoError(t, err)
	require.Len(t, effs, 1)
	assert.Equal(t, EffectIntron, effs[0].Primary())
	assert.Equal(t, 31, effs[0].Distance)
	assert.Equal(t, "c.20+31A>G", effs[0].HGVSc)
}

func TestPredict_InFrameIndels(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	tests := []struct {
		name  string
		v     *variant.Variant
		typ   EffectType
		hgvsc string
		hgvsp string
	}{
		{"dup after last copy", variant.NewInsertion("1", 322, "ACG", ""), EffectCodonInsertion, "c.10_12dup", "p.Thr4dup"},
		{"dup shifted from first copy", variant.NewInsertion("1", 313, "ACG", ""), EffectCodonInsertion, "c.10_12dup", "p.Thr4dup"},
		{"deletion shifted 3'", variant.NewDeletion("1", 313, "ACG", ""), EffectCodonDeletion, "c.10_12del", "p.Thr4del"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			e := effectOn(t, effs, "T2", tt.typ)
			assert.Equal(t, ImpactModerate, e.Impact)
			assert.Equal(t, tt.hgvsc, e.HGVSc)
			assert.Equal(t, tt.hgvsp, e.HGVSp)
		})
	}
}

func TestPredict_FrameShiftMidCDS(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})
	// Phe5 Pro6 Gly7 survive the shift, Lys8 becomes Asn and no stop follows
	effs, err := p.Predict(variant.NewDeletion("1", 322, "T", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T2", EffectFrameShift)
	assert.Equal(t, []EffectType{EffectFrameShift}, e.Types)
	assert.Equal(t, "c.15del", e.HGVSc)
	assert.Equal(t, "p.Lys8AsnfsTer?", e.HGVSp)
}

func TestPredict_NoOpIsModifier(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 104, "A", "A", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectSynonymousCoding)
	assert.Equal(t, ImpactModifier, e.Impact)
}

func TestPredict_RefMismatch(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 104, "C", "T", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectNonSynonymousCoding)
	assert.True(t, e.HasIssue(WarnRefMismatch))
	assert.Empty(t, e.IssuesOf(TierError))
}

func TestPredict_AmbiguousAllele(t *testing.T) {
	p := testPredictor(t, Options{})
	// R = A/G, the reference A is not an option
	effs, err := p.Predict(variant.NewSNP("1", 104, "A", "R", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectNonSynonymousCoding)
	assert.Equal(t, "R", e.NewAA)
	assert.Equal(t, "G", e.Variant.Alt)
}

func TestPredict_ExonDeleted(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewDeletion("1", 395, "AAAAA"+cdsExon2+utr3+"AAAAA", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T2", EffectExonDeleted)
	assert.Equal(t, 2, e.Rank)
	assert.Equal(t, ImpactHigh, e.Impact)
	effectOn(t, effs, "T2", EffectFrameShift)
}

func TestPredict_UnknownChromosome(t *testing.T) {
	lenient := testPredictor(t, Options{})
	effs, err := lenient.Predict(variant.NewSNP("9", 10, "A", "G", ""))
	require.NoError(t, err)
	assert.Empty(t, effs)

	strict := testPredictor(t, Options{Strict: true})
	_, err = strict.Predict(variant.NewSNP("9", 10, "A", "G", ""))
	assert.ErrorIs(t, err, genome.ErrChromosomeMissing)
}

func TestPredict_Custom(t *testing.T) {
	p := testPredictor(t, Options{})
	effs, err := p.Predict(variant.NewSNP("1", 905, "A", "G", ""))
	require.NoError(t, err)
	require.Len(t, effs, 1)
	assert.Equal(t, EffectCustom, effs[0].Primary())
	assert.Equal(t, "marker", effs[0].Detail)
}

func TestPredict_Cache(t *testing.T) {
	p := testPredictor(t, Options{CacheSize: 16})
	v := variant.NewSNP("1", 104, "A", "T", "")

	first, err := p.Predict(v)
	require.NoError(t, err)
	second, err := p.Predict(v)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Same(t, first[0], second[0])
}

func TestPredict_MissingSequence(t *testing.T) {
	bld := genome.NewBuilder(genome.DefaultBuildOptions())
	for _, r := range []genome.Record{
		{Kind: genome.KindGene, Chrom: "1", Start: 100, End: 108, Strand: genome.Forward, ID: "G1"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 100, End: 108, Strand: genome.Forward, ID: "T1", Parent: "G1", Coding: true},
		{Kind: genome.KindExon, Chrom: "1", Start: 100, End: 108, Parent: "T1", Rank: 1},
		{Kind: genome.KindCDS, Chrom: "1", Start: 100, End: 108, Parent: "T1"},
	} {
		bld.Add(r)
	}
	g, err := bld.Build()
	require.NoError(t, err)
	p, err := NewPredictor(g, Options{})
	require.NoError(t, err)

	effs, err := p.Predict(variant.NewSNP("1", 104, "A", "T", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T1", EffectCDS)
	assert.True(t, e.HasIssue(ErrMissingCDSSequence))
	assert.True(t, e.HasIssue(WarnSequenceNotAvailable))
	assert.Equal(t, 1, e.CodonNum)

	effs, err = p.Predict(variant.NewDeletion("1", 104, "A", ""))
	require.NoError(t, err)
	effectOn(t, effs, "T1", EffectFrameShift)
}

func TestClassifier_Totality(t *testing.T) {
	g := testGenome(t)
	tables, err := genome.NewCodonTables(1, nil)
	require.NoError(t, err)
	c := NewClassifier(g, tables, false)

	for k := 0; k < genome.NumKinds; k++ {
		assert.NotNil(t, c.kinds[k], "classifier for %s", genome.Kind(k))
	}
	for k := 0; k < variant.NumKinds; k++ {
		assert.NotNil(t, c.codons[k], "codon strategy for %s", variant.Kind(k))
	}

	var custom *genome.Feature
	for i := range g.Features() {
		if f := g.Feature(genome.Ref(i)); f.Kind == genome.KindCustom {
			custom = f
		}
	}
	require.NotNil(t, custom)

	c.kinds[genome.KindCustom] = nil
	_, err = c.Classify(variant.NewSNP("1", 905, "A", "G", ""), custom)
	assert.ErrorIs(t, err, ErrUnimplemented)

	effs, err := c.Classify(variant.NewSNP("1", 10, "A", "G", ""), custom)
	require.NoError(t, err)
	assert.Empty(t, effs, "no overlap, no effect")
}

func TestPredict_UTRDistanceAtCDSBoundary(t *testing.T) {
	p := testPredictor(t, Options{})

	tests := []struct {
		name string
		v    *variant.Variant
		tx   string
		typ  EffectType
		dist int
	}{
		{"5' deletion into CDS", variant.NewDeletion("1", 308, "CCAT", ""), "T2", EffectUTR5Prime, 1},
		{"5' region into CDS", variant.NewInterval("1", 305, 315, ""), "T2", EffectUTR5Prime, 1},
		{"3' deletion out of CDS", variant.NewDeletion("1", 417, "AAGC", ""), "T2", EffectUTR3Prime, 1},
		{"reverse 5' deletion into CDS", variant.NewDeletion("1", 622, "ATAA", ""), "T3", EffectUTR5Prime, 1},
		{"reverse 3' deletion out of CDS", variant.NewDeletion("1", 601, "AATT", ""), "T3", EffectUTR3Prime, 1},
		{"last 5' base", variant.NewSNP("1", 309, "C", "T", ""), "T2", EffectUTR5Prime, 1},
		{"first 3' base", variant.NewSNP("1", 419, "G", "A", ""), "T2", EffectUTR3Prime, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			e := effectOn(t, effs, tt.tx, tt.typ)
			assert.Equal(t, tt.dist, e.Distance)
		})
	}
}

func TestPredict_UTRBoundaryNotation(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	tests := []struct {
		name  string
		v     *variant.Variant
		tx    string
		typ   EffectType
		hgvsc string
	}{
		{"last 5' base", variant.NewSNP("1", 309, "C", "T", ""), "T2", EffectUTR5Prime, "c.-1C>T"},
		{"first coding base", variant.NewSNP("1", 310, "A", "G", ""), "T2", EffectStartLost, "c.1A>G"},
		{"first 3' base", variant.NewSNP("1", 419, "G", "A", ""), "T2", EffectUTR3Prime, "c.*1G>A"},
		{"reverse last 5' base", variant.NewSNP("1", 624, "A", "G", ""), "T3", EffectUTR5Prime, "c.-1T>C"},
		{"reverse first coding base", variant.NewSNP("1", 623, "T", "C", ""), "T3", EffectStartLost, "c.1A>G"},
		{"reverse first 3' base", variant.NewSNP("1", 602, "A", "G", ""), "T3", EffectUTR3Prime, "c.*1T>C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.hgvsc, effectOn(t, effs, tt.tx, tt.typ).HGVSc)
		})
	}
}

func TestPredict_ReverseStrandIndels(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	tests := []struct {
		name   string
		v      *variant.Variant
		types  []EffectType
		impact Impact
		hgvsc  string
		hgvsp  string
	}{
		{
			name:   "in-frame duplication",
			v:      variant.NewInsertion("1", 615, "TTT", ""),
			types:  []EffectType{EffectCodonInsertion},
			impact: ImpactModerate,
			hgvsc:  "c.7_9dup",
			hgvsp:  "p.Lys3dup",
		},
		{
			name:   "frameshift reading through the stop",
			v:      variant.NewDeletion("1", 619, "G", ""),
			types:  []EffectType{EffectFrameShift},
			impact: ImpactHigh,
			hgvsc:  "c.6del",
			hgvsp:  "p.Ter7Asnext*?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			e := effectOn(t, effs, "T3", tt.types[0])
			assert.Equal(t, tt.types, e.Types)
			assert.Equal(t, tt.impact, e.Impact)
			assert.Equal(t, tt.hgvsc, e.HGVSc)
			assert.Equal(t, tt.hgvsp, e.HGVSp)
		})
	}
}

func TestPredict_MultiBaseSubstitutions(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	tests := []struct {
		name  string
		v     *variant.Variant
		tx    string
		types []EffectType
		oldAA string
		newAA string
		hgvsc string
		hgvsp string
	}{
		{
			name:  "mnp",
			v:     variant.NewMNP("1", 103, "AA", "TT", ""),
			tx:    "T1",
			types: []EffectType{EffectNonSynonymousCoding},
			oldAA: "K",
			newAA: "L",
			hgvsc: "c.4_5delinsTT",
			hgvsp: "p.Lys2Leu",
		},
		{
			name:  "mixed in frame",
			v:     variant.NewMixed("1", 313, "ACG", "TTTAAA", ""),
			tx:    "T2",
			types: []EffectType{EffectCodonChangePlusCodonInsertion},
			oldAA: "T",
			newAA: "FK",
			hgvsc: "c.4_6delinsTTTAAA",
			hgvsp: "p.Thr2delinsPheLys",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, err := p.Predict(tt.v)
			require.NoError(t, err)
			e := effectOn(t, effs, tt.tx, tt.types[0])
			assert.Equal(t, tt.types, e.Types)
			assert.Equal(t, tt.oldAA, e.OldAA)
			assert.Equal(t, tt.newAA, e.NewAA)
			assert.Equal(t, tt.hgvsc, e.HGVSc)
			assert.Equal(t, tt.hgvsp, e.HGVSp)
		})
	}
}

// Only the two alt bases aligned with the CDS count toward the frame.
func TestPredict_MixedAcrossUTRBoundary(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	effs, err := p.Predict(variant.NewMixed("1", 308, "CCAT", "GGGGG", ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T2", EffectFrameShift)
	assert.Equal(t, []EffectType{EffectFrameShift, EffectStartLost}, e.Types)
	assert.Equal(t, "p.Met1?", e.HGVSp)
	assert.Equal(t, 1, effectOn(t, effs, "T2", EffectUTR5Prime).Distance)
}

func TestPredict_Interval(t *testing.T) {
	p := testPredictor(t, Options{HGVS: true})

	effs, err := p.Predict(variant.NewInterval("1", 310, 315, ""))
	require.NoError(t, err)
	e := effectOn(t, effs, "T2", EffectExon)
	assert.Equal(t, []EffectType{EffectExon}, e.Types)
	assert.Equal(t, ImpactModifier, e.Impact)
	assert.Equal(t, 1, e.Rank)
	assert.Equal(t, 0, e.CDSBase)
	assert.Empty(t, e.HGVSc)
	assert.Empty(t, e.HGVSp)
}

func TestFormatHGVSc_IntronTieBreak(t *testing.T) {
	bld := genome.NewBuilder(genome.DefaultBuildOptions())
	for _, r := range []genome.Record{
		{Kind: genome.KindChromosome, Chrom: "1", Start: 0, End: 999},

		{Kind: genome.KindGene, Chrom: "1", Start: 100, End: 124, Strand: genome.Forward, ID: "G4"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 100, End: 124, Strand: genome.Forward, ID: "N1", Parent: "G4"},
		{Kind: genome.KindExon, Chrom: "1", Start: 100, End: 109, Parent: "N1", Rank: 1},
		{Kind: genome.KindExon, Chrom: "1", Start: 115, End: 124, Parent: "N1", Rank: 2},

		{Kind: genome.KindGene, Chrom: "1", Start: 300, End: 324, Strand: genome.Reverse, ID: "G5"},
		{Kind: genome.KindTranscript, Chrom: "1", Start: 300, End: 324, Strand: genome.Reverse, ID: "N2", Parent: "G5"},
		{Kind: genome.KindExon, Chrom: "1", Start: 315, End: 324, Parent: "N2", Rank: 1},
		{Kind: genome.KindExon, Chrom: "1", Start: 300, End: 309, Parent: "N2", Rank: 2},
	} {
		bld.Add(r)
	}
	g, err := bld.Build()
	require.NoError(t, err)

	tests := []struct {
		name string
		tx   string
		pos  int
		want string
	}{
		{"forward middle base", "N1", 112, "n.10+3A>G"},
		{"forward nearer 3' exon", "N1", 113, "n.11-2A>G"},
		{"reverse middle base", "N2", 312, "n.10+3T>C"},
		{"reverse nearer 5' exon", "N2", 313, "n.10+2T>C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := g.TranscriptByID(tt.tx)
			require.NotNil(t, tr)
			assert.Equal(t, tt.want, FormatHGVSc(variant.NewSNP("1", tt.pos, "A", "G", ""), tr))
		})
	}
}
