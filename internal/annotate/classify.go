package annotate

import (
	"fmt"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// classifyFunc produces the effects of v on a feature of one kind.
type classifyFunc func(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error)

// Classifier dispatches a variant to the effect rules of each feature kind.
type Classifier struct {
	genome *genome.Genome
	tables *genome.CodonTables
	hgvs   bool
	kinds  [genome.NumKinds]classifyFunc
	codons [variant.NumKinds]codonStrategy
}

// NewClassifier creates a classifier for g. When hgvs is set, transcript
// effects carry HGVS c./n. and p. notation.
func NewClassifier(g *genome.Genome, tables *genome.CodonTables, hgvs bool) *Classifier {
	c := &Classifier{genome: g, tables: tables, hgvs: hgvs}
	c.kinds = [genome.NumKinds]classifyFunc{
		genome.KindChromosome:     classifyChromosome,
		genome.KindGene:           classifyGene,
		genome.KindTranscript:     classifyTranscript,
		genome.KindExon:           classifyExon,
		genome.KindIntron:         classifyIntron,
		genome.KindUTR5:           classifyUTR5,
		genome.KindUTR3:           classifyUTR3,
		genome.KindCDS:            classifyCDS,
		genome.KindSpliceDonor:    classifySpliceSite,
		genome.KindSpliceAcceptor: classifySpliceSite,
		genome.KindSpliceRegion:   classifySpliceRegion,
		genome.KindSpliceBranch:   classifyBranch,
		genome.KindUpstream:       classifyUpstream,
		genome.KindDownstream:     classifyDownstream,
		genome.KindIntergenic:     classifyIntergenic,
		genome.KindCustom:         classifyCustom,
	}
	c.codons = codonStrategies()
	return c
}

// Classify returns the effects of v on f. Variants that do not overlap f
// have no effect on it.
func (c *Classifier) Classify(v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	if !f.Overlaps(v.Interval) {
		return nil, nil
	}
	if int(f.Kind) >= len(c.kinds) || c.kinds[f.Kind] == nil {
		return nil, fmt.Errorf("%w: classifier for %s", ErrUnimplemented, f.Kind)
	}
	effs, err := c.kinds[f.Kind](c, v, f)
	if err != nil {
		return nil, err
	}
	for _, e := range effs {
		if err := e.setImpact(); err != nil {
			return nil, err
		}
	}
	return effs, nil
}

// transcriptOf returns the transcript a feature belongs to. A missing
// transcript means the genome arena is inconsistent.
func (c *Classifier) transcriptOf(f *genome.Feature) (*genome.Transcript, error) {
	t := c.genome.Transcript(f)
	if t == nil {
		return nil, fmt.Errorf("%w: %s %s has no transcript", genome.ErrMalformedHierarchy, f.Kind, f.ID)
	}
	return t, nil
}

func classifyChromosome(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	if v.IsDel() && v.Includes(f.Interval) {
		return []*ChangeEffect{newEffect(v, f, nil, EffectChromosomeLargeDeletion)}, nil
	}
	return nil, nil
}

// classifyGene reports INTRAGENIC when the variant hits the gene but none
// of its transcripts.
func classifyGene(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	for _, t := range c.genome.GeneTranscripts(f) {
		if t.Feature().Overlaps(v.Interval) {
			return nil, nil
		}
	}
	e := newEffect(v, f, nil, EffectIntragenic)
	e.Detail = f.Name
	return []*ChangeEffect{e}, nil
}

// classifyTranscript walks the transcript's UTRs, branch sites and
// introns, then hands coding changes to the codon engine. A sub-feature
// that fully contains the variant ends the walk.
func classifyTranscript(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t := c.genome.Transcript(f)
	if t == nil {
		return nil, fmt.Errorf("%w: no view for transcript %s", genome.ErrMalformedHierarchy, f.ID)
	}

	var effs []*ChangeEffect
	done := false
	walk := func(fs []*genome.Feature, fn classifyFunc) error {
		for _, sub := range fs {
			if done || !sub.Overlaps(v.Interval) {
				continue
			}
			sEffs, err := fn(c, v, sub)
			if err != nil {
				return err
			}
			effs = append(effs, sEffs...)
			if sub.Includes(v.Interval) {
				done = true
			}
		}
		return nil
	}

	if err := walk(t.UTR5(), classifyUTR5); err != nil {
		return nil, err
	}
	if err := walk(t.UTR3(), classifyUTR3); err != nil {
		return nil, err
	}
	if err := walk(t.BranchSites(), classifyBranch); err != nil {
		return nil, err
	}
	if err := walk(t.Introns(), classifyIntron); err != nil {
		return nil, err
	}

	if !done {
		var (
			more []*ChangeEffect
			err  error
		)
		bounds := t.CDSBounds()
		span := bounds.Interval(f.Chrom, f.Strand)
		switch {
		case !t.IsCoding() || v.IsInterval():
			more, err = c.exonLevel(v, t)
		case span.Overlaps(v.Interval):
			more, err = c.codingLevel(v, t)
		}
		if err != nil {
			return nil, err
		}
		effs = append(effs, more...)
	}

	if len(effs) == 0 {
		// nothing more specific, e.g. a deletion swallowing the whole model
		e, err := c.exonLevel(v, t)
		if err != nil {
			return nil, err
		}
		effs = e
	}
	c.annotateHGVSc(v, t, effs)
	return effs, nil
}

// exonLevel reports one effect per exon hit, or TRANSCRIPT if the variant
// misses every exon.
func (c *Classifier) exonLevel(v *variant.Variant, t *genome.Transcript) ([]*ChangeEffect, error) {
	var effs []*ChangeEffect
	for _, ex := range t.Exons() {
		if !ex.Overlaps(v.Interval) {
			continue
		}
		e, err := classifyExon(c, v, ex)
		if err != nil {
			return nil, err
		}
		effs = append(effs, e...)
	}
	if len(effs) == 0 {
		effs = append(effs, newEffect(v, t.Feature(), t, EffectTranscript))
	}
	return effs, nil
}

// codingLevel reports deleted exons and the codon change of a variant
// overlapping the CDS span.
func (c *Classifier) codingLevel(v *variant.Variant, t *genome.Transcript) ([]*ChangeEffect, error) {
	var effs []*ChangeEffect
	if v.IsDel() {
		for _, ex := range t.Exons() {
			if v.Includes(ex.Interval) {
				e := newEffect(v, ex, t, EffectExonDeleted)
				effs = append(effs, e)
			}
		}
	}
	codon, err := c.codonChange(v, t)
	if err != nil {
		return nil, err
	}
	return append(effs, codon...), nil
}

func classifyExon(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	if v.IsDel() && v.Includes(f.Interval) {
		return []*ChangeEffect{newEffect(v, f, t, EffectExonDeleted)}, nil
	}
	e := newEffect(v, f, t, EffectExon)
	if t.IsCoding() {
		c.locate(e, v, t)
	}
	return []*ChangeEffect{e}, nil
}

func classifyCDS(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	e := newEffect(v, f, t, EffectCDS)
	c.locate(e, v, t)
	return []*ChangeEffect{e}, nil
}

// classifyIntron reports INTRON with the distance to the nearest exon.
func classifyIntron(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	e := newEffect(v, f, t, EffectIntron)
	e.Distance = max(1, min(v.Start-f.Start+1, f.End-v.End+1))
	return []*ChangeEffect{e}, nil
}

func classifyUTR5(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	if v.IsDel() && v.Includes(f.Interval) {
		return []*ChangeEffect{newEffect(v, f, t, EffectUTR5Deleted)}, nil
	}
	e := newEffect(v, f, t, EffectUTR5Prime)
	if t.IsCoding() {
		e.Distance = utrDistance(v, f, t.CDSBounds().Start)
	}
	if c.startGained(v, t) {
		e.AddType(EffectStartGained)
	}
	return []*ChangeEffect{e}, nil
}

// utrDistance is the genomic distance from the part of v inside the UTR
// segment f to the CDS bound cds. A variant reaching into the CDS counts
// as adjacent, so the result is at least 1.
func utrDistance(v *variant.Variant, f *genome.Feature, cds int) int {
	in, ok := f.Intersect(v.Interval)
	if !ok {
		return 1
	}
	if in.End < cds {
		return max(1, cds-in.End)
	}
	return max(1, in.Start-cds)
}

// startGained reports whether a substitution in the 5'UTR creates an ATG
// that was not there before.
func (c *Classifier) startGained(v *variant.Variant, t *genome.Transcript) bool {
	if v.Kind != variant.SNP && v.Kind != variant.MNP {
		return false
	}
	mrna := t.MRNA()
	utr5 := t.UTR5Length()
	if mrna == "" || utr5 < 3 {
		return false
	}
	alt := v.NetChange(t.Feature().Strand)
	mut := []byte(mrna[:utr5])
	lo, hi := len(mut), -1
	for k := 0; k < v.Len(); k++ {
		pos := v.Start + k
		if t.IsReverse() {
			pos = v.End - k
		}
		m, ok := t.GenomicToMRNA(pos)
		if !ok || m >= utr5 || k >= len(alt) {
			continue
		}
		mut[m] = alt[k]
		lo, hi = min(lo, m), max(hi, m)
	}
	for s := max(0, lo-2); s <= hi && s+3 <= utr5; s++ {
		if string(mut[s:s+3]) == "ATG" && mrna[s:s+3] != "ATG" {
			return true
		}
	}
	return false
}

func classifyUTR3(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	if v.IsDel() && v.Includes(f.Interval) {
		return []*ChangeEffect{newEffect(v, f, t, EffectUTR3Deleted)}, nil
	}
	e := newEffect(v, f, t, EffectUTR3Prime)
	if t.IsCoding() {
		e.Distance = utrDistance(v, f, t.CDSBounds().End)
	}
	return []*ChangeEffect{e}, nil
}

// classifySpliceSite handles donor and acceptor sites. Distance counts
// bases from the adjacent exon boundary, 1 being the first intronic base.
func classifySpliceSite(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	typ := EffectSpliceSiteDonor
	if f.Kind == genome.KindSpliceAcceptor {
		typ = EffectSpliceSiteAcceptor
	}
	e := newEffect(v, f, t, typ)
	// the exon sits at the low end for forward donors and reverse acceptors
	exonLow := (f.Kind == genome.KindSpliceDonor) != t.IsReverse()
	if exonLow {
		e.Distance = v.Start - f.Start + 1
	} else {
		e.Distance = f.End - v.End + 1
	}
	e.Distance = max(1, e.Distance)
	c.annotateHGVSc(v, t, []*ChangeEffect{e})
	return []*ChangeEffect{e}, nil
}

func classifySpliceRegion(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	e := newEffect(v, f, t, EffectSpliceSiteRegion)
	e.Detail = "intron"
	if f.Exonic {
		e.Detail = "exon"
	}
	c.annotateHGVSc(v, t, []*ChangeEffect{e})
	return []*ChangeEffect{e}, nil
}

func classifyBranch(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	typ := EffectSpliceSiteBranch
	if f.U12 {
		typ = EffectSpliceSiteBranchU12
	}
	return []*ChangeEffect{newEffect(v, f, t, typ)}, nil
}

// classifyUpstream measures the distance to the transcript start.
func classifyUpstream(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	tf := t.Feature()
	e := newEffect(v, f, t, EffectUpstream)
	if t.IsReverse() {
		e.Distance = max(0, v.Start-tf.End)
	} else {
		e.Distance = max(0, tf.Start-v.End)
	}
	return []*ChangeEffect{e}, nil
}

// classifyDownstream measures the distance to the transcript end.
func classifyDownstream(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	t, err := c.transcriptOf(f)
	if err != nil {
		return nil, err
	}
	tf := t.Feature()
	e := newEffect(v, f, t, EffectDownstream)
	if t.IsReverse() {
		e.Distance = max(0, tf.Start-v.End)
	} else {
		e.Distance = max(0, v.Start-tf.End)
	}
	return []*ChangeEffect{e}, nil
}

func classifyIntergenic(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	e := newEffect(v, f, nil, EffectIntergenic)
	e.Detail = f.Name
	return []*ChangeEffect{e}, nil
}

func classifyCustom(c *Classifier, v *variant.Variant, f *genome.Feature) ([]*ChangeEffect, error) {
	e := newEffect(v, f, nil, EffectCustom)
	e.Detail = f.Name
	return []*ChangeEffect{e}, nil
}
