package annotate

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// codonStrategy fills in the coding effect of one variant kind.
type codonStrategy func(cc *codonChange)

func codonStrategies() [variant.NumKinds]codonStrategy {
	return [variant.NumKinds]codonStrategy{
		variant.SNP:      changeSubstitution,
		variant.MNP:      changeSubstitution,
		variant.INS:      changeInsertion,
		variant.DEL:      changeDeletion,
		variant.MIXED:    changeMixed,
		variant.Interval: changeInterval,
	}
}

// codonChange holds the state of one variant applied to one coding
// transcript.
type codonChange struct {
	v      *variant.Variant
	t      *genome.Transcript
	table  *genome.CodonTable
	cds    string
	newCDS string // "" when the CDS is unavailable
	effect *ChangeEffect
}

// codonChange runs the strategy for v's kind against t. It returns no
// effect when the variant touches no coding base.
func (c *Classifier) codonChange(v *variant.Variant, t *genome.Transcript) ([]*ChangeEffect, error) {
	if int(v.Kind) >= len(c.codons) || c.codons[v.Kind] == nil {
		return nil, fmt.Errorf("%w: codon change for %s", ErrUnimplemented, v.Kind)
	}
	cc := &codonChange{
		v:      v,
		t:      t,
		table:  c.tables.For(v.Chrom),
		cds:    t.CDS(),
		effect: newEffect(v, t.Feature(), t),
	}
	cc.effect.CDSLength = t.CDSLength()
	cc.transcriptIssues()

	c.codons[v.Kind](cc)
	if len(cc.effect.Types) == 0 {
		return nil, nil
	}
	if c.hgvs {
		cc.effect.HGVSp = formatHGVSp(cc)
	}
	return []*ChangeEffect{cc.effect}, nil
}

func (cc *codonChange) transcriptIssues() {
	e := cc.effect
	if cc.t.CDSBounds().Snapped {
		e.AddIssue(WarnCDSBoundsAdjusted)
	}
	if !cc.t.HasSequence() {
		e.AddIssue(WarnSequenceNotAvailable)
		return
	}
	check := cc.t.CheckCoding(cc.table)
	if check.NoStart {
		e.AddIssue(WarnNoStartCodon)
	}
	if check.NoStop {
		e.AddIssue(WarnNoStopCodon)
	}
	if check.MultipleStops {
		e.AddIssue(WarnMultipleStopCodons)
	}
	if check.Incomplete {
		e.AddIssue(WarnIncompleteTranscript)
	}
}

// forEachCodingBase calls fn for every coding base covered by v, with k
// the offset into v in transcription order and n the CDS base number.
func forEachCodingBase(v *variant.Variant, t *genome.Transcript, fn func(k, n int)) {
	b := t.CDSBounds()
	lo, hi := b.Low(), b.High()
	for _, ex := range t.Exons() {
		s := max(ex.Start, lo, v.Start)
		e := min(ex.End, hi, v.End)
		for pos := s; pos <= e; pos++ {
			k := pos - v.Start
			if t.IsReverse() {
				k = v.End - pos
			}
			fn(k, t.GenomicToCDSBase(pos))
		}
	}
}

// codingSpan returns the lowest and highest CDS base touched by v.
func codingSpan(v *variant.Variant, t *genome.Transcript) (lo, hi int, ok bool) {
	lo, hi = t.CDSLength(), -1
	forEachCodingBase(v, t, func(_, n int) {
		lo, hi = min(lo, n), max(hi, n)
	})
	return lo, hi, hi >= 0
}

// codingChange returns the part of the variant's change that lands on
// coding bases, in transcription order. Bases falling in UTRs or introns
// are left out.
func (cc *codonChange) codingChange() string {
	b := cc.t.CDSBounds()
	lo, hi := b.Low(), b.High()
	var sb strings.Builder
	for _, seg := range cc.t.CDSSegments() {
		clip, ok := seg.Intersect(genome.Interval{Chrom: seg.Chrom, Start: lo, End: hi})
		if !ok {
			continue
		}
		sb.WriteString(cc.onStrand(cc.v.NetChangeWithin(clip)))
	}
	return sb.String()
}

// locate sets the CDS coordinates of the first coding base touched by v.
func (c *Classifier) locate(e *ChangeEffect, v *variant.Variant, t *genome.Transcript) {
	e.CDSLength = t.CDSLength()
	lo, _, ok := codingSpan(v, t)
	if !ok {
		return
	}
	e.CDSBase = lo
	e.CodonNum, e.CodonIndex = genome.CDSBaseToCodon(lo)
}

// codons returns codons c1..c2 of seq, padded with N past its end.
func codons(seq string, c1, c2 int) string {
	start, end := c1*3, (c2+1)*3
	if start >= len(seq) {
		return strings.Repeat("N", end-start)
	}
	if end > len(seq) {
		return seq[start:] + strings.Repeat("N", end-len(seq))
	}
	return seq[start:end]
}

func firstCodon(s string) string {
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

// onStrand returns seq in transcription orientation.
func (cc *codonChange) onStrand(seq string) string {
	if cc.t.IsReverse() {
		return genome.ReverseComplement(seq)
	}
	return seq
}

// missing handles a coding change without CDS sequence: only the length
// change can be judged.
func (cc *codonChange) missing(lengthChange int) {
	e := cc.effect
	e.AddIssue(ErrMissingCDSSequence)
	switch {
	case lengthChange%3 != 0:
		e.AddType(EffectFrameShift)
	case lengthChange > 0:
		e.AddType(EffectCodonInsertion)
	case lengthChange < 0:
		e.AddType(EffectCodonDeletion)
	default:
		e.AddType(EffectCDS)
	}
}

func (cc *codonChange) setPosition(n int) {
	cc.effect.CDSBase = n
	cc.effect.CodonNum, cc.effect.CodonIndex = genome.CDSBaseToCodon(n)
}

func (cc *codonChange) checkRef(ref string) {
	forEachCodingBase(cc.v, cc.t, func(k, n int) {
		if k < len(ref) && n < len(cc.cds) && cc.cds[n] != ref[k] {
			cc.effect.AddIssue(WarnRefMismatch)
		}
	})
}

// substitutionEffect classifies a same-length change of the codons
// starting at codonNum.
func (cc *codonChange) substitutionEffect(codonNum int, oldCodons, newCodons, aaOld, aaNew string) EffectType {
	tbl := cc.table
	startOld := codonNum == 0 && tbl.IsStart(firstCodon(oldCodons))
	startNew := tbl.IsStart(firstCodon(newCodons))
	stopOld := strings.IndexByte(aaOld, '*') >= 0
	stopNew := strings.IndexByte(aaNew, '*') >= 0

	if aaOld == aaNew {
		switch {
		case startOld && startNew:
			return EffectSynonymousStart
		case startOld:
			return EffectStartLost
		case stopOld:
			return EffectSynonymousStop
		}
		return EffectSynonymousCoding
	}
	switch {
	case startOld && startNew:
		return EffectNonSynonymousStart
	case startOld:
		return EffectStartLost
	case stopOld && stopNew:
		return EffectNonSynonymousStop
	case stopOld:
		return EffectStopLost
	case stopNew:
		return EffectStopGained
	}
	return EffectNonSynonymousCoding
}

// lengthEffects adds the secondary effects of a length-changing edit
// starting in codon c1.
func (cc *codonChange) lengthEffects(c1 int, aaOld, aaNew string, inFrame bool) {
	e := cc.effect
	if c1 == 0 && cc.table.IsStart(firstCodon(cc.cds)) && !cc.table.IsStart(firstCodon(cc.newCDS)) {
		e.AddType(EffectStartLost)
	}
	stopOld := strings.IndexByte(aaOld, '*') >= 0
	stopNew := strings.IndexByte(aaNew, '*') >= 0
	if !inFrame {
		if stopOld {
			e.AddType(EffectStopLost)
		}
		return
	}
	switch {
	case stopOld && !stopNew:
		e.AddType(EffectStopLost)
	case !stopOld && stopNew:
		e.AddType(EffectStopGained)
	}
}

// changeSubstitution handles SNPs and MNPs.
func changeSubstitution(cc *codonChange) {
	e := cc.effect
	lo, hi, ok := codingSpan(cc.v, cc.t)
	if !ok {
		e.AddType(EffectCDS)
		e.AddIssue(ErrOutOfExon)
		return
	}
	cc.setPosition(lo)
	if cc.cds == "" {
		cc.missing(0)
		return
	}

	ref := cc.onStrand(cc.v.Ref)
	alt := cc.v.NetChange(cc.t.Feature().Strand)
	cc.checkRef(ref)
	mut := []byte(cc.cds)
	forEachCodingBase(cc.v, cc.t, func(k, n int) {
		if k < len(alt) && n < len(mut) {
			mut[n] = alt[k]
		}
	})
	cc.newCDS = string(mut)

	c1, c2 := lo/3, hi/3
	e.OldCodon = codons(cc.cds, c1, c2)
	e.NewCodon = codons(cc.newCDS, c1, c2)
	e.OldAA = cc.table.Translate(e.OldCodon)
	e.NewAA = cc.table.Translate(e.NewCodon)
	e.AddType(cc.substitutionEffect(c1, e.OldCodon, e.NewCodon, e.OldAA, e.NewAA))
}

// changeInsertion handles insertions. The insertion point is the CDS base
// the new bases precede in transcription order.
func changeInsertion(cc *codonChange) {
	e := cc.effect
	t, v := cc.t, cc.v
	ins := v.NetChange(t.Feature().Strand)

	n := t.GenomicToCDSBase(v.Start)
	if t.IsReverse() && t.IsCodingBase(v.Start) {
		n++
	}
	n = min(n, t.CDSLength())
	cc.setPosition(n)
	if cc.cds == "" {
		cc.missing(v.LengthChange())
		return
	}

	cc.newCDS = cc.cds[:n] + ins + cc.cds[n:]
	c := n / 3
	e.OldCodon = codons(cc.cds, c, c)
	e.OldAA = cc.table.Translate(e.OldCodon)

	if v.LengthChange()%3 != 0 {
		e.NewCodon = codons(cc.newCDS, c, c)
		e.NewAA = cc.table.Translate(e.NewCodon)
		e.AddType(EffectFrameShift)
		cc.lengthEffects(c, e.OldAA, e.NewAA, false)
		return
	}

	e.NewCodon = codons(cc.newCDS, c, c+len(ins)/3)
	e.NewAA = cc.table.Translate(e.NewCodon)
	if strings.HasPrefix(e.NewAA, e.OldAA) || strings.HasSuffix(e.NewAA, e.OldAA) {
		e.AddType(EffectCodonInsertion)
	} else {
		e.AddType(EffectCodonChangePlusCodonInsertion)
	}
	cc.lengthEffects(c, e.OldAA, e.NewAA, true)
}

// changeDeletion handles deletions. Only coding bases count toward the
// change, so a deletion spanning an intron is judged on its exonic part.
func changeDeletion(cc *codonChange) {
	e := cc.effect
	lo, hi, ok := codingSpan(cc.v, cc.t)
	if !ok {
		e.AddType(EffectCDS)
		e.AddIssue(ErrOutOfExon)
		return
	}
	cc.setPosition(lo)
	count := hi - lo + 1
	if cc.cds == "" {
		cc.missing(-count)
		return
	}
	hi = min(hi, len(cc.cds)-1)
	if deleted := cc.codingChange(); deleted != cc.cds[lo:hi+1] {
		e.AddIssue(WarnRefMismatch)
	}
	cc.newCDS = cc.cds[:lo] + cc.cds[hi+1:]

	c1, c2 := lo/3, hi/3
	e.OldCodon = codons(cc.cds, c1, c2)
	e.OldAA = cc.table.Translate(e.OldCodon)

	if count%3 != 0 {
		e.NewCodon = codons(cc.newCDS, c1, c1)
		e.NewAA = cc.table.Translate(e.NewCodon)
		e.AddType(EffectFrameShift)
		cc.lengthEffects(c1, e.OldAA, e.NewAA, false)
		return
	}

	keep := len(e.OldCodon) - count
	if keep > 0 {
		e.NewCodon = codons(cc.newCDS, c1, c1+keep/3-1)
		e.NewAA = cc.table.Translate(e.NewCodon)
	}
	if strings.HasPrefix(e.OldAA, e.NewAA) || strings.HasSuffix(e.OldAA, e.NewAA) {
		e.AddType(EffectCodonDeletion)
	} else {
		e.AddType(EffectCodonChangePlusCodonDeletion)
	}
	cc.lengthEffects(c1, e.OldAA, e.NewAA, true)
}

// changeMixed handles a replacement of unequal length as a deletion of the
// coding reference bases followed by the alternate bases that fall on
// them. Alternate bases aligned with UTR or intron positions are dropped.
func changeMixed(cc *codonChange) {
	e := cc.effect
	lo, hi, ok := codingSpan(cc.v, cc.t)
	if !ok {
		e.AddType(EffectCDS)
		e.AddIssue(ErrOutOfExon)
		return
	}
	cc.setPosition(lo)
	alt := cc.codingChange()
	count := hi - lo + 1
	diff := len(alt) - count
	if cc.cds == "" {
		cc.missing(diff)
		return
	}
	hi = min(hi, len(cc.cds)-1)
	cc.checkRef(cc.onStrand(cc.v.Ref))
	cc.newCDS = cc.cds[:lo] + alt + cc.cds[hi+1:]

	c1, c2 := lo/3, hi/3
	e.OldCodon = codons(cc.cds, c1, c2)
	e.OldAA = cc.table.Translate(e.OldCodon)

	switch {
	case diff == 0:
		e.NewCodon = codons(cc.newCDS, c1, c2)
		e.NewAA = cc.table.Translate(e.NewCodon)
		e.AddType(cc.substitutionEffect(c1, e.OldCodon, e.NewCodon, e.OldAA, e.NewAA))
		return
	case diff%3 != 0:
		e.NewCodon = codons(cc.newCDS, c1, c1)
		e.NewAA = cc.table.Translate(e.NewCodon)
		e.AddType(EffectFrameShift)
		cc.lengthEffects(c1, e.OldAA, e.NewAA, false)
		return
	}

	newLen := len(e.OldCodon) + diff
	if newLen > 0 {
		e.NewCodon = codons(cc.newCDS, c1, c1+newLen/3-1)
		e.NewAA = cc.table.Translate(e.NewCodon)
	}
	kept := strings.HasPrefix(e.NewAA, e.OldAA) || strings.HasSuffix(e.NewAA, e.OldAA) ||
		strings.HasPrefix(e.OldAA, e.NewAA) || strings.HasSuffix(e.OldAA, e.NewAA)
	switch {
	case diff > 0 && kept:
		e.AddType(EffectCodonInsertion)
	case diff > 0:
		e.AddType(EffectCodonChangePlusCodonInsertion)
	case kept:
		e.AddType(EffectCodonDeletion)
	default:
		e.AddType(EffectCodonChangePlusCodonDeletion)
	}
	cc.lengthEffects(c1, e.OldAA, e.NewAA, true)
}

// changeInterval only locates the region in the CDS.
func changeInterval(cc *codonChange) {
	lo, _, ok := codingSpan(cc.v, cc.t)
	if ok {
		cc.setPosition(lo)
	}
}
