package annotate

import (
	"strconv"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// annotateHGVSc sets the c./n. notation on every effect belonging to t.
func (c *Classifier) annotateHGVSc(v *variant.Variant, t *genome.Transcript, effs []*ChangeEffect) {
	if !c.hgvs {
		return
	}
	var hgvs string
	done := false
	for _, e := range effs {
		if e.Transcript != t || e.Feature == nil {
			continue
		}
		switch e.Feature.Kind {
		case genome.KindUpstream, genome.KindDownstream:
			continue
		}
		if !done {
			hgvs, done = FormatHGVSc(v, t), true
		}
		e.HGVSc = hgvs
	}
}

// FormatHGVSc formats the HGVS notation of v on t: c. for coding
// transcripts, n. otherwise. Returns "" for regions and for variants
// reaching outside the transcript.
func FormatHGVSc(v *variant.Variant, t *genome.Transcript) string {
	if v.IsInterval() || !t.Feature().Includes(v.Interval) {
		return ""
	}
	prefix := "c."
	if !t.IsCoding() {
		prefix = "n."
	}

	strand := t.Feature().Strand
	var body string
	switch v.Kind {
	case variant.SNP:
		pos := hgvsPos(t, v.Start)
		if pos == "" {
			return ""
		}
		ref, alt := v.Ref, v.Alt
		if t.IsReverse() {
			ref, alt = genome.ReverseComplement(ref), genome.ReverseComplement(alt)
		}
		body = pos + ref + ">" + alt
	case variant.MNP, variant.MIXED:
		r := hgvsRange(t, v.Start, v.End)
		if r == "" {
			return ""
		}
		body = r + "delins" + v.NetChange(strand)
	case variant.DEL:
		body = hgvsDeletion(t, v)
	case variant.INS:
		body = hgvsInsertion(t, v)
	}
	if body == "" {
		return ""
	}
	return prefix + body
}

// hgvsPos formats a genomic position relative to t. Intronic positions
// are given as an offset from the nearer exon boundary; a tie goes to the
// 5' boundary.
func hgvsPos(t *genome.Transcript, pos int) string {
	if m, ok := t.GenomicToMRNA(pos); ok {
		return mrnaPos(t, m)
	}
	in := t.FindIntron(pos)
	if in == nil {
		return ""
	}
	b5, b3 := in.Start-1, in.End+1
	if t.IsReverse() {
		b5, b3 = in.End+1, in.Start-1
	}
	d5, d3 := abs(pos-b5), abs(b3-pos)
	if d5 <= d3 {
		m, ok := t.GenomicToMRNA(b5)
		if !ok {
			return ""
		}
		return mrnaPos(t, m) + "+" + strconv.Itoa(d5)
	}
	m, ok := t.GenomicToMRNA(b3)
	if !ok {
		return ""
	}
	return mrnaPos(t, m) + "-" + strconv.Itoa(d3)
}

// mrnaPos formats a 0-based spliced transcript offset. Coding transcripts
// count from the first CDS base, with 5'UTR bases as -N and 3'UTR bases
// as *N.
func mrnaPos(t *genome.Transcript, m int) string {
	if !t.IsCoding() {
		return strconv.Itoa(m + 1)
	}
	utr5, cdsLen := t.UTR5Length(), t.CDSLength()
	switch {
	case m < utr5:
		return "-" + strconv.Itoa(utr5-m)
	case m >= utr5+cdsLen:
		return "*" + strconv.Itoa(m-utr5-cdsLen+1)
	}
	return strconv.Itoa(m - utr5 + 1)
}

func mrnaRange(t *genome.Transcript, m1, m2 int) string {
	if m1 == m2 {
		return mrnaPos(t, m1)
	}
	return mrnaPos(t, m1) + "_" + mrnaPos(t, m2)
}

// hgvsRange formats the genomic range lo..hi in transcription order.
func hgvsRange(t *genome.Transcript, lo, hi int) string {
	first, last := lo, hi
	if t.IsReverse() {
		first, last = hi, lo
	}
	p1 := hgvsPos(t, first)
	if first == last {
		return p1
	}
	p2 := hgvsPos(t, last)
	if p1 == "" || p2 == "" {
		return ""
	}
	return p1 + "_" + p2
}

// hgvsDeletion shifts an exonic deletion to its most 3' position in the
// spliced transcript before formatting it.
func hgvsDeletion(t *genome.Transcript, v *variant.Variant) string {
	first, last := v.Start, v.End
	if t.IsReverse() {
		first, last = v.End, v.Start
	}
	mrna := t.MRNA()
	m1, ok1 := t.GenomicToMRNA(first)
	m2, ok2 := t.GenomicToMRNA(last)
	if mrna != "" && ok1 && ok2 && m2-m1 == v.Len()-1 {
		for m2+1 < len(mrna) && mrna[m2+1] == mrna[m1] {
			m1++
			m2++
		}
		return mrnaRange(t, m1, m2) + "del"
	}
	r := hgvsRange(t, v.Start, v.End)
	if r == "" {
		return ""
	}
	return r + "del"
}

// hgvsInsertion shifts an exonic insertion to its most 3' position in the
// spliced transcript and reports it as a duplication when the inserted
// bases repeat the preceding ones.
func hgvsInsertion(t *genome.Transcript, v *variant.Variant) string {
	orig := v.NetChange(t.Feature().Strand)
	if orig == "" {
		return ""
	}
	// flanking bases in transcription order
	a, b := v.Start-1, v.Start
	if t.IsReverse() {
		a, b = v.Start, v.Start-1
	}

	mrna := t.MRNA()
	ma, okA := t.GenomicToMRNA(a)
	mb, okB := t.GenomicToMRNA(b)
	if mrna != "" && okA && okB && mb == ma+1 {
		ins, k := orig, mb
		for k < len(mrna) && mrna[k] == ins[0] {
			ins = ins[1:] + ins[:1]
			k++
		}
		n := len(ins)
		if k >= n && mrna[k-n:k] == ins {
			return mrnaRange(t, k-n, k-1) + "dup"
		}
		if k < len(mrna) {
			return mrnaPos(t, k-1) + "_" + mrnaPos(t, k) + "ins" + ins
		}
	}

	pa, pb := hgvsPos(t, a), hgvsPos(t, b)
	if pa == "" || pb == "" {
		return ""
	}
	return pa + "_" + pb + "ins" + orig
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
