package genome

import "strings"

// Bounds are the CDS limits of a transcript in transcription order: on the
// reverse strand Start is the higher coordinate.
type Bounds struct {
	Start int
	End   int
	// Snapped is set when a bound fell outside every exon and had to be
	// moved to the nearest exon boundary.
	Snapped bool
}

// Low returns the lower genomic coordinate of the bounds.
func (b Bounds) Low() int { return min(b.Start, b.End) }

// High returns the higher genomic coordinate of the bounds.
func (b Bounds) High() int { return max(b.Start, b.End) }

// Interval returns the bounds as a genomic interval on chrom.
func (b Bounds) Interval(chrom string, strand int8) Interval {
	return Interval{Chrom: chrom, Start: b.Low(), End: b.High(), Strand: strand}
}

// codingSegment is the coding part of one exon.
type codingSegment struct {
	exon   *Feature
	start  int // genomic, inclusive
	end    int
	offset int // CDS bases before this segment
}

func (s codingSegment) len() int { return s.end - s.start + 1 }

// codingModel is derived once per transcript and published atomically.
type codingModel struct {
	bounds   Bounds
	segments []codingSegment
	cdsLen   int
	mrna     string
	utr5Len  int
	hasSeq   bool
	mrnaOffs []int // spliced offset of each exon, rank order
}

func (t *Transcript) coding() *codingModel {
	if m := t.model.Load(); m != nil {
		return m
	}
	m := t.buildCoding()
	t.model.Store(m)
	return m
}

func (t *Transcript) buildCoding() *codingModel {
	m := &codingModel{}

	var b strings.Builder
	m.hasSeq = len(t.exons) > 0
	m.mrnaOffs = make([]int, len(t.exons))
	off := 0
	for i, e := range t.exons {
		m.mrnaOffs[i] = off
		off += e.Len()
		if !e.HasSequence() {
			m.hasSeq = false
		}
		b.WriteString(e.Sequence)
	}
	if m.hasSeq {
		m.mrna = b.String()
	}

	if len(t.exons) == 0 {
		return m
	}
	m.bounds = t.calcBounds()
	if m.bounds.Start < 0 || m.bounds.End < 0 {
		return m
	}
	if t.IsReverse() != (m.bounds.Start > m.bounds.End) && m.bounds.Start != m.bounds.End {
		return m
	}
	lo, hi := m.bounds.Low(), m.bounds.High()
	for _, e := range t.exons {
		s, en := max(e.Start, lo), min(e.End, hi)
		if s > en {
			continue
		}
		m.segments = append(m.segments, codingSegment{exon: e, start: s, end: en, offset: m.cdsLen})
		m.cdsLen += en - s + 1
	}
	if p, ok := t.mrnaPos(m, m.bounds.Start); ok {
		m.utr5Len = p
	}
	return m
}

// calcBounds places the CDS just inside the UTRs, or across the whole exon
// span when there are none. Bounds landing in an intron are moved to the
// nearest exon base in the direction of the CDS.
func (t *Transcript) calcBounds() Bounds {
	first, last := t.exons[0], t.exons[len(t.exons)-1]
	rev := t.IsReverse()
	if len(t.utr5) == 0 && len(t.utr3) == 0 {
		if rev {
			return Bounds{Start: first.End, End: last.Start}
		}
		return Bounds{Start: first.Start, End: last.End}
	}

	lo, hi := min(first.Start, last.Start), max(first.End, last.End)
	var start, end int
	if rev {
		start, end = hi, lo
		for _, u := range t.utr5 {
			start = min(start, u.Start-1)
		}
		for _, u := range t.utr3 {
			end = max(end, u.End+1)
		}
	} else {
		start, end = lo, hi
		for _, u := range t.utr5 {
			start = max(start, u.End+1)
		}
		for _, u := range t.utr3 {
			end = min(end, u.Start-1)
		}
	}

	b := Bounds{Start: start, End: end}
	if rev {
		b.Start = t.lastExonPositionBefore(start)
		b.End = t.firstExonPositionAfter(end)
	} else {
		b.Start = t.firstExonPositionAfter(start)
		b.End = t.lastExonPositionBefore(end)
	}
	// A bound one past a UTR that ends on an exon edge naturally falls in
	// the next intron; only other intronic bounds are annotation errors.
	dir := 1
	if rev {
		dir = -1
	}
	if b.Start != start && !t.IsExonic(start-dir) {
		b.Snapped = true
	}
	if b.End != end && !t.IsExonic(end+dir) {
		b.Snapped = true
	}
	return b
}

// CDSBounds returns the transcript's coding bounds.
func (t *Transcript) CDSBounds() Bounds {
	return t.coding().bounds
}

// CDSLength returns the number of coding bases implied by the exon
// coordinates, independent of sequence availability.
func (t *Transcript) CDSLength() int {
	return t.coding().cdsLen
}

// GenomicToCDSBase maps a genomic position to a 0-based CDS base number.
// Intronic positions map to the next coding base in transcription order;
// positions before the CDS start return 0 and after the CDS end return the
// CDS length.
func (t *Transcript) GenomicToCDSBase(pos int) int {
	m := t.coding()
	rev := t.IsReverse()
	for _, s := range m.segments {
		if rev {
			if pos > s.end {
				return s.offset
			}
			if pos >= s.start {
				return s.offset + s.end - pos
			}
		} else {
			if pos < s.start {
				return s.offset
			}
			if pos <= s.end {
				return s.offset + pos - s.start
			}
		}
	}
	return m.cdsLen
}

// CDSBaseToGenomic maps a 0-based CDS base number back to its genomic
// position.
func (t *Transcript) CDSBaseToGenomic(n int) (int, bool) {
	m := t.coding()
	for _, s := range m.segments {
		if n < s.offset || n >= s.offset+s.len() {
			continue
		}
		if t.IsReverse() {
			return s.end - (n - s.offset), true
		}
		return s.start + (n - s.offset), true
	}
	return 0, false
}

// CDSBaseToCodon splits a 0-based CDS base number into a 0-based codon
// number and the offset within that codon.
func CDSBaseToCodon(n int) (codon, offset int) {
	return n / 3, n % 3
}

// IsCodingBase returns true if pos lies in the coding part of an exon.
func (t *Transcript) IsCodingBase(pos int) bool {
	for _, s := range t.coding().segments {
		if pos >= s.start && pos <= s.end {
			return true
		}
	}
	return false
}

// GenomicToMRNA maps an exonic position to its 0-based offset in the
// spliced transcript.
func (t *Transcript) GenomicToMRNA(pos int) (int, bool) {
	return t.mrnaPos(t.coding(), pos)
}

func (t *Transcript) mrnaPos(m *codingModel, pos int) (int, bool) {
	i := t.searchExon(pos)
	if i < 0 {
		return 0, false
	}
	e := t.exons[i]
	if t.IsReverse() {
		return m.mrnaOffs[i] + e.End - pos, true
	}
	return m.mrnaOffs[i] + pos - e.Start, true
}

// MRNALength returns the spliced transcript length.
func (t *Transcript) MRNALength() int {
	n := 0
	for _, e := range t.exons {
		n += e.Len()
	}
	return n
}

// HasSequence returns true if every exon carries its sequence.
func (t *Transcript) HasSequence() bool {
	return t.coding().hasSeq
}

// MRNA returns the spliced transcript sequence, or "" when any exon lacks
// sequence.
func (t *Transcript) MRNA() string {
	return t.coding().mrna
}

// CDS returns the coding sequence, or "" when unavailable.
func (t *Transcript) CDS() string {
	m := t.coding()
	if !m.hasSeq || m.cdsLen == 0 {
		return ""
	}
	return m.mrna[m.utr5Len : m.utr5Len+m.cdsLen]
}

// UTR5Length returns the number of exonic bases before the CDS start.
func (t *Transcript) UTR5Length() int {
	return t.coding().utr5Len
}

// UTR3Sequence returns the spliced sequence following the CDS, used when
// scanning for a downstream stop codon.
func (t *Transcript) UTR3Sequence() string {
	m := t.coding()
	if !m.hasSeq || m.cdsLen == 0 {
		return ""
	}
	return m.mrna[m.utr5Len+m.cdsLen:]
}

// CodingCheck flags common annotation problems in a coding transcript.
type CodingCheck struct {
	NoStart       bool
	NoStop        bool
	MultipleStops bool
	Incomplete    bool
}

// Any returns true if any problem was found.
func (c CodingCheck) Any() bool {
	return c.NoStart || c.NoStop || c.MultipleStops || c.Incomplete
}

type codingCheckEntry struct {
	table *CodonTable
	check CodingCheck
}

// CheckCoding inspects the CDS with the given codon table. Transcripts
// without sequence report no problems.
func (t *Transcript) CheckCoding(table *CodonTable) CodingCheck {
	if e := t.check.Load(); e != nil && e.table == table {
		return e.check
	}
	var c CodingCheck
	if cds := t.CDS(); cds != "" {
		c.Incomplete = len(cds)%3 != 0
		c.NoStart = len(cds) < 3 || !table.IsStart(cds[:3])
		n := len(cds) / 3
		if n == 0 || !table.IsStop(cds[(n-1)*3:n*3]) {
			c.NoStop = true
		}
		for i := 0; i < n-1; i++ {
			if table.IsStop(cds[i*3 : i*3+3]) {
				c.MultipleStops = true
				break
			}
		}
	}
	t.check.Store(&codingCheckEntry{table: table, check: c})
	return c
}
