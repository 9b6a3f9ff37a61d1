package genome

import (
	"fmt"
	"sort"
)

// Record is one input feature. Coordinates are 0-based and inclusive;
// Parent names the parent feature's ID (gene for transcripts, transcript
// for exons, CDS, UTR and branch records).
type Record struct {
	Kind     Kind
	Chrom    string
	Start    int
	End      int
	Strand   int8
	ID       string
	Parent   string
	Name     string
	Biotype  string
	Rank     int
	Sequence string // exon sequence on the transcript strand
	Coding   bool
	U12      bool
}

// BuildOptions control the features derived during Build.
type BuildOptions struct {
	UpstreamLength        int
	DownstreamLength      int
	SpliceSiteSize        int
	SpliceRegionExonSize  int
	SpliceRegionIntronMin int
	SpliceRegionIntronMax int
}

// DefaultBuildOptions returns the usual flank and splice region sizes.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		UpstreamLength:        5000,
		DownstreamLength:      5000,
		SpliceSiteSize:        2,
		SpliceRegionExonSize:  3,
		SpliceRegionIntronMin: 3,
		SpliceRegionIntronMax: 8,
	}
}

// SequenceSource returns forward-strand reference sequence for a closed
// 0-based range.
type SequenceSource interface {
	Sequence(chrom string, start, end int) (string, bool)
}

// Builder collects records and assembles them into a Genome.
type Builder struct {
	opts    BuildOptions
	records []Record
	seqs    SequenceSource
}

// NewBuilder creates an empty builder.
func NewBuilder(opts BuildOptions) *Builder {
	return &Builder{opts: opts}
}

// Add queues a record.
func (b *Builder) Add(r Record) {
	b.records = append(b.records, r)
}

// Len returns the number of queued records.
func (b *Builder) Len() int {
	return len(b.records)
}

// SetSequenceSource sets where exon sequences come from when records carry
// none.
func (b *Builder) SetSequenceSource(src SequenceSource) {
	b.seqs = src
}

// arena accumulates features; parents are always appended first.
type arena struct {
	features []Feature
}

func (a *arena) add(f Feature) Ref {
	f.Ref = Ref(len(a.features))
	a.features = append(a.features, f)
	return f.Ref
}

// Build derives introns, UTRs, splice sites, flanking and intergenic
// regions, and validates the hierarchy.
func (b *Builder) Build() (*Genome, error) {
	var (
		chromRecs   = make(map[string]Record)
		chromEnd    = make(map[string]int)
		genes       = make(map[string][]Record)
		transcripts = make(map[string][]Record)
		subs        = make(map[string][]Record)
		customs     = make(map[string][]Record)
		geneIDs     = make(map[string]bool)
		txIDs       = make(map[string]bool)
	)
	flank := max(b.opts.UpstreamLength, b.opts.DownstreamLength, 0)

	for _, r := range b.records {
		if r.Start < 0 || r.Start > r.End {
			return nil, fmt.Errorf("%w: %s %q has invalid range %d-%d", ErrMalformedHierarchy, r.Kind, r.ID, r.Start, r.End)
		}
		end := r.End
		if r.Kind == KindTranscript {
			end += flank
		}
		chromEnd[r.Chrom] = max(chromEnd[r.Chrom], end)

		switch r.Kind {
		case KindChromosome:
			chromRecs[r.Chrom] = r
		case KindGene:
			if geneIDs[r.ID] {
				return nil, fmt.Errorf("%w: duplicate gene %q", ErrMalformedHierarchy, r.ID)
			}
			geneIDs[r.ID] = true
			genes[r.Chrom] = append(genes[r.Chrom], r)
		case KindTranscript:
			if txIDs[r.ID] {
				return nil, fmt.Errorf("%w: duplicate transcript %q", ErrMalformedHierarchy, r.ID)
			}
			txIDs[r.ID] = true
			transcripts[r.Parent] = append(transcripts[r.Parent], r)
		case KindExon, KindCDS, KindUTR5, KindUTR3, KindSpliceBranch:
			subs[r.Parent] = append(subs[r.Parent], r)
		case KindCustom:
			customs[r.Chrom] = append(customs[r.Chrom], r)
		default:
			return nil, fmt.Errorf("%w: %s records are derived, not loaded", ErrMalformedHierarchy, r.Kind)
		}
	}
	for parent := range transcripts {
		if !geneIDs[parent] {
			return nil, fmt.Errorf("%w: transcript parent gene %q not found", ErrMalformedHierarchy, parent)
		}
	}
	for parent, rs := range subs {
		if !txIDs[parent] {
			return nil, fmt.Errorf("%w: %s %q parent transcript %q not found", ErrMalformedHierarchy, rs[0].Kind, rs[0].ID, parent)
		}
	}

	chroms := make([]string, 0, len(chromEnd))
	for c := range chromEnd {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)

	a := &arena{}
	for _, c := range chroms {
		cr, ok := chromRecs[c]
		if !ok {
			cr = Record{Chrom: c, Start: 0, End: chromEnd[c], ID: c}
		}
		cref := a.add(Feature{
			Interval: Interval{Chrom: c, Start: cr.Start, End: cr.End},
			Parent:   NoRef,
			Kind:     KindChromosome,
			ID:       c,
			Name:     cr.Name,
		})

		gs := genes[c]
		sort.Slice(gs, func(i, j int) bool {
			if gs[i].Start != gs[j].Start {
				return gs[i].Start < gs[j].Start
			}
			return gs[i].ID < gs[j].ID
		})
		for _, gr := range gs {
			if err := b.addGene(a, cref, gr, transcripts[gr.ID], subs); err != nil {
				return nil, err
			}
		}
		addIntergenic(a, cref, gs)

		for _, r := range customs[c] {
			a.add(Feature{
				Interval: Interval{Chrom: c, Start: r.Start, End: r.End, Strand: r.Strand},
				Parent:   cref,
				Kind:     KindCustom,
				ID:       r.ID,
				Name:     r.Name,
			})
		}
	}

	g := &Genome{features: a.features}
	if err := g.index(); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *Builder) addGene(a *arena, cref Ref, gr Record, txs []Record, subs map[string][]Record) error {
	coding := gr.Coding
	for _, t := range txs {
		coding = coding || t.Coding || hasKind(subs[t.ID], KindCDS)
	}
	gref := a.add(Feature{
		Interval: Interval{Chrom: gr.Chrom, Start: gr.Start, End: gr.End, Strand: gr.Strand},
		Parent:   cref,
		Kind:     KindGene,
		ID:       gr.ID,
		Name:     gr.Name,
		Biotype:  gr.Biotype,
		Coding:   coding,
	})

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Start != txs[j].Start {
			return txs[i].Start < txs[j].Start
		}
		return txs[i].ID < txs[j].ID
	})
	for _, tr := range txs {
		if tr.Strand == Unknown {
			tr.Strand = gr.Strand
		}
		if tr.Name == "" {
			tr.Name = gr.Name
		}
		if err := b.addTranscript(a, gref, tr, subs[tr.ID]); err != nil {
			return err
		}
	}
	return nil
}

func hasKind(rs []Record, k Kind) bool {
	for _, r := range rs {
		if r.Kind == k {
			return true
		}
	}
	return false
}

func (b *Builder) addTranscript(a *arena, gref Ref, tr Record, rs []Record) error {
	var exons, cds, utrs, branches []Record
	for _, r := range rs {
		r.Strand = tr.Strand
		switch r.Kind {
		case KindExon:
			exons = append(exons, r)
		case KindCDS:
			cds = append(cds, r)
		case KindUTR5, KindUTR3:
			utrs = append(utrs, r)
		case KindSpliceBranch:
			branches = append(branches, r)
		}
	}
	if len(exons) == 0 {
		return fmt.Errorf("%w: transcript %q has no exons", ErrMalformedHierarchy, tr.ID)
	}
	byStart := func(rs []Record) {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })
	}
	byStart(exons)
	byStart(cds)
	cds = mergeAdjacent(cds)

	rev := tr.Strand == Reverse
	n := len(exons)
	rankOf := func(i int) int {
		if rev {
			return n - i
		}
		return i + 1
	}
	for i := range exons {
		if i > 0 && exons[i].Start <= exons[i-1].End {
			return fmt.Errorf("%w: transcript %q has overlapping exons", ErrMalformedHierarchy, tr.ID)
		}
		if exons[i].Rank != 0 && exons[i].Rank != rankOf(i) {
			return fmt.Errorf("%w: transcript %q exon %q has rank %d, expected %d",
				ErrMalformedHierarchy, tr.ID, exons[i].ID, exons[i].Rank, rankOf(i))
		}
	}
	for _, c := range cds {
		if !containedInAny(c, exons) {
			return fmt.Errorf("%w: transcript %q CDS %d-%d lies outside its exons", ErrMalformedHierarchy, tr.ID, c.Start, c.End)
		}
	}
	if len(utrs) == 0 && len(cds) > 0 {
		utrs = deriveUTRs(exons, cds[0].Start, cds[len(cds)-1].End, rev)
	}

	tref := a.add(Feature{
		Interval: Interval{Chrom: tr.Chrom, Start: tr.Start, End: tr.End, Strand: tr.Strand},
		Parent:   gref,
		Kind:     KindTranscript,
		ID:       tr.ID,
		Name:     tr.Name,
		Biotype:  tr.Biotype,
		Coding:   tr.Coding || len(cds) > 0,
	})
	iv := func(r Record) Interval {
		return Interval{Chrom: tr.Chrom, Start: r.Start, End: r.End, Strand: tr.Strand}
	}

	frames := exonFrames(exons, cds, rev)
	for i, e := range exons {
		seq := e.Sequence
		if seq == "" && b.seqs != nil {
			if s, ok := b.seqs.Sequence(tr.Chrom, e.Start, e.End); ok {
				seq = s
				if rev {
					seq = ReverseComplement(s)
				}
			}
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s_exon_%d", tr.ID, rankOf(i))
		}
		a.add(Feature{Interval: iv(e), Parent: tref, Kind: KindExon, ID: id, Rank: rankOf(i), Frame: frames[i], Sequence: seq})
	}

	for i := 1; i < n; i++ {
		in := Record{Start: exons[i-1].End + 1, End: exons[i].Start - 1}
		if in.Start > in.End {
			continue
		}
		rank := i
		if rev {
			rank = n - i
		}
		a.add(Feature{Interval: iv(in), Parent: tref, Kind: KindIntron, ID: fmt.Sprintf("%s_intron_%d", tr.ID, rank), Rank: rank})
		b.addSpliceSites(a, tref, tr, exons[i-1], exons[i], in, rank)
	}

	for _, u := range utrs {
		a.add(Feature{Interval: iv(u), Parent: tref, Kind: u.Kind, ID: u.ID})
	}
	for _, c := range cds {
		a.add(Feature{Interval: iv(c), Parent: tref, Kind: KindCDS, ID: c.ID})
	}
	for _, br := range branches {
		a.add(Feature{Interval: iv(br), Parent: tref, Kind: KindSpliceBranch, ID: br.ID, U12: br.U12})
	}
	b.addFlanks(a, tref, tr)
	return nil
}

// addSpliceSites adds donor, acceptor and splice region sites around one
// intron. left and right are the exons on either side in genomic order.
func (b *Builder) addSpliceSites(a *arena, tref Ref, tr Record, left, right, in Record, rank int) {
	o := b.opts
	add := func(kind Kind, start, end int, exonic bool) {
		if !exonic {
			start, end = max(start, in.Start), min(end, in.End)
		}
		if start > end {
			return
		}
		a.add(Feature{
			Interval: Interval{Chrom: tr.Chrom, Start: start, End: end, Strand: tr.Strand},
			Parent:   tref,
			Kind:     kind,
			ID:       fmt.Sprintf("%s_%s_%d", tr.ID, kind, rank),
			Rank:     rank,
			Exonic:   exonic,
		})
	}

	if o.SpliceSiteSize > 0 {
		lowSite, highSite := KindSpliceDonor, KindSpliceAcceptor
		if tr.Strand == Reverse {
			lowSite, highSite = KindSpliceAcceptor, KindSpliceDonor
		}
		add(lowSite, in.Start, in.Start+o.SpliceSiteSize-1, false)
		add(highSite, in.End-o.SpliceSiteSize+1, in.End, false)
	}
	if o.SpliceRegionIntronMax > 0 {
		add(KindSpliceRegion, in.Start+o.SpliceRegionIntronMin-1, in.Start+o.SpliceRegionIntronMax-1, false)
		add(KindSpliceRegion, in.End-o.SpliceRegionIntronMax+1, in.End-o.SpliceRegionIntronMin+1, false)
	}
	if o.SpliceRegionExonSize > 0 {
		add(KindSpliceRegion, max(left.End-o.SpliceRegionExonSize+1, left.Start), left.End, true)
		add(KindSpliceRegion, right.Start, min(right.Start+o.SpliceRegionExonSize-1, right.End), true)
	}
}

func (b *Builder) addFlanks(a *arena, tref Ref, tr Record) {
	chromEnd := a.features[0].End
	for i := len(a.features) - 1; i >= 0; i-- {
		if f := &a.features[i]; f.Kind == KindChromosome && f.Chrom == tr.Chrom {
			chromEnd = f.End
			break
		}
	}
	before := func(n int) (int, int, bool) {
		return max(tr.Start-n, 0), tr.Start - 1, n > 0 && tr.Start > 0
	}
	after := func(n int) (int, int, bool) {
		return tr.End + 1, min(tr.End+n, chromEnd), n > 0 && tr.End < chromEnd
	}
	up, down := before, after
	if tr.Strand == Reverse {
		up, down = after, before
	}
	if s, e, ok := up(b.opts.UpstreamLength); ok {
		a.add(Feature{Interval: Interval{Chrom: tr.Chrom, Start: s, End: e, Strand: tr.Strand}, Parent: tref, Kind: KindUpstream, ID: tr.ID + "_upstream"})
	}
	if s, e, ok := down(b.opts.DownstreamLength); ok {
		a.add(Feature{Interval: Interval{Chrom: tr.Chrom, Start: s, End: e, Strand: tr.Strand}, Parent: tref, Kind: KindDownstream, ID: tr.ID + "_downstream"})
	}
}

// addIntergenic fills the gaps between consecutive (merged) genes.
func addIntergenic(a *arena, cref Ref, genes []Record) {
	if len(genes) == 0 {
		return
	}
	chrom := genes[0].Chrom
	label := func(r Record) string {
		if r.Name != "" {
			return r.Name
		}
		return r.ID
	}
	prev := genes[0]
	prevEnd := prev.End
	for _, g := range genes[1:] {
		if g.Start > prevEnd+1 {
			a.add(Feature{
				Interval: Interval{Chrom: chrom, Start: prevEnd + 1, End: g.Start - 1},
				Parent:   cref,
				Kind:     KindIntergenic,
				ID:       prev.ID + "-" + g.ID,
				Name:     label(prev) + "-" + label(g),
			})
		}
		if g.End > prevEnd {
			prev, prevEnd = g, g.End
		}
	}
}

// deriveUTRs returns the exonic parts outside [cdsStart, cdsEnd].
func deriveUTRs(exons []Record, cdsStart, cdsEnd int, rev bool) []Record {
	lowKind, highKind := KindUTR5, KindUTR3
	if rev {
		lowKind, highKind = KindUTR3, KindUTR5
	}
	var out []Record
	for _, e := range exons {
		if e.Start < cdsStart {
			out = append(out, Record{Kind: lowKind, Start: e.Start, End: min(e.End, cdsStart-1)})
		}
		if e.End > cdsEnd {
			out = append(out, Record{Kind: highKind, Start: max(e.Start, cdsEnd+1), End: e.End})
		}
	}
	return out
}

// exonFrames computes the GTF-style phase of each exon: the number of
// bases before the first complete codon. Non-coding exons get -1.
func exonFrames(exons, cds []Record, rev bool) []int {
	frames := make([]int, len(exons))
	for i := range frames {
		frames[i] = -1
	}
	if len(cds) == 0 {
		return frames
	}
	lo, hi := cds[0].Start, cds[len(cds)-1].End
	acc := 0
	step := func(i int) {
		e := exons[i]
		s, en := max(e.Start, lo), min(e.End, hi)
		if s > en {
			return
		}
		frames[i] = (3 - acc%3) % 3
		acc += en - s + 1
	}
	if rev {
		for i := len(exons) - 1; i >= 0; i-- {
			step(i)
		}
	} else {
		for i := range exons {
			step(i)
		}
	}
	return frames
}

func containedInAny(r Record, exons []Record) bool {
	for _, e := range exons {
		if e.Start <= r.Start && r.End <= e.End {
			return true
		}
	}
	return false
}

// mergeAdjacent joins sorted records that touch or overlap, as GTF CDS and
// stop_codon lines do.
func mergeAdjacent(rs []Record) []Record {
	if len(rs) == 0 {
		return rs
	}
	out := []Record{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+1 {
			last.End = max(last.End, r.End)
			continue
		}
		out = append(out, r)
	}
	return out
}
