package genome

// Kind tags the variant of a Feature.
type Kind uint8

// Feature kinds, roughly in hierarchy order.
const (
	KindChromosome Kind = iota
	KindGene
	KindTranscript
	KindExon
	KindIntron
	KindUTR5
	KindUTR3
	KindCDS
	KindSpliceDonor
	KindSpliceAcceptor
	KindSpliceRegion
	KindSpliceBranch
	KindUpstream
	KindDownstream
	KindIntergenic
	KindCustom
)

// NumKinds is the number of feature kinds. It also bounds the depth of
// any parent chain.
const NumKinds = int(KindCustom) + 1

var kindNames = [NumKinds]string{
	"Chromosome",
	"Gene",
	"Transcript",
	"Exon",
	"Intron",
	"Utr5prime",
	"Utr3prime",
	"Cds",
	"SpliceSiteDonor",
	"SpliceSiteAcceptor",
	"SpliceSiteRegion",
	"SpliceSiteBranch",
	"Upstream",
	"Downstream",
	"Intergenic",
	"Custom",
}

func (k Kind) String() string {
	if int(k) < NumKinds {
		return kindNames[k]
	}
	return "Unknown"
}

// IsSpliceSite returns true for the four splice site kinds.
func (k Kind) IsSpliceSite() bool {
	return k >= KindSpliceDonor && k <= KindSpliceBranch
}

// exemptFromContainment reports kinds whose interval may extend past
// their parent's.
func (k Kind) exemptFromContainment() bool {
	return k.IsSpliceSite() || k == KindUpstream || k == KindDownstream
}

// parentKind is the only kind a feature of kind k may hang off.
func (k Kind) parentKind() Kind {
	switch k {
	case KindGene, KindIntergenic, KindCustom:
		return KindChromosome
	case KindTranscript:
		return KindGene
	default:
		return KindTranscript
	}
}

// Ref indexes a Feature in its Genome's arena.
type Ref int32

// NoRef marks the absence of a parent.
const NoRef Ref = -1

// Feature is one record of the genome arena. Which payload fields are
// meaningful depends on Kind.
type Feature struct {
	Interval
	Ref    Ref
	Parent Ref
	Kind   Kind
	ID     string

	Name    string // gene symbol, flanking genes for intergenic, marker name for custom
	Biotype string
	Coding  bool // gene and transcript

	Rank     int    // exon, intron and splice sites: rank in transcription order
	Frame    int    // exon: GTF-style phase, -1 when non-coding
	Sequence string // exon: transcript-strand sequence, 5' to 3'
	U12      bool   // branch site
	Exonic   bool   // splice region on the exon side of the boundary
}

// HasSequence returns true if the exon carries a sequence of the right length.
func (f *Feature) HasSequence() bool {
	return len(f.Sequence) == f.Len()
}
