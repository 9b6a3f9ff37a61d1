// Package variant models sequence variants in 0-based genomic coordinates.
package variant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bebop/poly/transform"

	"github.com/inodb/vibe-eff/internal/genome"
)

// ErrUnsupportedAllele is returned for symbolic or missing VCF alleles.
var ErrUnsupportedAllele = errors.New("unsupported allele")

// Kind is the type of sequence change.
type Kind uint8

const (
	SNP Kind = iota
	MNP
	INS
	DEL
	MIXED
	Interval
)

// NumKinds is the number of variant kinds.
const NumKinds = int(Interval) + 1

var kindNames = [NumKinds]string{"SNP", "MNP", "INS", "DEL", "MIXED", "INTERVAL"}

func (k Kind) String() string {
	if int(k) < NumKinds {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IndelRef is the reference placeholder used by insertions and deletions.
const IndelRef = "*"

// Variant is a single sequence change on the forward strand.
//
// Insertions and deletions use Ref "*" and carry their bases in Alt with a
// "+" or "-" prefix. An insertion at Start places its bases before the
// reference base at Start, so Start == End. A deletion covers Start..End.
type Variant struct {
	genome.Interval
	Kind    Kind
	Ref     string
	Alt     string
	ID      string
	Options []string // alternative Alt values for ambiguous encodings

	// original VCF anchor, kept so multi-allelic options can be re-minimized
	vcfPos int
	vcfRef string
}

func newVariant(kind Kind, chrom string, start, end int, ref, alt, id string) *Variant {
	return &Variant{
		Interval: genome.Interval{Chrom: chrom, Start: start, End: end, Strand: genome.Forward},
		Kind:     kind,
		Ref:      ref,
		Alt:      alt,
		ID:       id,
	}
}

// NewSNP creates a single base substitution. An IUPAC ambiguity code in
// alt is expanded into Options.
func NewSNP(chrom string, pos int, ref, alt, id string) *Variant {
	ref, alt = strings.ToUpper(ref), strings.ToUpper(alt)
	v := newVariant(SNP, chrom, pos, pos, ref, alt, id)
	if len(alt) == 1 {
		v.Options = expandIUPAC(alt[0], ref)
	}
	return v
}

// NewMNP creates a multi-base substitution of equal length alleles.
func NewMNP(chrom string, start int, ref, alt, id string) *Variant {
	return newVariant(MNP, chrom, start, start+len(ref)-1, strings.ToUpper(ref), strings.ToUpper(alt), id)
}

// NewInsertion inserts bases before the reference base at pos.
func NewInsertion(chrom string, pos int, bases, id string) *Variant {
	return newVariant(INS, chrom, pos, pos, IndelRef, "+"+strings.ToUpper(bases), id)
}

// NewDeletion deletes the given reference bases starting at start.
func NewDeletion(chrom string, start int, bases, id string) *Variant {
	return newVariant(DEL, chrom, start, start+len(bases)-1, IndelRef, "-"+strings.ToUpper(bases), id)
}

// NewMixed replaces ref with an alt of a different length.
func NewMixed(chrom string, start int, ref, alt, id string) *Variant {
	return newVariant(MIXED, chrom, start, start+len(ref)-1, strings.ToUpper(ref), strings.ToUpper(alt), id)
}

// NewInterval creates a region without a sequence change.
func NewInterval(chrom string, start, end int, id string) *Variant {
	return newVariant(Interval, chrom, start, end, "", "", id)
}

// FromVCF builds the minimal representation of a VCF allele. pos is the
// 1-based VCF position. A comma separated alt becomes a variant for the
// first allele with the rest listed in Options.
func FromVCF(chrom string, pos int, ref, alt, id string) (*Variant, error) {
	alts := strings.Split(alt, ",")
	v, err := fromVCFAllele(chrom, pos, ref, alts[0], id)
	if err != nil {
		return nil, err
	}
	if len(alts) > 1 {
		v.Options = alts
		v.vcfPos, v.vcfRef = pos, ref
	}
	return v, nil
}

func fromVCFAllele(chrom string, pos int, ref, alt, id string) (*Variant, error) {
	ref, alt = strings.ToUpper(ref), strings.ToUpper(alt)
	if alt == "" || alt == "." || alt == "*" || strings.HasPrefix(alt, "<") || strings.ContainsAny(alt, "[]") {
		return nil, fmt.Errorf("%w: %q at %s:%d", ErrUnsupportedAllele, alt, chrom, pos)
	}
	if ref == "" || pos < 1 {
		return nil, fmt.Errorf("%w: empty reference at %s:%d", ErrUnsupportedAllele, chrom, pos)
	}
	start := pos - 1

	if ref == alt {
		if len(ref) == 1 {
			return NewSNP(chrom, start, ref, alt, id), nil
		}
		return NewMNP(chrom, start, ref, alt, id), nil
	}

	// Trim the shared prefix first so VCF anchor bases drop off the front.
	i := 0
	for i < len(ref) && i < len(alt) && ref[i] == alt[i] {
		i++
	}
	ref, alt, start = ref[i:], alt[i:], start+i
	j := 0
	for j < len(ref) && j < len(alt) && ref[len(ref)-1-j] == alt[len(alt)-1-j] {
		j++
	}
	ref, alt = ref[:len(ref)-j], alt[:len(alt)-j]

	switch {
	case ref == "":
		return NewInsertion(chrom, start, alt, id), nil
	case alt == "":
		return NewDeletion(chrom, start, ref, id), nil
	case len(ref) == len(alt) && len(ref) == 1:
		return NewSNP(chrom, start, ref, alt, id), nil
	case len(ref) == len(alt):
		return NewMNP(chrom, start, ref, alt, id), nil
	default:
		return NewMixed(chrom, start, ref, alt, id), nil
	}
}

// WithOption returns a new single-allele variant for Options[i]. Options
// of a multi-allelic VCF record are re-minimized against the original
// reference.
func (v *Variant) WithOption(i int) (*Variant, error) {
	if i < 0 || i >= len(v.Options) {
		return nil, fmt.Errorf("option %d out of range (%d options)", i, len(v.Options))
	}
	opt := v.Options[i]
	if v.vcfRef != "" {
		return fromVCFAllele(v.Chrom, v.vcfPos, v.vcfRef, opt, v.ID)
	}
	if v.Kind == SNP && len(opt) == 1 {
		return newVariant(SNP, v.Chrom, v.Start, v.End, v.Ref, opt, v.ID), nil
	}
	return nil, fmt.Errorf("option %q cannot be applied to %s variant", opt, v.Kind)
}

// Expand returns one variant per allele. Variants without options are
// returned unchanged.
func (v *Variant) Expand() ([]*Variant, error) {
	if len(v.Options) == 0 {
		return []*Variant{v}, nil
	}
	out := make([]*Variant, 0, len(v.Options))
	for i := range v.Options {
		o, err := v.WithOption(i)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// IsDel returns true for deletions.
func (v *Variant) IsDel() bool { return v.Kind == DEL }

// IsInterval returns true for regions without a sequence change.
func (v *Variant) IsInterval() bool { return v.Kind == Interval }

// IsNoOp returns true if applying the variant leaves the sequence unchanged.
func (v *Variant) IsNoOp() bool {
	return (v.Kind == SNP || v.Kind == MNP) && v.Ref == v.Alt
}

// Bases returns the inserted or deleted bases for indels and the alternate
// allele otherwise, on the forward strand.
func (v *Variant) Bases() string {
	if v.Kind == INS || v.Kind == DEL {
		return v.Alt[1:]
	}
	return v.Alt
}

// RefBases returns the reference bases the variant replaces.
func (v *Variant) RefBases() string {
	switch v.Kind {
	case DEL:
		return v.Alt[1:]
	case INS, Interval:
		return ""
	}
	return v.Ref
}

// LengthChange returns the change in sequence length.
func (v *Variant) LengthChange() int {
	switch v.Kind {
	case INS:
		return len(v.Alt) - 1
	case DEL:
		return -(len(v.Alt) - 1)
	case MIXED:
		return len(v.Alt) - len(v.Ref)
	}
	return 0
}

// NetChange returns Bases on the given strand.
func (v *Variant) NetChange(strand int8) string {
	b := v.Bases()
	if strand == genome.Reverse {
		return transform.ReverseComplement(b)
	}
	return b
}

// NetChangeWithin returns the forward strand bases of the change that
// fall inside iv. Substitutions are aligned base by base with the
// reference; surplus alternate bases of a MIXED change belong to its last
// reference base. An insertion counts when iv contains its position.
func (v *Variant) NetChangeWithin(iv genome.Interval) string {
	switch v.Kind {
	case INS:
		if iv.Contains(v.Start) {
			return v.Bases()
		}
		return ""
	case Interval:
		return ""
	}
	s := max(iv.Start, v.Start) - v.Start
	e := min(iv.End, v.End) - v.Start
	if s > e {
		return ""
	}
	b := v.Bases()
	if v.Kind == DEL {
		return b[s : e+1]
	}
	end := min(e+1, len(b))
	if v.Start+e == v.End {
		end = len(b)
	}
	return b[min(s, end):end]
}

// String returns a compact description such as "1:100 A>G".
func (v *Variant) String() string {
	return fmt.Sprintf("%s:%d %s>%s", v.Chrom, v.Start, v.Ref, v.Alt)
}
