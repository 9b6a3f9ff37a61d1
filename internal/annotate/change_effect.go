package annotate

import (
	"strings"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// ChangeEffect is the predicted effect of one variant on one feature.
type ChangeEffect struct {
	Variant    *variant.Variant
	Feature    *genome.Feature
	Transcript *genome.Transcript // nil for features outside a transcript

	Types  []EffectType // primary first
	Impact Impact

	OldCodon string
	NewCodon string
	OldAA    string // one-letter amino acids
	NewAA    string

	CDSBase    int // 0-based, -1 when not applicable
	CodonNum   int // 0-based, -1 when not applicable
	CodonIndex int // offset of CDSBase in its codon
	CDSLength  int
	Distance   int // to the transcript, CDS or exon boundary, -1 when not applicable
	Rank       int // exon or intron rank

	Detail string
	HGVSc  string
	HGVSp  string
	Issues []Issue
}

// newEffect returns an effect with all coordinates unset.
func newEffect(v *variant.Variant, f *genome.Feature, t *genome.Transcript, types ...EffectType) *ChangeEffect {
	e := &ChangeEffect{
		Variant:    v,
		Feature:    f,
		Transcript: t,
		Types:      types,
		CDSBase:    -1,
		CodonNum:   -1,
		CodonIndex: -1,
		Distance:   -1,
	}
	if f != nil {
		e.Rank = f.Rank
	}
	return e
}

// Primary returns the main effect type.
func (e *ChangeEffect) Primary() EffectType {
	if len(e.Types) == 0 {
		return ""
	}
	return e.Types[0]
}

// Has returns true if the effect carries type t.
func (e *ChangeEffect) Has(t EffectType) bool {
	for _, et := range e.Types {
		if et == t {
			return true
		}
	}
	return false
}

// AddType appends t unless already present.
func (e *ChangeEffect) AddType(t EffectType) {
	if !e.Has(t) {
		e.Types = append(e.Types, t)
	}
}

// AddIssue appends i unless already present.
func (e *ChangeEffect) AddIssue(i Issue) {
	if !e.HasIssue(i) {
		e.Issues = append(e.Issues, i)
	}
}

// HasIssue returns true if the effect carries issue i.
func (e *ChangeEffect) HasIssue(i Issue) bool {
	for _, is := range e.Issues {
		if is == i {
			return true
		}
	}
	return false
}

// IssuesOf returns the issues of one tier.
func (e *ChangeEffect) IssuesOf(tier Tier) []Issue {
	var out []Issue
	for _, i := range e.Issues {
		if i.Tier() == tier {
			out = append(out, i)
		}
	}
	return out
}

// TypeString joins the effect types with "+".
func (e *ChangeEffect) TypeString() string {
	parts := make([]string, len(e.Types))
	for i, t := range e.Types {
		parts[i] = string(t)
	}
	return strings.Join(parts, "+")
}

// GeneName returns the gene symbol, falling back to the gene ID.
func (e *ChangeEffect) GeneName() string {
	if e.Transcript == nil {
		return ""
	}
	gene := e.Transcript.Gene()
	if gene == nil {
		return ""
	}
	if gene.Name != "" {
		return gene.Name
	}
	return gene.ID
}

// TranscriptID returns the transcript ID, or "" for non-transcript features.
func (e *ChangeEffect) TranscriptID() string {
	if e.Transcript == nil {
		return ""
	}
	return e.Transcript.ID()
}

// setImpact computes the impact from the effect types. Variants that leave
// the sequence unchanged are always MODIFIER.
func (e *ChangeEffect) setImpact() error {
	impact, err := highestImpact(e.Types)
	if err != nil {
		return err
	}
	if e.Variant != nil && e.Variant.IsNoOp() {
		impact = ImpactModifier
	}
	e.Impact = impact
	return nil
}
