// Package annotate classifies the functional effect of sequence variants on
// genomic features and formats HGVS descriptions of the changes.
package annotate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmappedEffect is returned when an effect type has no impact tier.
	ErrUnmappedEffect = errors.New("effect type has no impact")
	// ErrUnimplemented is returned when a feature kind has no classifier or
	// a variant kind has no codon change strategy.
	ErrUnimplemented = errors.New("not implemented")
)

// Impact levels for variant effects.
type Impact string

const (
	ImpactHigh     Impact = "HIGH"
	ImpactModerate Impact = "MODERATE"
	ImpactLow      Impact = "LOW"
	ImpactModifier Impact = "MODIFIER"
)

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact Impact) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// EffectType names one kind of functional effect.
type EffectType string

const (
	// Structural
	EffectChromosomeLargeDeletion EffectType = "CHROMOSOME_LARGE_DELETION"
	EffectIntergenic              EffectType = "INTERGENIC"
	EffectIntragenic              EffectType = "INTRAGENIC"
	EffectUpstream                EffectType = "UPSTREAM"
	EffectDownstream              EffectType = "DOWNSTREAM"
	EffectTranscript              EffectType = "TRANSCRIPT"
	EffectExon                    EffectType = "EXON"
	EffectExonDeleted             EffectType = "EXON_DELETED"
	EffectIntron                  EffectType = "INTRON"
	EffectCDS                     EffectType = "CDS"
	EffectCustom                  EffectType = "CUSTOM"

	// UTRs
	EffectUTR5Prime   EffectType = "UTR_5_PRIME"
	EffectUTR5Deleted EffectType = "UTR_5_DELETED"
	EffectStartGained EffectType = "START_GAINED"
	EffectUTR3Prime   EffectType = "UTR_3_PRIME"
	EffectUTR3Deleted EffectType = "UTR_3_DELETED"

	// Splicing
	EffectSpliceSiteDonor     EffectType = "SPLICE_SITE_DONOR"
	EffectSpliceSiteAcceptor  EffectType = "SPLICE_SITE_ACCEPTOR"
	EffectSpliceSiteRegion    EffectType = "SPLICE_SITE_REGION"
	EffectSpliceSiteBranch    EffectType = "SPLICE_SITE_BRANCH"
	EffectSpliceSiteBranchU12 EffectType = "SPLICE_SITE_BRANCH_U12"

	// Coding
	EffectSynonymousCoding              EffectType = "SYNONYMOUS_CODING"
	EffectSynonymousStart               EffectType = "SYNONYMOUS_START"
	EffectSynonymousStop                EffectType = "SYNONYMOUS_STOP"
	EffectNonSynonymousCoding           EffectType = "NON_SYNONYMOUS_CODING"
	EffectNonSynonymousStart            EffectType = "NON_SYNONYMOUS_START"
	EffectNonSynonymousStop             EffectType = "NON_SYNONYMOUS_STOP"
	EffectStartLost                     EffectType = "START_LOST"
	EffectStopLost                      EffectType = "STOP_LOST"
	EffectStopGained                    EffectType = "STOP_GAINED"
	EffectFrameShift                    EffectType = "FRAME_SHIFT"
	EffectCodonInsertion                EffectType = "CODON_INSERTION"
	EffectCodonDeletion                 EffectType = "CODON_DELETION"
	EffectCodonChangePlusCodonInsertion EffectType = "CODON_CHANGE_PLUS_CODON_INSERTION"
	EffectCodonChangePlusCodonDeletion  EffectType = "CODON_CHANGE_PLUS_CODON_DELETION"
)

// effectImpacts maps every effect type to its impact tier.
var effectImpacts = map[EffectType]Impact{
	EffectChromosomeLargeDeletion: ImpactHigh,
	EffectExonDeleted:             ImpactHigh,
	EffectFrameShift:              ImpactHigh,
	EffectSpliceSiteAcceptor:      ImpactHigh,
	EffectSpliceSiteDonor:         ImpactHigh,
	EffectStartLost:               ImpactHigh,
	EffectStopGained:              ImpactHigh,
	EffectStopLost:                ImpactHigh,

	EffectNonSynonymousCoding:           ImpactModerate,
	EffectCodonInsertion:                ImpactModerate,
	EffectCodonDeletion:                 ImpactModerate,
	EffectCodonChangePlusCodonInsertion: ImpactModerate,
	EffectCodonChangePlusCodonDeletion:  ImpactModerate,
	EffectUTR5Deleted:                   ImpactModerate,
	EffectUTR3Deleted:                   ImpactModerate,
	EffectSpliceSiteBranchU12:           ImpactModerate,

	EffectNonSynonymousStart: ImpactLow,
	EffectNonSynonymousStop:  ImpactLow,
	EffectSynonymousCoding:   ImpactLow,
	EffectSynonymousStart:    ImpactLow,
	EffectSynonymousStop:     ImpactLow,
	EffectStartGained:        ImpactLow,
	EffectSpliceSiteRegion:   ImpactLow,
	EffectSpliceSiteBranch:   ImpactLow,

	EffectIntergenic: ImpactModifier,
	EffectIntragenic: ImpactModifier,
	EffectUpstream:   ImpactModifier,
	EffectDownstream: ImpactModifier,
	EffectTranscript: ImpactModifier,
	EffectExon:       ImpactModifier,
	EffectIntron:     ImpactModifier,
	EffectCDS:        ImpactModifier,
	EffectCustom:     ImpactModifier,
	EffectUTR5Prime:  ImpactModifier,
	EffectUTR3Prime:  ImpactModifier,
}

// AllEffectTypes returns every known effect type.
func AllEffectTypes() []EffectType {
	out := make([]EffectType, 0, len(effectImpacts))
	for t := range effectImpacts {
		out = append(out, t)
	}
	return out
}

// ImpactOf returns the impact tier of an effect type.
func ImpactOf(t EffectType) (Impact, error) {
	impact, ok := effectImpacts[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedEffect, t)
	}
	return impact, nil
}

// highestImpact returns the most severe impact among types.
func highestImpact(types []EffectType) (Impact, error) {
	best := ImpactModifier
	for _, t := range types {
		impact, err := ImpactOf(t)
		if err != nil {
			return "", err
		}
		if ImpactRank(impact) > ImpactRank(best) {
			best = impact
		}
	}
	return best, nil
}
