package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpactOf_AllTypesMapped(t *testing.T) {
	for _, typ := range AllEffectTypes() {
		impact, err := ImpactOf(typ)
		require.NoError(t, err, typ)
		assert.NotEmpty(t, impact)
	}

	_, err := ImpactOf("NOT_AN_EFFECT")
	assert.ErrorIs(t, err, ErrUnmappedEffect)
}

func TestImpactOf_SynonymousNeverSevere(t *testing.T) {
	for _, typ := range []EffectType{EffectSynonymousCoding, EffectSynonymousStart, EffectSynonymousStop} {
		impact, err := ImpactOf(typ)
		require.NoError(t, err)
		assert.LessOrEqual(t, ImpactRank(impact), ImpactRank(ImpactLow), typ)
	}
}

func TestImpactRank(t *testing.T) {
	assert.Greater(t, ImpactRank(ImpactHigh), ImpactRank(ImpactModerate))
	assert.Greater(t, ImpactRank(ImpactModerate), ImpactRank(ImpactLow))
	assert.Greater(t, ImpactRank(ImpactLow), ImpactRank(ImpactModifier))
	assert.Equal(t, 0, ImpactRank("other"))
}

func TestHighestImpact(t *testing.T) {
	impact, err := highestImpact([]EffectType{EffectUTR5Prime, EffectStartGained})
	require.NoError(t, err)
	assert.Equal(t, ImpactLow, impact)

	impact, err = highestImpact([]EffectType{EffectFrameShift, EffectStartLost})
	require.NoError(t, err)
	assert.Equal(t, ImpactHigh, impact)

	impact, err = highestImpact(nil)
	require.NoError(t, err)
	assert.Equal(t, ImpactModifier, impact)
}

func TestIssueTier(t *testing.T) {
	for _, i := range AllIssues() {
		assert.NotEqual(t, "UNKNOWN_ISSUE", i.String())
	}
	assert.Equal(t, TierError, ErrOutOfExon.Tier())
	assert.Equal(t, TierError, ErrMissingCDSSequence.Tier())
	assert.Equal(t, TierWarning, WarnRefMismatch.Tier())
	assert.Equal(t, "WARNING", WarnCDSBoundsAdjusted.Tier().String())
}

func TestChangeEffect_Issues(t *testing.T) {
	e := newEffect(nil, nil, nil, EffectExon)
	e.AddIssue(WarnRefMismatch)
	e.AddIssue(WarnRefMismatch)
	e.AddIssue(ErrOutOfExon)
	assert.Len(t, e.Issues, 2)
	assert.Equal(t, []Issue{ErrOutOfExon}, e.IssuesOf(TierError))
	assert.Equal(t, []Issue{WarnRefMismatch}, e.IssuesOf(TierWarning))

	e.AddType(EffectExon)
	e.AddType(EffectStartGained)
	assert.Equal(t, "EXON+START_GAINED", e.TypeString())
	assert.Equal(t, EffectExon, e.Primary())
}
