package annotate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := 0; i < n; i++ {
		ch <- WorkItem{
			Seq:     i,
			Variant: variant.NewSNP("1", 100+i%400, "A", "T", fmt.Sprint(i)),
		}
	}
	close(ch)
	return ch
}

func TestParallelPredict_OrderPreservation(t *testing.T) {
	p := testPredictor(t, Options{})

	results := p.ParallelPredict(makeItems(200), 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprint(r.Seq), r.Variant.ID)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelPredict_SingleWorker(t *testing.T) {
	p := testPredictor(t, Options{CacheSize: 8})

	results := p.ParallelPredict(makeItems(50), 1)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		assert.Equal(t, count, r.Seq)
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	p := testPredictor(t, Options{})
	results := p.ParallelPredict(makeItems(100), 4)

	boom := errors.New("boom")
	seen := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		seen++
		if r.Seq == 10 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 11, seen)
}

type sliceReader struct {
	vs  []*variant.Variant
	err error
}

func (r *sliceReader) Next() (*variant.Variant, error) {
	if len(r.vs) == 0 {
		return nil, r.err
	}
	v := r.vs[0]
	r.vs = r.vs[1:]
	return v, nil
}

type recordingWriter struct {
	variants []*variant.Variant
	effects  [][]*ChangeEffect
	flushed  bool
}

func (w *recordingWriter) WriteHeader() error { return nil }

func (w *recordingWriter) Write(v *variant.Variant, effs []*ChangeEffect) error {
	w.variants = append(w.variants, v)
	w.effects = append(w.effects, effs)
	return nil
}

func (w *recordingWriter) Flush() error {
	w.flushed = true
	return nil
}

func TestPredictAll(t *testing.T) {
	p := testPredictor(t, Options{})
	multi, err := variant.FromVCF("1", 105, "A", "T,<DEL>", "b")
	require.NoError(t, err)
	r := &sliceReader{vs: []*variant.Variant{
		variant.NewSNP("1", 104, "A", "T", "a"),
		multi, // unsupported second allele: logged and skipped
		variant.NewSNP("1", 50, "A", "T", "c"),
	}}
	w := &recordingWriter{}

	require.NoError(t, p.PredictAll(r, w, 2))
	require.Len(t, w.variants, 2)
	assert.Equal(t, "a", w.variants[0].ID)
	assert.Equal(t, "c", w.variants[1].ID)
	assert.True(t, w.flushed)
}

func TestPredictAll_FatalAborts(t *testing.T) {
	p := testPredictor(t, Options{Strict: true})
	r := &sliceReader{vs: []*variant.Variant{
		variant.NewSNP("1", 104, "A", "T", "a"),
		variant.NewSNP("9", 104, "A", "T", "unknown"),
		variant.NewSNP("1", 50, "A", "T", "c"),
	}}
	w := &recordingWriter{}

	err := p.PredictAll(r, w, 2)
	require.ErrorIs(t, err, genome.ErrChromosomeMissing)
	require.Len(t, w.variants, 1, "variants before the failure are written")
	assert.Equal(t, "a", w.variants[0].ID)
	assert.False(t, w.flushed)
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("query: %w", genome.ErrChromosomeMissing), true},
		{genome.ErrMalformedHierarchy, true},
		{fmt.Errorf("classify: %w", ErrUnimplemented), true},
		{ErrUnmappedEffect, true},
		{variant.ErrUnsupportedAllele, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFatal(tt.err), "%v", tt.err)
		assert.Equal(t, tt.want, WorkResult{Err: tt.err}.Fatal(), "%v", tt.err)
	}
	assert.False(t, WorkResult{}.Fatal())
}

func TestPredictAll_ReadError(t *testing.T) {
	p := testPredictor(t, Options{})
	r := &sliceReader{err: errors.New("bad line")}
	err := p.PredictAll(r, &recordingWriter{}, 1)
	assert.ErrorContains(t, err, "bad line")
}
