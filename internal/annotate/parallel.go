package annotate

import (
	"errors"
	"runtime"
	"sync"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// fatalErrors abort a batch run. Any other per-variant failure only skips
// the variant.
var fatalErrors = []error{
	genome.ErrChromosomeMissing,
	genome.ErrMalformedHierarchy,
	ErrUnimplemented,
	ErrUnmappedEffect,
}

// IsFatal reports whether err must stop a batch run.
func IsFatal(err error) bool {
	for _, target := range fatalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WorkItem is one variant queued for prediction, numbered in input order.
type WorkItem struct {
	Seq     int
	Variant *variant.Variant
}

// WorkResult is the outcome of predicting one WorkItem.
type WorkResult struct {
	Seq     int
	Variant *variant.Variant
	Effects []*ChangeEffect
	Err     error
}

// Fatal reports whether the result carries an error that aborts the run.
func (r WorkResult) Fatal() bool {
	return r.Err != nil && IsFatal(r.Err)
}

// ParallelPredict runs workers goroutines over items and sends each result
// as soon as it is ready, so results arrive out of order. OrderedCollect
// restores input order. workers <= 0 means one per CPU.
func (p *Predictor) ParallelPredict(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.predictWorker(items, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func (p *Predictor) predictWorker(items <-chan WorkItem, results chan<- WorkResult) {
	for item := range items {
		r := WorkResult{Seq: item.Seq, Variant: item.Variant}
		r.Effects, r.Err = p.Predict(item.Variant)
		results <- r
	}
}

// OrderedCollect calls fn once per result in Seq order, holding back
// results that arrive early. When fn fails the remaining results are
// drained so the workers can exit, and fn's error is returned.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0
	for r := range results {
		held[r.Seq] = r
		for ready, ok := held[next]; ok; ready, ok = held[next] {
			delete(held, next)
			next++
			if err := fn(ready); err != nil {
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
