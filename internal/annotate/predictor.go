package annotate

import (
	"fmt"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// Options configures a Predictor.
type Options struct {
	CodonTables *genome.CodonTables
	Strict      bool // unknown chromosomes are an error
	HGVS        bool
	CacheSize   int // 0 disables the effect cache
}

// Predictor predicts the effects of variants on a genome.
type Predictor struct {
	genome     *genome.Genome
	forest     *genome.Forest
	classifier *Classifier
	cache      *lru.Cache[string, []*ChangeEffect]
	logger     *zap.Logger
}

// NewPredictor indexes g and returns a predictor for it.
func NewPredictor(g *genome.Genome, opts Options) (*Predictor, error) {
	tables := opts.CodonTables
	if tables == nil {
		var err error
		if tables, err = genome.NewCodonTables(1, nil); err != nil {
			return nil, err
		}
	}
	forest, err := genome.BuildForest(g, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("index genome: %w", err)
	}
	p := &Predictor{
		genome:     g,
		forest:     forest,
		classifier: NewClassifier(g, tables, opts.HGVS),
		logger:     zap.NewNop(),
	}
	if opts.CacheSize > 0 {
		if p.cache, err = lru.New[string, []*ChangeEffect](opts.CacheSize); err != nil {
			return nil, fmt.Errorf("create effect cache: %w", err)
		}
	}
	return p, nil
}

// SetLogger sets the logger for warning and info messages.
func (p *Predictor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Genome returns the genome the predictor works on.
func (p *Predictor) Genome() *genome.Genome {
	return p.genome
}

// Predict returns the effects of v. Ambiguous variants are expanded and
// the effects of every option are returned. Cached results are shared
// between callers and must not be modified.
func (p *Predictor) Predict(v *variant.Variant) ([]*ChangeEffect, error) {
	vs, err := v.Expand()
	if err != nil {
		return nil, err
	}
	var out []*ChangeEffect
	for _, o := range vs {
		effs, err := p.predictOne(o)
		if err != nil {
			return nil, err
		}
		out = append(out, effs...)
	}
	return out, nil
}

func cacheKey(v *variant.Variant) string {
	return fmt.Sprintf("%s:%d-%d:%s:%s:%s", v.Chrom, v.Start, v.End, v.Ref, v.Alt, v.ID)
}

func (p *Predictor) predictOne(v *variant.Variant) ([]*ChangeEffect, error) {
	var key string
	if p.cache != nil {
		key = cacheKey(v)
		if effs, ok := p.cache.Get(key); ok {
			return effs, nil
		}
	}

	hits, err := p.forest.Query(v.Interval)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", v.Interval, err)
	}
	if len(hits) == 0 {
		p.logger.Debug("no features at variant", zap.String("variant", v.String()))
	}

	var (
		effs     []*ChangeEffect
		chromHit *genome.Feature
	)
	for _, f := range hits {
		if !dispatched(f.Kind) {
			continue
		}
		if f.Kind == genome.KindChromosome {
			chromHit = f
		}
		fe, err := p.classifier.Classify(v, f)
		if err != nil {
			return nil, fmt.Errorf("classify %s on %s %s: %w", v, f.Kind, f.ID, err)
		}
		effs = append(effs, fe...)
	}
	if len(effs) == 0 && chromHit != nil && onlyChromosome(hits) {
		e := newEffect(v, chromHit, nil, EffectIntergenic)
		if err := e.setImpact(); err != nil {
			return nil, err
		}
		effs = append(effs, e)
	}

	if p.cache != nil {
		p.cache.Add(key, effs)
	}
	return effs, nil
}

// dispatched reports kinds classified directly. Exons, introns, UTRs, CDS
// segments and branch sites are reached through their transcript.
func dispatched(k genome.Kind) bool {
	switch k {
	case genome.KindExon, genome.KindIntron, genome.KindUTR5, genome.KindUTR3,
		genome.KindCDS, genome.KindSpliceBranch:
		return false
	}
	return true
}

func onlyChromosome(hits []*genome.Feature) bool {
	for _, f := range hits {
		if f.Kind != genome.KindChromosome {
			return false
		}
	}
	return true
}

// VariantReader is a source of variants, such as a VCF parser.
type VariantReader interface {
	Next() (*variant.Variant, error)
}

// EffectWriter receives the effects of each variant in input order.
type EffectWriter interface {
	WriteHeader() error
	Write(v *variant.Variant, effs []*ChangeEffect) error
	Flush() error
}

// PredictAll predicts every variant from reader and writes the effects in
// input order. A variant that fails with a non-fatal error is logged and
// skipped; a fatal error (see IsFatal) stops reading and is returned.
func (p *Predictor) PredictAll(reader VariantReader, writer EffectWriter, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make(chan WorkItem, 2*workers)
	stop := make(chan struct{})
	var parseErr error
	variantCount := 0

	go func() {
		defer close(items)
		for seq := 0; ; seq++ {
			v, err := reader.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Variant: v}:
				variantCount++
			case <-stop:
				return
			}
		}
	}()

	results := p.ParallelPredict(items, workers)

	failed := 0
	if err := OrderedCollect(results, func(r WorkResult) error {
		switch {
		case r.Fatal():
			close(stop)
			return fmt.Errorf("predict %s: %w", r.Variant, r.Err)
		case r.Err != nil:
			failed++
			p.logger.Warn("failed to predict variant",
				zap.String("chrom", r.Variant.Chrom),
				zap.Int("start", r.Variant.Start),
				zap.Error(r.Err))
			return nil
		}
		if err := writer.Write(r.Variant, r.Effects); err != nil {
			close(stop)
			return fmt.Errorf("write effects: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}

	p.logger.Info("prediction complete",
		zap.Int("variants", variantCount),
		zap.Int("failed", failed))

	return writer.Flush()
}
