package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/config"
	"github.com/inodb/vibe-eff/internal/duckdb"
	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/maf"
	"github.com/inodb/vibe-eff/internal/output"
	"github.com/inodb/vibe-eff/internal/vcf"
)

// genomeSources names where a genome comes from. A snapshot wins over the
// GTF and FASTA.
type genomeSources struct {
	gtf      string
	fasta    string
	snapshot string
	chrom    string
	cacheDir string // gob cache for GTF builds, empty to disable
}

func (s *genomeSources) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.gtf, "gtf", "", "GENCODE/Ensembl GTF file (default: downloaded GENCODE files)")
	cmd.Flags().StringVar(&s.fasta, "fasta", "", "Genome FASTA file supplying exon sequences")
	cmd.Flags().StringVar(&s.chrom, "chrom", "", "Only load genes on this chromosome")
}

// resolve fills in the downloaded GENCODE files when no GTF is given.
func (s *genomeSources) resolve(assembly string) error {
	if s.snapshot != "" || s.gtf != "" {
		return nil
	}
	gtf, fasta, found := FindGENCODEFiles(assembly)
	if !found {
		return fmt.Errorf("no GENCODE files found for %s; run: vibe-eff download --assembly %s, or pass --gtf", assembly, assembly)
	}
	s.gtf = gtf
	if s.fasta == "" {
		s.fasta = fasta
	}
	if s.chrom == "" {
		s.cacheDir = DefaultGENCODEPath(assembly)
	}
	return nil
}

// loadGenome builds or restores the genome.
func loadGenome(cfg *config.Config, logger *zap.Logger, src genomeSources) (*genome.Genome, error) {
	if src.snapshot != "" {
		g, err := duckdb.ReadSnapshot(src.snapshot)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded genome snapshot",
			zap.String("path", src.snapshot),
			zap.Int("features", g.Len()),
			zap.Int("transcripts", g.TranscriptCount()))
		return g, nil
	}

	var (
		gc  *duckdb.GenomeCache
		fps []duckdb.FileFingerprint
	)
	if src.cacheDir != "" {
		gc = duckdb.NewGenomeCache(src.cacheDir)
		var err error
		if fps, err = duckdb.StatFiles(src.gtf, src.fasta); err != nil {
			return nil, err
		}
		if gc.Valid(fps...) {
			g, err := gc.Load()
			if err == nil {
				logger.Info("loaded cached genome",
					zap.String("path", gc.Path()),
					zap.Int("transcripts", g.TranscriptCount()))
				return g, nil
			}
			logger.Warn("genome cache unreadable, rebuilding", zap.Error(err))
		}
	}

	g, err := buildGenome(cfg, logger, src)
	if err != nil {
		return nil, err
	}

	if gc != nil {
		if err := gc.Write(g, fps...); err != nil {
			logger.Warn("could not write genome cache", zap.Error(err))
		}
	}
	return g, nil
}

func buildGenome(cfg *config.Config, logger *zap.Logger, src genomeSources) (*genome.Genome, error) {
	b := genome.NewBuilder(cfg.BuildOptions())

	if src.fasta != "" {
		fl := genome.NewFASTALoader(src.fasta)
		if err := fl.Load(); err != nil {
			return nil, err
		}
		fl.AddChromosomes(b)
		b.SetSequenceSource(fl)
		logger.Info("loaded FASTA", zap.String("path", src.fasta), zap.Int("sequences", fl.SequenceCount()))
	}

	gl := genome.NewGTFLoader(src.gtf)
	var err error
	if src.chrom != "" {
		err = gl.LoadChromosome(b, src.chrom)
	} else {
		err = gl.Load(b)
	}
	if err != nil {
		return nil, err
	}
	if n := gl.Skipped(); n > 0 {
		logger.Warn("skipped malformed GTF lines", zap.Int("lines", n))
	}

	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build genome: %w", err)
	}
	logger.Info("built genome",
		zap.String("gtf", src.gtf),
		zap.Strings("chromosomes", g.Chromosomes()),
		zap.Int("transcripts", g.TranscriptCount()),
		zap.Int("features", g.Len()))
	return g, nil
}

func openVariantSource(format, path string) (vcf.VariantParser, error) {
	switch format {
	case "vcf":
		return vcf.NewParser(path)
	case "maf":
		return maf.NewParser(path)
	default:
		return nil, fmt.Errorf("unknown input format %q (use --input-format vcf or maf)", format)
	}
}

// detectInputFormat detects the input file format based on extension or content.
func detectInputFormat(path string) string {
	lowerPath := strings.TrimSuffix(strings.ToLower(path), ".gz")

	if strings.HasSuffix(lowerPath, ".vcf") {
		return "vcf"
	}
	if strings.HasSuffix(lowerPath, ".maf") {
		return "maf"
	}

	// cBioPortal MAF filenames
	baseName := filepath.Base(lowerPath)
	if baseName == "data_mutations.txt" || baseName == "data_mutations_extended.txt" {
		return "maf"
	}

	if path == "-" {
		return "vcf"
	}

	file, err := os.Open(path)
	if err != nil {
		return "vcf"
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil || n == 0 {
		return "vcf"
	}
	content := string(buf[:n])

	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return "vcf"
	}
	if strings.Contains(content, "Hugo_Symbol") && strings.Contains(content, "Chromosome") {
		return "maf"
	}
	return "vcf"
}

func newAnnotateCmd() *cobra.Command {
	var (
		src         genomeSources
		outputFile  string
		inputFormat string
		dbPath      string
		workers     int
		strict      bool
		noHGVS      bool
	)

	cmd := &cobra.Command{
		Use:   "annotate [flags] <input.vcf|input.maf>",
		Short: "Predict variant effects for a VCF or MAF file",
		Long: `Predict the effects of every variant in a VCF or MAF file (use '-' for
stdin).

One tab-delimited row is written per effect. With --db the effects are
also stored in a DuckDB database under a new run ID.`,
		Example: `  vibe-eff annotate input.vcf
  vibe-eff annotate --gtf genes.gtf.gz --fasta genome.fa.gz -o effects.tsv input.vcf.gz
  vibe-eff annotate --snapshot grch38.gob --db effects.duckdb input.vcf
  vibe-eff annotate data_mutations.txt
  cat input.vcf | vibe-eff annotate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := src.resolve(cfg.Genome.Name); err != nil {
				return err
			}
			g, err := loadGenome(cfg, logger, src)
			if err != nil {
				return err
			}

			opts, err := cfg.PredictorOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				opts.Strict = strict
			}
			if noHGVS {
				opts.HGVS = false
			}
			p, err := annotate.NewPredictor(g, opts)
			if err != nil {
				return err
			}
			p.SetLogger(logger)

			format := inputFormat
			if format == "" {
				format = detectInputFormat(args[0])
			}
			parser, err := openVariantSource(format, args[0])
			if err != nil {
				return err
			}
			defer parser.Close()
			parser.SetLogger(logger)

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			writers := []annotate.EffectWriter{output.NewTabWriter(out)}
			if dbPath != "" {
				store, err := duckdb.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				run := store.NewRun(args[0])
				logger.Info("storing effects", zap.String("db", dbPath), zap.String("run_id", run.ID()))
				writers = append(writers, run)
			}
			writer := output.NewMultiWriter(writers...)

			if err := writer.WriteHeader(); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			if workers == 0 {
				workers = cfg.Annotate.Workers
			}
			if err := p.PredictAll(parser, writer, workers); err != nil {
				return err
			}
			if n := parser.Skipped(); n > 0 {
				logger.Info("skipped unsupported alleles", zap.Int("alleles", n))
			}
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVar(&src.snapshot, "snapshot", "", "Genome snapshot written by 'vibe-eff snapshot'")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: vcf, maf (auto-detected if not specified)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database to store effects in")
	cmd.Flags().IntVar(&workers, "workers", 0, "Prediction workers (default: annotate.workers, 0 = all CPUs)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail variants on chromosomes missing from the genome")
	cmd.Flags().BoolVar(&noHGVS, "no-hgvs", false, "Skip HGVS nomenclature")

	return cmd
}
