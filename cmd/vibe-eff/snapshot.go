package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/duckdb"
)

func newSnapshotCmd() *cobra.Command {
	var (
		src        genomeSources
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build the genome once and save it for fast loading",
		Long: `Build the feature genome from a GTF (and FASTA) and write it as a gob
snapshot. Pass the snapshot to 'vibe-eff annotate --snapshot' to skip parsing.`,
		Example: `  vibe-eff snapshot --gtf genes.gtf.gz --fasta genome.fa.gz -o grch38.gob
  vibe-eff snapshot --chrom 12 -o chr12.gob`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := src.resolve(cfg.Genome.Name); err != nil {
				return err
			}
			src.cacheDir = ""
			g, err := buildGenome(cfg, logger, src)
			if err != nil {
				return err
			}
			if err := duckdb.WriteSnapshot(outputPath, g); err != nil {
				return err
			}
			logger.Info("wrote snapshot", zap.String("path", outputPath), zap.Int("features", g.Len()))
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Snapshot file to write")
	return cmd
}
