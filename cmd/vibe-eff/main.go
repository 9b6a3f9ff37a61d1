// Package main provides the vibe-eff command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "vibe-eff",
		Short: "vibe-eff - Variant Effect Predictor",
		Long: `Predict the effects of genomic variants on genes, transcripts and proteins.

Gene models come from a GENCODE GTF and the genome FASTA; effects are
written as tab-delimited rows and optionally stored in DuckDB.`,
		Example: `  # Download GENCODE annotations (one-time setup)
  vibe-eff download

  # Annotate a VCF file (uses the downloaded files automatically)
  vibe-eff annotate input.vcf

  # Annotate with explicit files and store results
  vibe-eff annotate --gtf genes.gtf.gz --fasta genome.fa.gz --db effects.duckdb input.vcf`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(viper.GetViper(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/"+config.FileName+")")

	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-eff version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// loadConfig decodes the global viper settings and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
