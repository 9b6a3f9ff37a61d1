package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/duckdb"
)

func newQueryCmd() *cobra.Command {
	var (
		dbPath string
		gene   string
		effect string
		runID  string
		runs   bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search effects stored by 'vibe-eff annotate --db'",
		Example: `  vibe-eff query --db effects.duckdb --runs
  vibe-eff query --db effects.duckdb --gene KRAS
  vibe-eff query --db effects.duckdb --effect STOP_GAINED`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runs {
				infos, err := store.Runs()
				if err != nil {
					return err
				}
				return printRuns(out, infos)
			}

			var rows []duckdb.EffectRow
			switch {
			case gene != "":
				rows, err = store.SearchByGene(gene)
			case effect != "":
				t := annotate.EffectType(strings.ToUpper(effect))
				if _, err := annotate.ImpactOf(t); err != nil {
					return err
				}
				rows, err = store.SearchByEffect(t)
			case runID != "":
				rows, err = store.RunEffects(runID)
			default:
				return fmt.Errorf("one of --runs, --gene, --effect or --run is required")
			}
			if err != nil {
				return err
			}
			return printEffectRows(out, rows)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database")
	cmd.Flags().StringVar(&gene, "gene", "", "Effects on this gene")
	cmd.Flags().StringVar(&effect, "effect", "", "Effects of this type, e.g. STOP_GAINED")
	cmd.Flags().StringVar(&runID, "run", "", "Effects of one run")
	cmd.Flags().BoolVar(&runs, "runs", false, "List stored runs")
	return cmd
}

func printRuns(w io.Writer, infos []duckdb.RunInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSOURCE\tSTARTED\tVARIANTS\tEFFECTS")
	for _, ri := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", ri.ID, ri.Source, ri.StartedAt.Format("2006-01-02 15:04:05"), ri.Variants, ri.Effects)
	}
	return tw.Flush()
}

func printEffectRows(w io.Writer, rows []duckdb.EffectRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tREF\tALT\tGENE\tTRANSCRIPT\tEFFECT\tIMPACT\tHGVSc\tHGVSp")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Chrom, r.Start+1, r.Ref, r.Alt, r.GeneName, r.TranscriptID,
			r.EffectTypes, r.Impact, r.HGVSc, r.HGVSp)
	}
	return tw.Flush()
}
