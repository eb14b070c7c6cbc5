package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/enrich-engine/internal/enrich"
	"github.com/pdiddy/enrich-engine/internal/geneset"
	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/internal/results"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a ranked gene list against a gene-set collection",
	Long: `Score loads a pre-ranked gene list (GENE<TAB>SCORE) and a gene-set
collection (compact KG JSON, or GMT with --gmt), computes the enrichment
statistic per gene set with a seeded permutation null, and reports
ES, NES, p-value, and batch-wide FDR q-value per set.

Gene sets that cannot be scored (no overlap with the ranked list, full
overlap, degenerate weights) are reported as warnings and excluded from
the FDR pool without blocking the rest of the batch.`,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	rankedPath, _ := cmd.Flags().GetString("ranked-list")
	setsPath, _ := cmd.Flags().GetString("gene-sets")
	useGMT, _ := cmd.Flags().GetBool("gmt")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("store")

	cfg := scoreConfigFromFlags(cmd)
	params, err := enrich.NewParams(cfg)
	if err != nil {
		return err
	}

	list, err := ranking.LoadPreRanked(rankedPath)
	if err != nil {
		return err
	}

	var sets []types.GeneSet
	if useGMT || strings.HasSuffix(strings.ToLower(setsPath), ".gmt") {
		sets, err = geneset.LoadGMT(setsPath)
	} else {
		sets, err = geneset.LoadKG(setsPath, os.Stderr)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "scoring %d gene set(s) against %d ranked genes (B=%d, p=%g, seed=%d)\n",
		len(sets), list.Len(), params.Permutations, params.WeightExponent, params.Seed)

	out, err := enrich.Score(ctx, list, sets, params, os.Stderr)
	if err != nil {
		return err
	}

	if save {
		runID, err := saveRun(ctx, cmd, rankedPath, setsPath, params, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "stored run %s\n", runID)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out.Reports); err != nil {
			return err
		}
	} else {
		formatScoreTable(out, os.Stdout)
	}

	if out.HasFailures() {
		return fmt.Errorf("%d gene set(s) failed scoring", len(out.Failures))
	}
	return nil
}

// scoreConfigFromFlags builds the stage config: an explicit flag wins,
// otherwise a config-file value, otherwise the flag default.
func scoreConfigFromFlags(cmd *cobra.Command) types.ScoreConfig {
	cfg := pipelineConfig().Score
	flags := cmd.Flags()

	if flags.Changed("weight-exponent") || !viper.IsSet("score.weight_exponent") {
		cfg.WeightExponent, _ = flags.GetFloat64("weight-exponent")
	}
	if flags.Changed("permutations") || !viper.IsSet("score.permutations") {
		cfg.Permutations, _ = flags.GetInt("permutations")
	}
	if flags.Changed("seed") || !viper.IsSet("score.seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("gene-set-workers") || !viper.IsSet("score.gene_set_workers") {
		cfg.GeneSetWorkers, _ = flags.GetInt("gene-set-workers")
	}
	if flags.Changed("permutation-workers") || !viper.IsSet("score.permutation_workers") {
		cfg.PermutationWorkers, _ = flags.GetInt("permutation-workers")
	}
	return cfg
}

func saveRun(ctx context.Context, cmd *cobra.Command, rankedPath, setsPath string, params enrich.Params, out enrich.Output) (string, error) {
	store, err := results.NewStore(resultsConfig(cmd))
	if err != nil {
		return "", err
	}
	defer store.Close()

	meta := results.RunMeta{
		RankedList:     rankedPath,
		GeneSetsSource: setsPath,
		Permutations:   params.Permutations,
		WeightExponent: params.WeightExponent,
		Seed:           params.Seed,
		Failed:         len(out.Failures),
	}
	return store.SaveRun(ctx, meta, out.Reports)
}

func formatScoreTable(out enrich.Output, w io.Writer) {
	if len(out.Reports) == 0 {
		fmt.Fprintln(w, "No gene sets scored.")
		return
	}

	sorted := make([]types.GeneSetReport, len(out.Reports))
	copy(sorted, out.Reports)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FDRQ != sorted[j].FDRQ {
			return sorted[i].FDRQ < sorted[j].FDRQ
		}
		return math.Abs(sorted[i].NES) > math.Abs(sorted[j].NES)
	})

	fmt.Fprintf(w, "%-4s  %-40s  %3s  %8s  %8s  %8s  %8s  %5s  %5s\n",
		"Rank", "Gene Set", "Dir", "ES", "NES", "p", "FDR q", "Hits", "Peak")
	fmt.Fprintln(w, strings.Repeat("-", 101))

	for i, r := range sorted {
		name := r.GeneSetID
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		dir := "+"
		if r.Sign() < 0 {
			dir = "-"
		}
		fmt.Fprintf(w, "%-4d  %-40s  %3s  %8.4f  %8.4f  %8.4f  %8.4f  %5d  %5d\n",
			i+1, name, dir, r.ES, r.NES, r.PValue, r.FDRQ, r.HitCount, r.PeakRank)
	}

	fmt.Fprintf(w, "\n%d gene set(s) scored, %d failed\n", len(out.Reports), len(out.Failures))
}

func init() {
	scoreCmd.Flags().String("ranked-list", "", "pre-ranked gene list file (GENE<TAB>SCORE)")
	scoreCmd.Flags().String("gene-sets", "", "gene-set collection: compact KG JSON or GMT file")
	scoreCmd.Flags().Bool("gmt", false, "force GMT parsing regardless of file extension")
	scoreCmd.Flags().Float64("weight-exponent", enrich.DefaultWeightExponent, "exponent p applied to |score| at hit positions")
	scoreCmd.Flags().Int("permutations", enrich.DefaultPermutations, "null-distribution draws per gene set")
	scoreCmd.Flags().Int64("seed", 42, "base random seed")
	scoreCmd.Flags().Int("gene-set-workers", 0, "concurrent gene sets (0 = auto)")
	scoreCmd.Flags().Int("permutation-workers", 0, "permutation pool size per gene set (0 = NumCPU)")
	scoreCmd.Flags().Bool("json", false, "output reports as JSON")
	scoreCmd.Flags().Bool("store", false, "persist the run to the results store")
	scoreCmd.Flags().String("results-dir", "results", "base directory for the results store")

	scoreCmd.MarkFlagRequired("ranked-list")
	scoreCmd.MarkFlagRequired("gene-sets")

	rootCmd.AddCommand(scoreCmd)
}
