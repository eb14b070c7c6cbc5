package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/enrich-engine/internal/results"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage stored enrichment runs (runs, retrieve, export)",
	Long: `Results manages the local SQLite store of scored runs. Use subcommands
to list runs, query stored gene-set results, or export them.`,
}

// --- runs subcommand ---

var resultsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, newest first",
	RunE:  runResultsRuns,
}

func runResultsRuns(cmd *cobra.Command, args []string) error {
	store, err := results.NewStore(resultsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-30s  %6s  %6s\n",
		"Run", "Created", "Ranked List", "Scored", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 106))
	for _, r := range runs {
		ranked := r.RankedList
		if len(ranked) > 30 {
			ranked = "..." + ranked[len(ranked)-27:]
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-30s  %6d  %6d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), ranked, r.Scored, r.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var resultsRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query stored results with full-text search and filters",
	Long: `Retrieve searches stored gene-set results. A free-text query matches
term labels with FTS5; structured filters restrict by run, enrichment
sign, and FDR q-value threshold. Without a free-text query, results are
ordered by ascending q-value.`,
	RunE: runResultsRetrieve,
}

func runResultsRetrieve(cmd *cobra.Command, args []string) error {
	store, err := results.NewStore(resultsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := resultsQueryOpts(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a term query, --run, --sign, or --max-q")
	}

	found, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	if len(found) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %8s  %8s  %8s  %5s\n",
		"Rank", "Gene Set", "NES", "p", "FDR q", "Hits")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for i, r := range found {
		name := r.GeneSetID
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %8.4f  %8.4f  %8.4f  %5d\n",
			i+1, name, r.NES, r.PValue, r.FDRQ, r.HitCount)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(found))
	return nil
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to YAML or JSON",
	Long: `Export writes stored results (or a filtered subset) to
results/index/export.yaml or export.json. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runResultsExport,
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := results.NewStore(resultsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := resultsQueryOpts(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to results/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to results/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

// resultsConfig builds the store config: an explicit flag wins,
// otherwise the config-file value, otherwise the flag default.
func resultsConfig(cmd *cobra.Command) types.ResultsConfig {
	cfg := pipelineConfig().Results

	if dir, _ := cmd.Flags().GetString("results-dir"); cmd.Flags().Changed("results-dir") || cfg.ResultsDir == "" {
		cfg.ResultsDir = dir
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}
	if max, _ := cmd.Flags().GetInt("max-results"); cmd.Flags().Changed("max-results") || cfg.MaxResults == 0 {
		cfg.MaxResults = max
	}
	return cfg
}

func resultsQueryOpts(cmd *cobra.Command, args []string) results.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	runID, _ := cmd.Flags().GetString("run")
	sign, _ := cmd.Flags().GetInt("sign")
	limit, _ := cmd.Flags().GetInt("limit")

	maxQ := -1.0
	if cmd.Flags().Changed("max-q") {
		maxQ, _ = cmd.Flags().GetFloat64("max-q")
	}

	return results.QueryOptions{
		Query:      queryText,
		RunID:      runID,
		Sign:       sign,
		MaxQ:       maxQ,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	resultsCmd.PersistentFlags().String("results-dir", "results", "base directory for the results store (contains index/)")
	resultsCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	resultsRetrieveCmd.Flags().String("query", "", "full-text term-label query")
	resultsRetrieveCmd.Flags().String("run", "", "filter by run ID")
	resultsRetrieveCmd.Flags().Int("sign", 0, "filter by enrichment direction: 1 or -1")
	resultsRetrieveCmd.Flags().Float64("max-q", 0, "keep results with FDR q at or below this value")
	resultsRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	resultsRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	resultsExportCmd.Flags().String("query", "", "full-text term-label filter for partial export")
	resultsExportCmd.Flags().String("run", "", "filter by run ID for partial export")
	resultsExportCmd.Flags().Int("sign", 0, "filter by enrichment direction for partial export")
	resultsExportCmd.Flags().Float64("max-q", 0, "FDR q threshold for partial export")
	resultsExportCmd.Flags().Int("limit", 0, "maximum results to export (0 = all)")

	// Wire subcommands.
	resultsCmd.AddCommand(resultsRunsCmd)
	resultsCmd.AddCommand(resultsRetrieveCmd)
	resultsCmd.AddCommand(resultsExportCmd)

	rootCmd.AddCommand(resultsCmd)
}
