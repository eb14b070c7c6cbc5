package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/enrich-engine/internal/hgnc"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pre-ranked gene list from the HGNC complete set",
	Long: `Generate downloads the HGNC complete gene set, keeps Approved symbols
(optionally protein-coding only), assigns seeded random N(0,1) scores,
and writes a two-column pre-ranked file (GENE<TAB>SCORE) usable as the
score command's --ranked-list input.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	pcOnly, _ := cmd.Flags().GetBool("protein-coding-only")
	seed, _ := cmd.Flags().GetInt64("seed")
	sourceURL, _ := cmd.Flags().GetString("source-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	fileCfg := pipelineConfig().Generate
	if sourceURL == "" {
		sourceURL = fileCfg.SourceURL
	}
	if !cmd.Flags().Changed("seed") && viper.IsSet("generate.seed") {
		seed = fileCfg.Seed
	}
	if !cmd.Flags().Changed("protein-coding-only") && viper.IsSet("generate.protein_coding_only") {
		pcOnly = fileCfg.ProteinCodingOnly
	}
	if !cmd.Flags().Changed("out") && fileCfg.OutputPath != "" {
		out = fileCfg.OutputPath
	}

	cfg := types.GenerateConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "enrich-engine/" + version,
		},
		SourceURL:         sourceURL,
		ProteinCodingOnly: pcOnly,
		Seed:              seed,
		OutputPath:        out,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: cfg.Timeout}
	return hgnc.Generate(ctx, client, cfg, os.Stderr)
}

func init() {
	generateCmd.Flags().String("out", "human_genes_preranked.txt", "output pre-ranked file")
	generateCmd.Flags().Bool("protein-coding-only", false, "keep protein-coding genes only")
	generateCmd.Flags().Int64("seed", 42, "seed for random score assignment")
	generateCmd.Flags().String("source-url", "", "HGNC complete-set TSV URL (default: official location)")
	generateCmd.Flags().Duration("timeout", 2*time.Minute, "HTTP request timeout")

	rootCmd.AddCommand(generateCmd)
}
