// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the enrich-engine CLI: the
// statistical scoring stage of the knowledge-graph explanation
// pipeline. Upstream collaborators supply ranked gene lists and gene
// sets; downstream collaborators consume the scored, normalized
// results.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the enrich-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "enrich-engine",
	Short: "Gene-set enrichment scoring for knowledge-graph explanations",
	Long: `enrich-engine scores ranked gene lists against gene-set collections with a
permutation-based enrichment statistic (ES, NES, p-value, FDR q-value).

Gene sets come from the knowledge-graph collaborator (compact KG JSON) or
from GMT files; results feed the retrieval and explanation layers. Each
stage is a subcommand: generate builds a pre-ranked input list, score runs
a batch, and results manages the stored runs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./enrich-engine.yaml or ~/.config/enrich-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("enrich-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "enrich-engine"))
		}
	}

	viper.SetEnvPrefix("ENRICH_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configs from the loaded config
// file. Command flags override individual values at each call site.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Score: types.ScoreConfig{
			WeightExponent:     viper.GetFloat64("score.weight_exponent"),
			Permutations:       viper.GetInt("score.permutations"),
			Seed:               viper.GetInt64("score.seed"),
			GeneSetWorkers:     viper.GetInt("score.gene_set_workers"),
			PermutationWorkers: viper.GetInt("score.permutation_workers"),
		},
		Results: types.ResultsConfig{
			ResultsDir: viper.GetString("results.results_dir"),
			MaxResults: viper.GetInt("results.max_results"),
		},
		Generate: types.GenerateConfig{
			SourceURL:         viper.GetString("generate.source_url"),
			ProteinCodingOnly: viper.GetBool("generate.protein_coding_only"),
			Seed:              viper.GetInt64("generate.seed"),
			OutputPath:        viper.GetString("generate.output_path"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
