package main

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/aouyang1/go-featureselect/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "featureselect",
	Short: "Rank OTU features by chi-square, SVM recursive feature elimination and random forest importance",
	Long: `featureselect loads an OTU abundance table and a design file, prunes low variance and
highly correlated OTUs, then ranks the remaining OTUs with three independent selectors.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.featureselect/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads the configuration and applies any flag overrides set on cmd
func loadConfig(cmd *cobra.Command) (*cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("std-percent") {
		cfg.StdPercent = flagStdPercent
	}
	if f.Changed("corr-threshold") {
		cfg.CorrThreshold = flagCorrThreshold
	}
	if f.Changed("percentile") {
		cfg.Percentile = flagPercentile
	}
	if f.Changed("folds") {
		cfg.CrossValFolds = flagFolds
	}
	if f.Changed("trees") {
		cfg.NumForests = flagTrees
	}
	if f.Changed("max-parallelism") {
		cfg.MaxParallelism = flagMaxParallelism
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("match-samples") {
		cfg.MatchSamples = flagMatchSamples
	}
	return cfg, nil
}
