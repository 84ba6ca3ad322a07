package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	featureselect "github.com/aouyang1/go-featureselect"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var (
	runShared     string
	runDesign     string
	runPlotPath   string
	runJSONPath   string
	runCPUProfile string

	flagStdPercent     float64
	flagCorrThreshold  float64
	flagPercentile     float64
	flagFolds          int
	flagTrees          int
	flagMaxParallelism int
	flagSeed           uint64
	flagDelimiter      string
	flagMatchSamples   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run preprocessing and every feature selector, printing the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runCPUProfile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(runCPUProfile), profile.NoShutdownHook).Stop()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opt, err := cfg.Options()
		if err != nil {
			return err
		}

		res, err := featureselect.Run(runShared, runDesign, opt)
		if err != nil {
			return err
		}
		if err := res.TablePrint(os.Stdout); err != nil {
			return fmt.Errorf("unable to print report, %w", err)
		}

		if runJSONPath != "" {
			if err := writeFile(runJSONPath, res.WriteJSON); err != nil {
				return fmt.Errorf("unable to write json report, %w", err)
			}
			slog.Info("wrote json report", "path", runJSONPath)
		}
		if runPlotPath != "" {
			if res.RFE == nil {
				slog.Warn("no recursive feature elimination curve to plot")
				return nil
			}
			if err := writeFile(runPlotPath, res.PlotRFECurve); err != nil {
				return fmt.Errorf("unable to write plot, %w", err)
			}
			slog.Info("wrote recursive feature elimination plot", "path", runPlotPath)
		}
		return nil
	},
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runShared, "shared", "", "path to the OTU abundance table")
	f.StringVar(&runDesign, "design", "", "path to the sample design table")
	f.StringVar(&runPlotPath, "plot", "", "write an html chart of the cross validated accuracy per feature count")
	f.StringVar(&runJSONPath, "json", "", "write the report as json")
	f.StringVar(&runCPUProfile, "cpuprofile", "", "write a cpu profile into this directory")

	f.Float64Var(&flagStdPercent, "std-percent", 0, "keep features with std above this fraction of the max std (overrides config)")
	f.Float64Var(&flagCorrThreshold, "corr-threshold", 0, "drop the later feature of pairs correlated above this (overrides config)")
	f.Float64Var(&flagPercentile, "percentile", 0, "percent of features kept by chi-square score (overrides config)")
	f.IntVar(&flagFolds, "folds", 0, "cross validation folds for recursive feature elimination (overrides config)")
	f.IntVar(&flagTrees, "trees", 0, "number of random forest trees (overrides config)")
	f.IntVar(&flagMaxParallelism, "max-parallelism", 0, "concurrent folds and trees, 0 uses every core (overrides config)")
	f.Uint64Var(&flagSeed, "seed", 0, "random seed, 0 draws one (overrides config)")
	f.StringVar(&flagDelimiter, "delimiter", "", "field delimiter: tab, comma or semicolon (overrides config)")
	f.BoolVar(&flagMatchSamples, "match-samples", false, "align design labels by sample id instead of row (overrides config)")

	_ = runCmd.MarkFlagRequired("shared")
	_ = runCmd.MarkFlagRequired("design")

	rootCmd.AddCommand(runCmd)
}
