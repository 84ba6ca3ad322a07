// Package config loads the pipeline parameters from defaults, a YAML file and FEATURESELECT_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	featureselect "github.com/aouyang1/go-featureselect"
	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/preprocess"
	"github.com/aouyang1/go-featureselect/selection"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "FEATURESELECT"

var (
	ErrUnknownDelimiter  = fmt.Errorf("delimiter must be one of tab, comma or semicolon: %w", errs.ErrConfiguration)
	ErrEmptyMapping      = fmt.Errorf("category mapping has no labels: %w", errs.ErrConfiguration)
	ErrDuplicateCategory = fmt.Errorf("category label mapped more than once: %w", errs.ErrConfiguration)
)

// Category maps one design label onto its class code. The mapping is a list rather than a map
// since viper lower cases map keys.
type Category struct {
	Label string `mapstructure:"label" yaml:"label"`
	Code  int    `mapstructure:"code" yaml:"code"`
}

// Config holds every tunable parameter of a run
type Config struct {
	Delimiter       string     `mapstructure:"delimiter" yaml:"delimiter"`
	DropColumns     []string   `mapstructure:"drop_columns" yaml:"drop_columns"`
	CategoryMapping []Category `mapstructure:"category_mapping" yaml:"category_mapping"`
	MatchSamples    bool       `mapstructure:"match_samples" yaml:"match_samples"`

	StdPercent    float64 `mapstructure:"std_percent" yaml:"std_percent"`
	CorrThreshold float64 `mapstructure:"corr_threshold" yaml:"corr_threshold"`

	Percentile float64 `mapstructure:"percentile" yaml:"percentile"`

	CrossValFolds int     `mapstructure:"cross_val_folds" yaml:"cross_val_folds"`
	RFEStep       int     `mapstructure:"rfe_step" yaml:"rfe_step"`
	SVMC          float64 `mapstructure:"svm_c" yaml:"svm_c"`

	NumForests     int `mapstructure:"numforests" yaml:"numforests"`
	MaxFeatures    int `mapstructure:"max_features" yaml:"max_features"`
	MaxDepth       int `mapstructure:"max_depth" yaml:"max_depth"`
	MinSamplesLeaf int `mapstructure:"min_samples_leaf" yaml:"min_samples_leaf"`

	MinImpurityDecrease float64 `mapstructure:"min_impurity_decrease" yaml:"min_impurity_decrease"`

	MaxParallelism int    `mapstructure:"max_parallelism" yaml:"max_parallelism"`
	Seed           uint64 `mapstructure:"seed" yaml:"seed"`
}

// Default returns the parameters of the reference experiment
func Default() *Config {
	mapping := dataset.NewDefaultCategoryMapping()
	categories := make([]Category, 0, len(mapping))
	for _, label := range mapping.Labels() {
		categories = append(categories, Category{Label: label, Code: mapping[label]})
	}
	return &Config{
		DropColumns:     []string{dataset.ColumnGroup, dataset.ColumnLabel, dataset.ColumnNumOtus},
		CategoryMapping: categories,
		StdPercent:      preprocess.DefaultStdPercent,
		CorrThreshold:   preprocess.DefaultCorrThreshold,
		Percentile:      selection.DefaultPercentile,
		CrossValFolds:   selection.DefaultFolds,
		RFEStep:         selection.DefaultStep,
		SVMC:            1.0,
		NumForests:      selection.DefaultForestTrees,
		MinSamplesLeaf:  1,
	}
}

// DefaultPath returns ~/.featureselect/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".featureselect", "config.yaml"), nil
}

// Load loads configuration from defaults, the config file and env. An explicit cfgFile must
// exist while the default config file is optional.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("delimiter", def.Delimiter)
	v.SetDefault("drop_columns", def.DropColumns)
	v.SetDefault("category_mapping", def.CategoryMapping)
	v.SetDefault("match_samples", def.MatchSamples)
	v.SetDefault("std_percent", def.StdPercent)
	v.SetDefault("corr_threshold", def.CorrThreshold)
	v.SetDefault("percentile", def.Percentile)
	v.SetDefault("cross_val_folds", def.CrossValFolds)
	v.SetDefault("rfe_step", def.RFEStep)
	v.SetDefault("svm_c", def.SVMC)
	v.SetDefault("numforests", def.NumForests)
	v.SetDefault("max_features", def.MaxFeatures)
	v.SetDefault("max_depth", def.MaxDepth)
	v.SetDefault("min_samples_leaf", def.MinSamplesLeaf)
	v.SetDefault("min_impurity_decrease", def.MinImpurityDecrease)
	v.SetDefault("max_parallelism", def.MaxParallelism)
	v.SetDefault("seed", def.Seed)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.featureselect/config.yaml, creating the directory if necessary.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ParseDelimiter converts the delimiter setting into a rune. An empty setting sniffs the
// delimiter from the file.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", "\t", `\t`:
		return '\t', nil
	case "comma", ",":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	}
	return 0, fmt.Errorf("got %q, %w", s, ErrUnknownDelimiter)
}

// Mapping converts the category list into a dataset category mapping
func (c *Config) Mapping() (dataset.CategoryMapping, error) {
	if len(c.CategoryMapping) == 0 {
		return nil, ErrEmptyMapping
	}
	mapping := make(dataset.CategoryMapping, len(c.CategoryMapping))
	for _, cat := range c.CategoryMapping {
		if _, exists := mapping[cat.Label]; exists {
			return nil, fmt.Errorf("label %q, %w", cat.Label, ErrDuplicateCategory)
		}
		mapping[cat.Label] = cat.Code
	}
	return mapping, nil
}

// Options converts the configuration into validated pipeline options
func (c *Config) Options() (*featureselect.Options, error) {
	delim, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return nil, err
	}
	mapping, err := c.Mapping()
	if err != nil {
		return nil, err
	}
	drop := make([]string, len(c.DropColumns))
	copy(drop, c.DropColumns)

	opt := &featureselect.Options{
		LoadOptions: &dataset.LoadOptions{
			Delimiter:    delim,
			DropColumns:  drop,
			Mapping:      mapping,
			MatchSamples: c.MatchSamples,
		},
		PreprocessOptions: &preprocess.Options{
			StdPercent:    c.StdPercent,
			CorrThreshold: c.CorrThreshold,
		},
		UnivariateOptions: &selection.UnivariateOptions{
			Percentile: c.Percentile,
		},
		RFEOptions: &selection.RFEOptions{
			Folds: c.CrossValFolds,
			Step:  c.RFEStep,
			C:     c.SVMC,
		},
		ForestOptions: &selection.ForestOptions{
			Trees:           c.NumForests,
			MaxFeatures:     c.MaxFeatures,
			MaxDepth:        c.MaxDepth,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  c.MinSamplesLeaf,

			MinImpurityDecrease: c.MinImpurityDecrease,
		},
		MaxParallelism: c.MaxParallelism,
		Seed:           c.Seed,
	}
	return opt.Validate()
}
