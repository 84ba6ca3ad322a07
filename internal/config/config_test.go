package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 0.01, c.StdPercent)
	assert.Equal(t, 0.8, c.CorrThreshold)
	assert.Equal(t, 10.0, c.Percentile)
	assert.Equal(t, 5, c.CrossValFolds)
	assert.Equal(t, 1000, c.NumForests)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c := Default()
	c.Delimiter = "comma"
	c.CategoryMapping = []Category{
		{Label: "Control", Code: 0},
		{Label: "Treated", Code: 1},
	}
	c.StdPercent = 0.05
	c.NumForests = 250
	c.Seed = 42
	require.Nil(t, Save(c, path))

	loaded, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, c, loaded)
}

func TestSaveDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Nil(t, Save(Default(), ""))
	_, err := os.Stat(filepath.Join(home, ".featureselect", "config.yaml"))
	require.Nil(t, err)

	c, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FEATURESELECT_PERCENTILE", "25")
	t.Setenv("FEATURESELECT_SEED", "7")
	t.Setenv("FEATURESELECT_MIN_IMPURITY_DECREASE", "0.05")

	c, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, 25.0, c.Percentile)
	assert.Equal(t, uint64(7), c.Seed)

	opt, err := c.Options()
	require.Nil(t, err)
	assert.Equal(t, 0.05, opt.ForestOptions.MinImpurityDecrease)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}

func TestOptions(t *testing.T) {
	opt, err := Default().Options()
	require.Nil(t, err)
	assert.Equal(t, dataset.NewDefaultCategoryMapping(), opt.LoadOptions.Mapping)
	assert.Equal(t, []string{"Group", "label", "numOtus"}, opt.LoadOptions.DropColumns)
	assert.Equal(t, rune(0), opt.LoadOptions.Delimiter)
	assert.Equal(t, 0.01, opt.PreprocessOptions.StdPercent)
	assert.Equal(t, 10.0, opt.UnivariateOptions.Percentile)
	assert.Equal(t, 5, opt.RFEOptions.Folds)
	assert.Equal(t, 1000, opt.ForestOptions.Trees)

	testData := map[string]struct {
		update func(*Config)
		err    error
	}{
		"unknown delimiter": {
			update: func(c *Config) { c.Delimiter = "pipe" },
			err:    ErrUnknownDelimiter,
		},
		"empty mapping": {
			update: func(c *Config) { c.CategoryMapping = nil },
			err:    ErrEmptyMapping,
		},
		"duplicate label": {
			update: func(c *Config) {
				c.CategoryMapping = append(c.CategoryMapping, Category{Label: "Before", Code: 5})
			},
			err: ErrDuplicateCategory,
		},
		"std percent out of range": {
			update: func(c *Config) { c.StdPercent = 2 },
			err:    errs.ErrConfiguration,
		},
		"one fold": {
			update: func(c *Config) { c.CrossValFolds = 1 },
			err:    errs.ErrConfiguration,
		},
		"no trees": {
			update: func(c *Config) { c.NumForests = 0 },
			err:    errs.ErrConfiguration,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c := Default()
			td.update(c)
			_, err := c.Options()
			assert.ErrorIs(t, err, td.err)
			assert.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected rune
	}{
		"sniff":     {input: "", expected: 0},
		"tab":       {input: "tab", expected: '\t'},
		"escaped":   {input: `\t`, expected: '\t'},
		"comma":     {input: ",", expected: ','},
		"semicolon": {input: "semicolon", expected: ';'},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			delim, err := ParseDelimiter(td.input)
			require.Nil(t, err)
			assert.Equal(t, td.expected, delim)
		})
	}
}
