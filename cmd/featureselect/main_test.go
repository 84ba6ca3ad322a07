package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/aouyang1/go-featureselect/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args, clearing the run flags left over from earlier calls
func execute(t *testing.T, args ...string) error {
	t.Helper()
	runCmd.Flags().VisitAll(func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	})
	cfgFile = ""
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	var shared, design strings.Builder
	shared.WriteString("label\tGroup\tnumOtus\tOtu001\tOtu002\tOtu003\n")
	for i := 0; i < 12; i++ {
		class := i % 2
		fmt.Fprintf(&shared, "0.03\tS%d\t3\t%d\t%d\t%d\n", i+1, 10+20*class+i%3, (i*7)%11, (i*5)%13)
		fmt.Fprintf(&design, "S%d\t%s\n", i+1, []string{"Before", "After2"}[class])
	}
	sharedPath := filepath.Join(dir, "otu.shared")
	designPath := filepath.Join(dir, "otu.design")
	require.Nil(t, os.WriteFile(sharedPath, []byte(shared.String()), 0o644))
	require.Nil(t, os.WriteFile(designPath, []byte(design.String()), 0o644))
	return sharedPath, designPath
}

func TestCLIRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	sharedPath, designPath := writeInputs(t, dir)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.Nil(t, execute(t, "config", "init", "--config", cfgPath))
	_, err := cfgpkg.Load(cfgPath)
	require.Nil(t, err)

	jsonPath := filepath.Join(dir, "report.json")
	plotPath := filepath.Join(dir, "rfe.html")
	require.Nil(t, execute(t, "run",
		"--config", cfgPath,
		"--shared", sharedPath,
		"--design", designPath,
		"--folds", "3",
		"--trees", "20",
		"--seed", "3",
		"--json", jsonPath,
		"--plot", plotPath,
	))

	report, err := os.ReadFile(jsonPath)
	require.Nil(t, err)
	assert.Contains(t, string(report), `"seed": 3`)
	assert.Contains(t, string(report), `"numforests": 20`)

	plot, err := os.ReadFile(plotPath)
	require.Nil(t, err)
	assert.Contains(t, string(plot), "Recursive feature elimination")
}

func TestCLIRunErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	sharedPath, designPath := writeInputs(t, dir)

	testData := map[string][]string{
		"missing design":  {"run", "--shared", sharedPath},
		"bad percentile":  {"run", "--shared", sharedPath, "--design", designPath, "--percentile", "150"},
		"bad delimiter":   {"run", "--shared", sharedPath, "--design", designPath, "--delimiter", "pipe"},
		"missing file":    {"run", "--shared", filepath.Join(dir, "missing"), "--design", designPath},
		"folds too large": {"run", "--shared", sharedPath, "--design", designPath, "--folds", "7", "--trees", "5"},
		"missing config":  {"run", "--config", filepath.Join(dir, "missing.yaml"), "--shared", sharedPath, "--design", designPath},
	}

	for name, args := range testData {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, execute(t, args...))
		})
	}
}
