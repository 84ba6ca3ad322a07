package main

import (
	"fmt"
	"os"

	cfgpkg "github.com/aouyang1/go-featureselect/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or write the featureselect configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config or ~/.featureselect/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfgpkg.Save(cfgpkg.Default(), cfgFile); err != nil {
			return err
		}
		path := cfgFile
		if path == "" {
			var err error
			if path, err = cfgpkg.DefaultPath(); err != nil {
				return err
			}
		}
		fmt.Printf("wrote default configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
