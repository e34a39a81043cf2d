// Package main is the entry point for the cowrite CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csheth/cowrite/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cowrite",
	Short: "Draft an article section by section and brainstorm a revision",
	Long: `cowrite is a terminal editor for collaborative writing. Fill in the article
title and its sections, press Ctrl+S, and the completion backend returns a
revised draft that is rendered as markdown next to the form.

Run "cowrite serve" to host the backend, and "cowrite edit" (the default) to
open the editor.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cowrite.yaml or ~/.config/cowrite/cowrite.yaml)")
	addEditFlags(rootCmd)
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig binds the named flags of cmd into viper and resolves the final
// configuration. Flags only override when set explicitly.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (config.Config, error) {
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return config.Config{}, fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return config.Load(viper.GetViper())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
