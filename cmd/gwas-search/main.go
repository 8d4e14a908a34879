// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gwas-search CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the gwas-search CLI.
var rootCmd = &cobra.Command{
	Use:   "gwas-search",
	Short: "Search the GWAS catalog by trait and gene from the command line",
	Long: `gwas-search answers "which studies associate this trait with these genes?"
without leaving the terminal. It downloads the public GWAS catalog association
file once, caches it locally, and filters the cached copy by trait name
substring and reported gene symbols.

The trait subcommand runs a search; update refreshes the local catalog copy
ahead of time. Searches reuse a cached catalog younger than the freshness
window, so repeated queries cost no network traffic.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gwas-search.yaml or ~/.config/gwas-search/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "cache directory for catalog data (default: <user-cache-dir>/gwas-search)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	rootCmd.PersistentFlags().Duration("max-age", 0, "how long the cached catalog counts as fresh (default 24h)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gwas-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gwas-search"))
		}
	}

	viper.SetEnvPrefix("GWAS_SEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
