package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gwas-search/internal/catalog"
	"github.com/pdiddy/gwas-search/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultUserAgent  = "gwas-search/0.1"
	defaultMaxRetries = 3
)

// catalogConfig resolves catalog settings from, in order of precedence:
// command-line flags, the viper config file / environment, and built-in
// defaults.
func catalogConfig(cmd *cobra.Command) (types.CatalogConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	maxAge, _ := cmd.Flags().GetDuration("max-age")
	if maxAge == 0 {
		maxAge = viper.GetDuration("max_age")
	}
	if maxAge == 0 {
		maxAge = catalog.DefaultMaxAge
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("data_dir")
	}
	if dataDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return types.CatalogConfig{}, fmt.Errorf("resolving cache directory: %w (set --data-dir)", err)
		}
		dataDir = filepath.Join(cacheDir, "gwas-search")
	}

	url := viper.GetString("catalog_url")
	if url == "" {
		url = catalog.DefaultURL
	}

	maxRetries := viper.GetInt("max_retries")
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		URL:        url,
		DataDir:    dataDir,
		MaxAge:     maxAge,
		MaxRetries: maxRetries,
	}, nil
}
