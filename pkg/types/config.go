package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gwas-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for catalog acquisition and caching.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the bulk download endpoint for the catalog association TSV.
	// Empty means the default EBI endpoint.
	URL string `json:"catalog_url" yaml:"catalog_url"`

	// DataDir is the cache directory (contains catalog.tsv and catalog.yaml).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxAge is how long a cached catalog counts as fresh (default 24h).
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`

	// MaxRetries is the retry budget for rate-limited downloads.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}
