// Package catalog downloads, caches, and parses the GWAS catalog
// association file.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/gwas-search/internal/httputil"
	"github.com/pdiddy/gwas-search/pkg/types"
)

// DefaultURL is the bulk download endpoint for the current catalog release
// (the "alternative" layout, one association per row).
const DefaultURL = "https://www.ebi.ac.uk/gwas/api/search/downloads/alternative"

// DefaultMaxAge is how long a cached catalog counts as fresh.
const DefaultMaxAge = 24 * time.Hour

// Fetch stage failures, matchable with errors.Is.
var (
	// ErrNetwork marks transport failures and non-200 responses from the
	// catalog service.
	ErrNetwork = errors.New("network failure")

	// ErrTimeout marks downloads that exceeded the configured HTTP timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrCacheCorrupt marks an unreadable cache file when the cache is the
	// only available source.
	ErrCacheCorrupt = errors.New("cache corrupt")
)

// FetchResult holds the raw catalog bytes and their provenance.
type FetchResult struct {
	// Data is the raw TSV content of the catalog.
	Data []byte

	// FetchedAt is when the data was downloaded. Zero when unknown (a cache
	// file present without its metadata sidecar).
	FetchedAt time.Time

	// Stale reports that Data came from an expired cache after a failed or
	// skipped download.
	Stale bool
}

const timeFmt = "2006-01-02 15:04"

// Fetch returns the catalog, preferring a fresh cache over the network.
// A cached copy younger than cfg.MaxAge is returned without any HTTP
// traffic. Otherwise the catalog is downloaded and the cache replaced; if
// the download fails and a cached copy of any age exists, that copy is
// served with Stale set and a warning written to w.
func Fetch(client *http.Client, cfg types.CatalogConfig, w io.Writer) (*FetchResult, error) {
	if CacheFresh(cfg) {
		data, dataErr := readData(cfg.DataDir)
		meta, metaErr := readMeta(cfg.DataDir)
		if dataErr == nil && metaErr == nil {
			fmt.Fprintf(w, "using cached catalog (fetched %s)\n", meta.FetchedAt.Format(timeFmt))
			return &FetchResult{Data: data, FetchedAt: meta.FetchedAt}, nil
		}
		// Cache unreadable despite a fresh sidecar: re-download.
	}

	res, err := Refresh(client, cfg, w)
	if err == nil {
		return res, nil
	}

	// Download failed; fall back to whatever cache exists.
	data, readErr := readData(cfg.DataDir)
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("reading cached catalog: %w: %v", ErrCacheCorrupt, readErr)
	}

	var fetchedAt time.Time
	age := "age unknown"
	if meta, metaErr := readMeta(cfg.DataDir); metaErr == nil {
		fetchedAt = meta.FetchedAt
		age = "fetched " + meta.FetchedAt.Format(timeFmt)
	}
	fmt.Fprintf(w, "warning: catalog download failed (%v); using cached copy (%s)\n", err, age)
	return &FetchResult{Data: data, FetchedAt: fetchedAt, Stale: true}, nil
}

// Refresh downloads the catalog unconditionally and replaces the cache.
func Refresh(client *http.Client, cfg types.CatalogConfig, w io.Writer) (*FetchResult, error) {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}

	fmt.Fprintf(w, "downloading: %s\n", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/tab-separated-values")

	resp, err := httputil.DoWithRetry(context.Background(), client, req, cfg.MaxRetries, w)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading catalog: %w: HTTP %d from %s", ErrNetwork, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(err)
	}

	fetchedAt := time.Now().UTC()
	meta := &cacheMeta{
		FetchedAt: fetchedAt,
		SourceURL: url,
		SizeBytes: int64(len(data)),
	}
	if err := writeCache(cfg.DataDir, data, meta); err != nil {
		return nil, fmt.Errorf("caching catalog: %w", err)
	}

	return &FetchResult{Data: data, FetchedAt: fetchedAt}, nil
}

// FromCache returns the cached catalog without touching the network. The
// age of the cache does not matter; Stale is set when the copy is older
// than cfg.MaxAge or its age is unknown.
func FromCache(cfg types.CatalogConfig, w io.Writer) (*FetchResult, error) {
	data, err := readData(cfg.DataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no cached catalog in %s (run \"gwas-search update\" first)", cfg.DataDir)
		}
		return nil, fmt.Errorf("reading cached catalog: %w: %v", ErrCacheCorrupt, err)
	}

	res := &FetchResult{Data: data, Stale: true}
	if meta, metaErr := readMeta(cfg.DataDir); metaErr == nil {
		res.FetchedAt = meta.FetchedAt
		res.Stale = !fresh(meta, maxAge(cfg))
	}
	if res.Stale {
		fmt.Fprintln(w, "warning: cached catalog may be out of date")
	}
	return res, nil
}

// wrapTransportErr classifies a transport error as a timeout or a general
// network failure.
func wrapTransportErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("downloading catalog: %w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("downloading catalog: %w: %v", ErrNetwork, err)
}
