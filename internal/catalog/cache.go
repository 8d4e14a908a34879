// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gwas-search/pkg/types"
)

const (
	catalogFile = "catalog.tsv"
	metaFile    = "catalog.yaml"
)

// cacheMeta is the metadata sidecar written next to the cached catalog.
type cacheMeta struct {
	// FetchedAt is when the catalog was downloaded.
	FetchedAt time.Time `yaml:"fetched_at"`

	// SourceURL is the endpoint the catalog came from.
	SourceURL string `yaml:"source_url"`

	// SizeBytes is the size of the cached file.
	SizeBytes int64 `yaml:"size_bytes"`
}

// CachePath returns the location of the cached catalog file.
func CachePath(cfg types.CatalogConfig) string {
	return filepath.Join(cfg.DataDir, catalogFile)
}

// CacheFresh reports whether a cached catalog exists and is younger than
// cfg.MaxAge.
func CacheFresh(cfg types.CatalogConfig) bool {
	if _, err := os.Stat(CachePath(cfg)); err != nil {
		return false
	}
	meta, err := readMeta(cfg.DataDir)
	if err != nil {
		return false
	}
	return fresh(meta, maxAge(cfg))
}

func maxAge(cfg types.CatalogConfig) time.Duration {
	if cfg.MaxAge > 0 {
		return cfg.MaxAge
	}
	return DefaultMaxAge
}

func fresh(meta *cacheMeta, age time.Duration) bool {
	return time.Since(meta.FetchedAt) < age
}

// gzipMagic is the two-byte signature of gzip streams.
var gzipMagic = []byte{0x1f, 0x8b}

// readData reads the cached catalog bytes. A gzip-compressed cache file
// (e.g. a release archive copied in by hand) is decompressed transparently.
func readData(dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, catalogFile))
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing cache: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing cache: %w", err)
	}
	return plain, nil
}

// readMeta reads the metadata sidecar.
func readMeta(dir string) (*cacheMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	var meta cacheMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing cache metadata: %w", err)
	}
	return &meta, nil
}

// writeCache replaces the cached catalog and its metadata sidecar. The data
// file is written before the sidecar so a crash between the two never
// leaves metadata describing a missing file.
func writeCache(dir string, data []byte, meta *cacheMeta) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, catalogFile), data); err != nil {
		return err
	}

	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling cache metadata: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, metaFile), metaBytes)
}

// writeFileAtomic writes data to path via a temporary file and rename, so
// a concurrent reader never observes a partially written file.
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
