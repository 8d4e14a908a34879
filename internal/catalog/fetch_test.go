// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/gwas-search/internal/httputil"
	"github.com/pdiddy/gwas-search/pkg/types"
)

func init() {
	// Tiny backoff so the 429 retry test finishes quickly.
	httputil.RetryBaseDelay = time.Millisecond
}

var sampleCatalog = tsv(
	testHeader,
	testRow("12345", "Primary hypothyroidism", "TSHR", "2E-13"),
	testRow("23456", "Type 2 diabetes", "TCF7L2", "4E-9"),
)

func testCatalogConfig(dir, url string) types.CatalogConfig {
	return types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "gwas-search-test/0.1",
		},
		URL:     url,
		DataDir: dir,
		MaxAge:  time.Hour,
	}
}

// newCatalogServer serves body with the given status and counts requests.
func newCatalogServer(t *testing.T, status int, body []byte, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		w.WriteHeader(status)
		w.Write(body)
	}))
}

func TestRefreshDownloadsAndCaches(t *testing.T) {
	ts := newCatalogServer(t, http.StatusOK, sampleCatalog, nil)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testCatalogConfig(dir, ts.URL)
	var buf bytes.Buffer

	res, err := Refresh(ts.Client(), cfg, &buf)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("downloaded data does not match served catalog")
	}
	if res.Stale {
		t.Error("fresh download should not be stale")
	}
	if res.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}

	cached, err := os.ReadFile(filepath.Join(dir, "catalog.tsv"))
	if err != nil {
		t.Fatalf("reading cached file: %v", err)
	}
	if !bytes.Equal(cached, sampleCatalog) {
		t.Error("cached file does not match served catalog")
	}

	meta, err := readMeta(dir)
	if err != nil {
		t.Fatalf("reading cache metadata: %v", err)
	}
	if meta.SourceURL != ts.URL {
		t.Errorf("meta.SourceURL = %q, want %q", meta.SourceURL, ts.URL)
	}
	if meta.SizeBytes != int64(len(sampleCatalog)) {
		t.Errorf("meta.SizeBytes = %d, want %d", meta.SizeBytes, len(sampleCatalog))
	}

	if !strings.Contains(buf.String(), "downloading:") {
		t.Error("output should contain 'downloading:'")
	}
}

func TestRefreshReplacesExistingCache(t *testing.T) {
	dir := t.TempDir()
	old := tsv(testHeader, testRow("11111", "Old trait", "OLD1", "1E-8"))
	if err := writeCache(dir, old, &cacheMeta{FetchedAt: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatal(err)
	}

	ts := newCatalogServer(t, http.StatusOK, sampleCatalog, nil)
	defer ts.Close()

	_, err := Refresh(ts.Client(), testCatalogConfig(dir, ts.URL), io.Discard)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	cached, err := readData(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cached, sampleCatalog) {
		t.Error("cache still holds the old catalog")
	}

	// Atomic replacement leaves no temp files behind.
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestFetchUsesFreshCache(t *testing.T) {
	dir := t.TempDir()
	prime := newCatalogServer(t, http.StatusOK, sampleCatalog, nil)
	if _, err := Refresh(prime.Client(), testCatalogConfig(dir, prime.URL), io.Discard); err != nil {
		t.Fatalf("priming cache: %v", err)
	}
	prime.Close()

	var calls int32
	ts := newCatalogServer(t, http.StatusOK, sampleCatalog, &calls)
	defer ts.Close()

	var buf bytes.Buffer
	res, err := Fetch(ts.Client(), testCatalogConfig(dir, ts.URL), &buf)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("HTTP requests = %d, want 0 (fresh cache)", got)
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("cached data does not match")
	}
	if res.Stale {
		t.Error("fresh cache should not be stale")
	}
	if !strings.Contains(buf.String(), "using cached catalog") {
		t.Error("output should mention the cached catalog")
	}
}

func TestFetchRedownloadsExpiredCache(t *testing.T) {
	dir := t.TempDir()
	old := tsv(testHeader, testRow("11111", "Old trait", "OLD1", "1E-8"))
	meta := &cacheMeta{FetchedAt: time.Now().Add(-2 * time.Hour)}
	if err := writeCache(dir, old, meta); err != nil {
		t.Fatal(err)
	}

	var calls int32
	ts := newCatalogServer(t, http.StatusOK, sampleCatalog, &calls)
	defer ts.Close()

	res, err := Fetch(ts.Client(), testCatalogConfig(dir, ts.URL), io.Discard)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("HTTP requests = %d, want 1 (expired cache)", got)
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("expired cache should be replaced by the download")
	}
}

func TestFetchFallsBackToStaleCache(t *testing.T) {
	dir := t.TempDir()
	meta := &cacheMeta{FetchedAt: time.Now().Add(-72 * time.Hour)}
	if err := writeCache(dir, sampleCatalog, meta); err != nil {
		t.Fatal(err)
	}

	ts := newCatalogServer(t, http.StatusInternalServerError, nil, nil)
	defer ts.Close()

	var buf bytes.Buffer
	res, err := Fetch(ts.Client(), testCatalogConfig(dir, ts.URL), &buf)
	if err != nil {
		t.Fatalf("Fetch should degrade to the stale cache, got error: %v", err)
	}
	if !res.Stale {
		t.Error("fallback result should be marked stale")
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("fallback data does not match the cache")
	}
	if !strings.Contains(buf.String(), "warning: catalog download failed") {
		t.Errorf("output %q should warn about the failed download", buf.String())
	}
}

func TestFetchNoCacheNetworkError(t *testing.T) {
	ts := newCatalogServer(t, http.StatusOK, sampleCatalog, nil)
	url := ts.URL
	ts.Close() // connection refused from here on

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := Fetch(client, testCatalogConfig(t.TempDir(), url), io.Discard)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Fetch error = %v, want ErrNetwork", err)
	}
}

func TestRefreshTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(sampleCatalog)
	}))
	defer ts.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := Refresh(client, testCatalogConfig(t.TempDir(), ts.URL), io.Discard)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Refresh error = %v, want ErrTimeout", err)
	}
}

func TestRefreshHTTPStatusError(t *testing.T) {
	ts := newCatalogServer(t, http.StatusNotFound, nil, nil)
	defer ts.Close()

	_, err := Refresh(ts.Client(), testCatalogConfig(t.TempDir(), ts.URL), io.Discard)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Refresh error = %v, want ErrNetwork", err)
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error %q should name the HTTP status", err)
	}
}

func TestRefreshRetriesOn429(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(sampleCatalog)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	res, err := Refresh(ts.Client(), testCatalogConfig(t.TempDir(), ts.URL), &buf)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("HTTP requests = %d, want 2", got)
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("retried download does not match served catalog")
	}
	if !strings.Contains(buf.String(), "rate limited") {
		t.Error("output should mention the rate limit retry")
	}
}

func TestFromCacheMissing(t *testing.T) {
	_, err := FromCache(testCatalogConfig(t.TempDir(), ""), io.Discard)
	if err == nil {
		t.Fatal("expected error for missing cache")
	}
	if !strings.Contains(err.Error(), "no cached catalog") {
		t.Errorf("error = %q, want mention of missing cache", err)
	}
}

func TestFromCacheStale(t *testing.T) {
	dir := t.TempDir()
	meta := &cacheMeta{FetchedAt: time.Now().Add(-48 * time.Hour)}
	if err := writeCache(dir, sampleCatalog, meta); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	res, err := FromCache(testCatalogConfig(dir, ""), &buf)
	if err != nil {
		t.Fatalf("FromCache: %v", err)
	}
	if !res.Stale {
		t.Error("expired cache should be marked stale")
	}
	if !strings.Contains(buf.String(), "out of date") {
		t.Error("output should warn about the stale cache")
	}
}

func TestFromCacheFresh(t *testing.T) {
	dir := t.TempDir()
	if err := writeCache(dir, sampleCatalog, &cacheMeta{FetchedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	res, err := FromCache(testCatalogConfig(dir, ""), &buf)
	if err != nil {
		t.Fatalf("FromCache: %v", err)
	}
	if res.Stale {
		t.Error("fresh cache should not be marked stale")
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestFromCacheGzip(t *testing.T) {
	dir := t.TempDir()
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(sampleCatalog); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "catalog.tsv"), gz.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := FromCache(testCatalogConfig(dir, ""), io.Discard)
	if err != nil {
		t.Fatalf("FromCache: %v", err)
	}
	if !bytes.Equal(res.Data, sampleCatalog) {
		t.Error("gzip cache should decompress to the original catalog")
	}
}

func TestFromCacheCorruptGzip(t *testing.T) {
	dir := t.TempDir()
	corrupt := []byte{0x1f, 0x8b, 0xff, 0x00, 0x01}
	if err := os.WriteFile(filepath.Join(dir, "catalog.tsv"), corrupt, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FromCache(testCatalogConfig(dir, ""), io.Discard)
	if !errors.Is(err, ErrCacheCorrupt) {
		t.Fatalf("FromCache error = %v, want ErrCacheCorrupt", err)
	}
}

func TestCacheFresh(t *testing.T) {
	cfg := testCatalogConfig(t.TempDir(), "")
	if CacheFresh(cfg) {
		t.Error("empty directory should not count as fresh")
	}

	if err := writeCache(cfg.DataDir, sampleCatalog, &cacheMeta{FetchedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if !CacheFresh(cfg) {
		t.Error("just-written cache should be fresh")
	}

	old := &cacheMeta{FetchedAt: time.Now().Add(-2 * time.Hour)}
	if err := writeCache(cfg.DataDir, sampleCatalog, old); err != nil {
		t.Fatal(err)
	}
	if CacheFresh(cfg) {
		t.Error("cache older than MaxAge should not be fresh")
	}

	// Data file without its sidecar is never fresh.
	if err := os.Remove(filepath.Join(cfg.DataDir, "catalog.yaml")); err != nil {
		t.Fatal(err)
	}
	if CacheFresh(cfg) {
		t.Error("cache without metadata should not be fresh")
	}
}
