// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import "github.com/pdiddy/gwas-search/pkg/types"

// FetchFunc produces the raw catalog bytes: typically Fetch, Refresh, or
// FromCache bound to a client and config.
type FetchFunc func() (*FetchResult, error)

// ParseFunc converts raw catalog bytes into a Catalog, typically Parse.
type ParseFunc func([]byte) (*types.Catalog, error)

// Store owns the in-memory catalog for one invocation. It fetches and
// parses lazily, at most once, and the resulting catalog is read-only.
// The store is plain state held by its caller rather than a process-wide
// singleton, and it performs no locking: the CLI runs one query per
// process.
type Store struct {
	fetch   FetchFunc
	parse   ParseFunc
	catalog *types.Catalog
}

// NewStore returns a Store that builds the catalog from fetch and parse on
// first use.
func NewStore(fetch FetchFunc, parse ParseFunc) *Store {
	return &Store{fetch: fetch, parse: parse}
}

// Catalog returns the parsed catalog, building it on the first call and
// reusing it afterwards.
func (s *Store) Catalog() (*types.Catalog, error) {
	if s.catalog != nil {
		return s.catalog, nil
	}

	res, err := s.fetch()
	if err != nil {
		return nil, err
	}
	cat, err := s.parse(res.Data)
	if err != nil {
		return nil, err
	}
	cat.FetchedAt = res.FetchedAt
	cat.Stale = res.Stale

	s.catalog = cat
	return cat, nil
}
