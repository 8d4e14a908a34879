// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/gwas-search/pkg/types"
)

// Parse stage failures, matchable with errors.Is.
var (
	// ErrMalformedHeader marks a catalog whose header line is missing a
	// required column, usually an upstream format change.
	ErrMalformedHeader = errors.New("malformed catalog header")

	// ErrEmptyInput marks a catalog with no usable data rows.
	ErrEmptyInput = errors.New("catalog contains no data rows")
)

// Required columns in the catalog header. The parser resolves them by name
// so upstream column reordering does not break parsing.
const (
	colTrait  = "DISEASE/TRAIT"
	colGenes  = "REPORTED GENE(S)"
	colPubMed = "PUBMEDID"
	colPValue = "P-VALUE"
)

// maxLineBytes bounds a single catalog line. Real catalog rows run a few
// kilobytes at most.
const maxLineBytes = 1 << 20

// Parse converts raw catalog TSV bytes into a Catalog. The header line must
// contain every required column (ErrMalformedHeader otherwise). Data rows
// with the wrong field count or an empty trait are dropped and counted in
// SkippedRows; input with no surviving data rows is ErrEmptyInput.
func Parse(data []byte) (*types.Catalog, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
		return nil, fmt.Errorf("parsing catalog: %w", ErrEmptyInput)
	}

	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range []string{colTrait, colGenes, colPubMed, colPValue} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("parsing catalog: %w: missing column %q", ErrMalformedHeader, name)
		}
	}

	cat := &types.Catalog{}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			cat.SkippedRows++
			continue
		}
		trait := strings.TrimSpace(fields[idx[colTrait]])
		if trait == "" {
			cat.SkippedRows++
			continue
		}

		assoc := types.Association{
			Trait:    trait,
			Genes:    SplitGenes(fields[idx[colGenes]]),
			PubMedID: strings.TrimSpace(fields[idx[colPubMed]]),
			PValue:   parsePValue(fields[idx[colPValue]]),
			Details:  make(map[string]string, len(header)-3),
		}
		for i, name := range header {
			if name == colTrait || name == colGenes || name == colPubMed {
				continue
			}
			assoc.Details[name] = fields[i]
		}
		cat.Associations = append(cat.Associations, assoc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if len(cat.Associations) == 0 {
		return nil, fmt.Errorf("parsing catalog: %w", ErrEmptyInput)
	}
	return cat, nil
}

// SplitGenes splits a REPORTED GENE(S) field into individual gene symbols:
// values are comma separated, surrounding whitespace is trimmed, and empty
// entries are discarded. Catalog placeholders such as "NR" or "Intergenic"
// pass through verbatim.
func SplitGenes(field string) []string {
	var genes []string
	for _, g := range strings.Split(field, ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		genes = append(genes, g)
	}
	return genes
}

// parsePValue parses the P-VALUE column, returning NaN for empty or
// non-numeric values. The catalog uses plain scientific notation
// (e.g. "2E-13").
func parsePValue(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
