// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query filters the parsed catalog by trait name and gene symbols.
package query

import (
	"strings"

	"github.com/pdiddy/gwas-search/pkg/types"
)

// GenomeWideThreshold is the conventional genome-wide significance level
// for GWAS associations.
const GenomeWideThreshold = 5e-8

// Run filters the catalog and returns the matching associations in catalog
// order. A row matches when its trait contains q.Trait as a substring (an
// empty substring matches every trait) and, when q.Genes is non-empty, it
// reports at least one of the query genes. Matches are returned as-is: no
// deduplication and no re-sorting.
//
// All comparisons fold ASCII case only. Catalog trait names and gene
// symbols are plain ASCII, so locale-aware folding buys nothing here.
func Run(cat *types.Catalog, q types.Query) []types.Association {
	traitNeedle := lowerASCII(q.Trait)

	geneSet := make(map[string]struct{}, len(q.Genes))
	for _, g := range q.Genes {
		geneSet[lowerASCII(g)] = struct{}{}
	}

	var matches []types.Association
	for _, a := range cat.Associations {
		if traitNeedle != "" && !strings.Contains(lowerASCII(a.Trait), traitNeedle) {
			continue
		}
		if len(geneSet) > 0 && !reportsAny(a.Genes, geneSet) {
			continue
		}
		if q.SignificantOnly && !Significant(a.PValue) {
			continue
		}
		matches = append(matches, a)
	}
	return matches
}

// Significant reports whether p is below the genome-wide significance
// threshold. NaN is never significant.
func Significant(p float64) bool {
	return p < GenomeWideThreshold
}

// ParseGenes flattens gene symbols given on the command line: each value
// may itself be comma separated, entries are trimmed, empty entries are
// discarded, and symbols are uppercased for display consistency (matching
// is case-insensitive regardless).
func ParseGenes(values []string) []string {
	var genes []string
	for _, v := range values {
		for _, g := range strings.Split(v, ",") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			genes = append(genes, strings.ToUpper(g))
		}
	}
	return genes
}

// reportsAny reports whether any of the association's genes appears in the
// case-folded query set.
func reportsAny(genes []string, set map[string]struct{}) bool {
	for _, g := range genes {
		if _, ok := set[lowerASCII(g)]; ok {
			return true
		}
	}
	return false
}

// lowerASCII lowercases ASCII letters only, leaving all other bytes
// untouched.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
