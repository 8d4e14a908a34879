// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gwas-search pipeline.
package types

import "time"

// Association holds one row of the GWAS catalog: a SNP-trait association
// reported by a published study.
type Association struct {
	// Trait is the DISEASE/TRAIT column: the trait description as reported
	// by the study (e.g. "Primary hypothyroidism").
	Trait string `json:"trait" yaml:"trait"`

	// Genes lists the gene symbols from the REPORTED GENE(S) column, split
	// into individual symbols in column order.
	Genes []string `json:"genes" yaml:"genes"`

	// PubMedID is the PUBMEDID column: the PubMed identifier of the source
	// study, kept verbatim as a numeric string.
	PubMedID string `json:"pubmed_id" yaml:"pubmed_id"`

	// PValue is the parsed P-VALUE column. NaN when the column is empty or
	// not a number; the verbatim text stays available under Details.
	PValue float64 `json:"p_value" yaml:"p_value"`

	// Details holds the remaining catalog columns verbatim, keyed by header
	// name (e.g. "MAPPED_GENE", "STUDY ACCESSION").
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Catalog is the parsed GWAS catalog held in memory for querying.
// It is built once per process and read-only afterwards.
type Catalog struct {
	// Associations holds the catalog rows in file order.
	Associations []Association `json:"associations" yaml:"associations"`

	// FetchedAt is when the underlying TSV was downloaded from the catalog
	// service.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Stale reports that the data came from an expired cache after a failed
	// download attempt.
	Stale bool `json:"stale,omitempty" yaml:"stale,omitempty"`

	// SkippedRows counts malformed data rows dropped during parsing.
	SkippedRows int `json:"skipped_rows,omitempty" yaml:"skipped_rows,omitempty"`
}
