// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats query results as an aligned table or as CSV.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/gwas-search/pkg/types"
)

const pubMedBase = "https://pubmed.ncbi.nlm.nih.gov/"

// PubMedURL returns the article URL for a PubMed identifier, or "" when the
// identifier is empty.
func PubMedURL(id string) string {
	if id == "" {
		return ""
	}
	return pubMedBase + id
}

// column describes one output column: its header, its table width, and how
// to read its value from an association.
type column struct {
	name  string
	width int
	value func(a types.Association) string
}

// columns returns the output columns for the query's display flags. The
// same set drives both the table and the CSV renderer, so the two modes
// always agree on content.
func columns(q types.Query) []column {
	cols := []column{
		{"Trait", 50, func(a types.Association) string { return a.Trait }},
		{"Genes", 25, func(a types.Association) string { return strings.Join(a.Genes, ", ") }},
	}
	if q.ShowFull {
		cols = append(cols,
			column{"P-value", 12, func(a types.Association) string { return a.Details["P-VALUE"] }},
			column{"Mapped gene", 20, func(a types.Association) string { return a.Details["MAPPED_GENE"] }},
			column{"Accession", 15, func(a types.Association) string { return a.Details["STUDY ACCESSION"] }},
		)
	}

	pubmed := column{"PubMed", 10, func(a types.Association) string { return a.PubMedID }}
	if q.ShowLinks {
		pubmed = column{"PubMed", 45, func(a types.Association) string { return PubMedURL(a.PubMedID) }}
	}
	return append(cols, pubmed)
}

// Format writes the results to w in the mode selected by the query flags.
func Format(results []types.Association, q types.Query, w io.Writer) error {
	if q.AsCSV {
		return FormatCSV(results, q, w)
	}
	FormatTable(results, q, w)
	return nil
}

// FormatTable writes results as a human-readable aligned table. Values are
// truncated to their column width except in the last column, which holds
// the PubMed ID or URL and must stay intact. Zero results produce a
// distinct message so an empty search is never a blank screen.
func FormatTable(results []types.Association, q types.Query, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching associations found.")
		return
	}

	cols := columns(q)
	sepWidth := 0
	for i, c := range cols {
		if i == len(cols)-1 {
			fmt.Fprintf(w, "%s\n", c.name)
			sepWidth += len(c.name)
			break
		}
		fmt.Fprintf(w, "%-*s  ", c.width, c.name)
		sepWidth += c.width + 2
	}
	fmt.Fprintln(w, strings.Repeat("-", sepWidth))

	for _, a := range results {
		for i, c := range cols {
			if i == len(cols)-1 {
				fmt.Fprintf(w, "%s\n", c.value(a))
				break
			}
			fmt.Fprintf(w, "%-*s  ", c.width, truncate(c.value(a), c.width))
		}
	}

	fmt.Fprintf(w, "\n%d associations\n", len(results))
}

// FormatCSV writes results as CSV with the stdlib quoting rules. The header
// row is always written, so zero results still produce parseable output
// that is visibly distinct from a matching search. Values are never
// truncated.
func FormatCSV(results []types.Association, q types.Query, w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := columns(q)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := make([]string, len(cols))
	for _, a := range results {
		for i, c := range cols {
			record[i] = c.value(a)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
