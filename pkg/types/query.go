// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Query holds the search parameters and output options for one catalog
// search. The zero value matches every association and renders the default
// table columns.
type Query struct {
	// Trait is matched as a case-insensitive substring of the trait column.
	// Empty matches every trait.
	Trait string `json:"trait,omitempty" yaml:"trait,omitempty"`

	// Genes lists gene symbols to match. A row qualifies when it reports
	// any of them; empty means no gene filtering.
	Genes []string `json:"genes,omitempty" yaml:"genes,omitempty"`

	// SignificantOnly keeps only genome-wide significant associations.
	SignificantOnly bool `json:"significant_only,omitempty" yaml:"significant_only,omitempty"`

	// ShowFull adds the full association record columns to the output.
	ShowFull bool `json:"show_full,omitempty" yaml:"show_full,omitempty"`

	// ShowLinks replaces PubMed IDs with article URLs in the output.
	ShowLinks bool `json:"show_links,omitempty" yaml:"show_links,omitempty"`

	// AsCSV renders output as CSV instead of an aligned table.
	AsCSV bool `json:"as_csv,omitempty" yaml:"as_csv,omitempty"`
}

// IsEmpty reports whether the query applies no filters at all, so every
// catalog row would be returned.
func (q Query) IsEmpty() bool {
	return q.Trait == "" && len(q.Genes) == 0 && !q.SignificantOnly
}
