package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gwas-search/internal/catalog"
	"github.com/pdiddy/gwas-search/internal/query"
	"github.com/pdiddy/gwas-search/internal/render"
	"github.com/pdiddy/gwas-search/pkg/types"
)

var traitCmd = &cobra.Command{
	Use:   "trait [trait-substring]",
	Short: "Search the catalog by trait name and gene symbols",
	Long: `Trait searches the cached catalog for associations whose trait name
contains the given substring (case-insensitive). Gene filters narrow the
results to rows reporting at least one of the given symbols; with no trait
substring, gene filters search the whole catalog.

Results print as an aligned table by default. Use --csv for
machine-readable output and --with-pubmed-links to turn PubMed IDs into
article URLs.`,
	Example: `  gwas-search trait hypothyroidism
  gwas-search trait hypothyroidism --gene COL5A2,TSHR
  gwas-search trait --gene BRCA1 --with-associations --csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrait,
}

func init() {
	traitCmd.Flags().StringArrayP("gene", "g", nil, "gene symbol to match (repeatable, comma-splittable)")
	traitCmd.Flags().BoolP("with-associations", "a", false, "show full association data")
	traitCmd.Flags().BoolP("with-pubmed-links", "l", false, "show PubMed URLs instead of IDs")
	traitCmd.Flags().BoolP("csv", "c", false, "output as CSV")
	traitCmd.Flags().Bool("significant", false, "keep only genome-wide significant associations (p < 5e-8)")
	traitCmd.Flags().Bool("refresh", false, "re-download the catalog before searching")
	traitCmd.Flags().Bool("offline", false, "never touch the network; fail if nothing is cached")

	rootCmd.AddCommand(traitCmd)
}

func runTrait(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig(cmd)
	if err != nil {
		return err
	}

	genes, _ := cmd.Flags().GetStringArray("gene")
	showFull, _ := cmd.Flags().GetBool("with-associations")
	showLinks, _ := cmd.Flags().GetBool("with-pubmed-links")
	asCSV, _ := cmd.Flags().GetBool("csv")
	significant, _ := cmd.Flags().GetBool("significant")
	refresh, _ := cmd.Flags().GetBool("refresh")
	offline, _ := cmd.Flags().GetBool("offline")

	if refresh && offline {
		return fmt.Errorf("--refresh and --offline are mutually exclusive")
	}

	q := types.Query{
		Genes:           query.ParseGenes(genes),
		SignificantOnly: significant,
		ShowFull:        showFull,
		ShowLinks:       showLinks,
		AsCSV:           asCSV,
	}
	if len(args) > 0 {
		q.Trait = args[0]
	}
	if q.IsEmpty() {
		fmt.Fprintln(os.Stderr, "no filters given; listing the entire catalog")
	}

	client := &http.Client{Timeout: cfg.Timeout}

	// Progress and warnings go to stderr so CSV output stays clean.
	fetch := func() (*catalog.FetchResult, error) {
		switch {
		case offline:
			return catalog.FromCache(cfg, os.Stderr)
		case refresh:
			return catalog.Refresh(client, cfg, os.Stderr)
		default:
			return catalog.Fetch(client, cfg, os.Stderr)
		}
	}

	store := catalog.NewStore(fetch, catalog.Parse)
	cat, err := store.Catalog()
	if err != nil {
		return err
	}
	if cat.SkippedRows > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed catalog row(s)\n", cat.SkippedRows)
	}

	results := query.Run(cat, q)
	return render.Format(results, q, os.Stdout)
}
