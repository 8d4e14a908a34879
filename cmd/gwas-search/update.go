package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gwas-search/internal/catalog"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest catalog release into the local cache",
	Long: `Update refreshes the local copy of the GWAS catalog. A cached copy
younger than the freshness window is kept as-is unless --force is given.
Downloads replace the cache atomically, so an interrupted update leaves the
previous copy intact.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Bool("force", false, "re-download even if the cached copy is fresh")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && catalog.CacheFresh(cfg) {
		fmt.Printf("catalog is up to date: %s\n", catalog.CachePath(cfg))
		return nil
	}

	client := &http.Client{Timeout: cfg.Timeout}
	res, err := catalog.Refresh(client, cfg, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("cached %d bytes to %s\n", len(res.Data), catalog.CachePath(cfg))
	return nil
}
