package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/pipeline"
	"github.com/theirongolddev/budgetsim/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagImportDryRun bool
	flagImportFull   bool
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import simulation catalogs (JSON or YAML) into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate only, write nothing")
	importCmd.Flags().BoolVar(&flagImportFull, "full", false, "Reparse every file, ignoring the file tracker")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	root := args[0]
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	lr, err := loadCatalogs(root, st)
	if err != nil {
		return err
	}

	res, err := pipeline.Import(st, lr, flagImportDryRun)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	for _, ferr := range lr.FileErrs {
		fmt.Fprintf(os.Stderr, "  %v\n", ferr)
	}

	if len(res.Rejected) > 0 {
		rows := make([][]string, 0, len(res.Rejected))
		for _, r := range res.Rejected {
			rows = append(rows, []string{r.Path, strconv.Itoa(r.Index), r.Err.Error()})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Rejected",
			Headers: []string{"File", "#", "Reason"},
			Rows:    rows,
		}))
	}

	fmt.Println()
	verb := "Imported"
	if res.DryRun {
		verb = "Would import"
	}
	fmt.Printf("  %s %s simulations (%d rejected)\n",
		verb, formatNumber(int64(res.Accepted)), len(res.Rejected))
	if !res.DryRun {
		total, _ := st.SimulationCount()
		fmt.Printf("  Catalog now holds %s simulations\n", formatNumber(int64(total)))
	}
	fmt.Println()

	if res.DryRun && len(res.Rejected) > 0 {
		return fmt.Errorf("%d invalid entries", len(res.Rejected))
	}
	return nil
}

// loadCatalogs parses catalogs under root, skipping unchanged files unless
// --full or --dry-run is set.
func loadCatalogs(root string, st *store.Store) (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", root)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%20 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagImportFull && !flagImportDryRun {
		cr, err := pipeline.LoadChanged(root, st, progressFn)
		if err == nil {
			if !flagQuiet && cr.TotalFiles > 0 {
				fmt.Fprintf(os.Stderr, "\r  %d unchanged + %d parsed (%s entries)    \n",
					cr.Unchanged, cr.Reparsed, formatNumber(int64(cr.TotalEntries)))
			}
			return &cr.LoadResult, nil
		}
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\n  File tracker error, falling back to full parse\n")
		}
	}

	lr, err := pipeline.Load(root, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && lr.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s entries across %d files    \n",
			formatNumber(int64(lr.TotalEntries)), lr.ParsedFiles)
	}
	return lr, nil
}
