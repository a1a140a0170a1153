package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"salesbook/internal/config"
	"salesbook/internal/storage"
	"salesbook/internal/tables"
	"salesbook/internal/tables/csvfile"
)

var importFromFlag string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy csv tables into an empty SQLite database",
	Long: `Copy customers.csv, products.csv and sales.csv from a data directory
into the empty SQLite database given by --db. Ids are reassigned by the
database and sales are rewritten to match.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFromFlag, "from", "", "csv data directory (default: DATA_DIR)")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	from := firstNonEmpty(importFromFlag, dataDirFlag, cfg.DataDir)
	to := firstNonEmpty(dbPathFlag, cfg.SQLiteDBPath)

	if info, err := os.Stat(from); err != nil || !info.IsDir() {
		return fmt.Errorf("data directory %s not found", from)
	}

	src, err := csvfile.Open(from, cfg.Policy())
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := storage.NewSQLiteRepository(to, cfg.Policy())
	if err != nil {
		return err
	}
	defer dst.Close()

	stats, err := tables.Copy(cmd.Context(), src, dst)
	if err != nil {
		return fmt.Errorf("import %s into %s: %w", from, to, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customers, %d products and %d sales into %s\n",
		stats.Customers, stats.Products, stats.Sales, to)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
