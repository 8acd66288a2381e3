package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	catalogRepo "storefront.GO/model/repository/catalog"
	productService "storefront.GO/service/product"
)

var (
	importFile    string
	importDryRun  bool
	importReindex bool
)

var importCmd = &cobra.Command{
	Use:   "products:import",
	Short: "Import fragrances from CSV into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()

		ctx := context.Background()
		app, err := Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := productService.ImportProducts(ctx, app.DB, f, productService.ImportOptions{DryRun: importDryRun})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		indexed := "skipped"
		if importReindex && !importDryRun {
			if !app.Deps.Search.Enabled() {
				indexed = "no ELASTICSEARCH_HOST"
			} else if err := app.Deps.Search.Index(ctx, res.Imported); err != nil {
				indexed = "failed: " + err.Error()
			} else {
				indexed = fmt.Sprintf("%d documents", len(res.Imported))
			}
		}

		fmt.Fprintf(out, `
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Search index:   %s
Mode:           %s
Total time:     %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, indexed,
			map[bool]string{true: "dry run", false: "write"}[importDryRun],
			res.TotalTime.Round(time.Millisecond))
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "search:reindex",
	Short: "Push every catalog product to the Elasticsearch index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		if !app.Deps.Search.Enabled() {
			return fmt.Errorf("ELASTICSEARCH_HOST is not set")
		}
		n, err := app.Deps.Search.Reindex(ctx, catalogRepo.GetProductRepository(app.DB))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products\n", n)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file path (required)")
	_ = importCmd.MarkFlagRequired("file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate rows without writing")
	importCmd.Flags().BoolVar(&importReindex, "reindex", false, "Index imported products in Elasticsearch")
	rootCmd.AddCommand(importCmd, reindexCmd)
}
