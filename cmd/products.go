package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reindexBatch int

var productsReindexCmd = &cobra.Command{
	Use:   "products:reindex",
	Short: "Push every product to the Elasticsearch index",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		if !c.Search.Enabled() {
			return fmt.Errorf("ELASTICSEARCH_HOST is not set")
		}
		start := time.Now()
		n, err := c.Search.Reindex(cmd.Context(), c.ProductRepo, reindexBatch)
		if err != nil {
			return fmt.Errorf("reindex failed after %d products: %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d products in %s\n", n, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	productsReindexCmd.Flags().IntVar(&reindexBatch, "batch", 500, "products per bulk request")
	rootCmd.AddCommand(productsReindexCmd)
}
