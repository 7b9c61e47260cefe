package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	categoryService "storefront.GO/service/category"
)

var categoriesTreeCmd = &cobra.Command{
	Use:   "categories:tree",
	Short: "Print the active category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		nodes, err := c.Categories.TreeNodes(cmd.Context())
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), nodes, 0)
		return nil
	},
}

var categoriesLevelsCmd = &cobra.Command{
	Use:   "categories:levels",
	Short: "Recompute stored category levels from the tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		changed, err := c.Categories.RefreshLevels(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d category levels\n", changed)
		return nil
	},
}

func printTree(w io.Writer, nodes []categoryService.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (#%d, %s)\n", strings.Repeat("  ", depth), n.Name, n.EntityID, n.Alias)
		printTree(w, n.Children, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(categoriesTreeCmd)
	rootCmd.AddCommand(categoriesLevelsCmd)
}
