package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"storefront.GO/config"
	"storefront.GO/service/catalog"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront catalog maintenance commands",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadAppConfig()
		config.InitLogger()
	},
}

// Execute applies registered commands and runs the root command.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openCatalog connects to the configured store and wires the services.
var openCatalog = func() (*catalog.Catalog, error) {
	config.InitRedis()
	logrus.Debug(config.ProbeRedis())
	db, err := config.GetDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return catalog.Get(db), nil
}
