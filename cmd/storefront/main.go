package main

import (
	"context"
	"fmt"
	"os"

	"github.com/argea-gh/herbaprimax-V3/internal/config"
	"github.com/argea-gh/herbaprimax-V3/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Herbaprima storefront: catalog, stock-checked cart and WhatsApp checkout",
	Long: `storefront serves the product catalog and a single shopping cart over HTTP.

Every quantity increase is validated against the catalog's current stock
before the cart changes, and the cart survives restarts in durable storage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("STOREFRONT_CONFIG")
		}
		var err error
		cfg, err = config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger, err = logging.New("storefront", cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default $STOREFRONT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, catalogCmd, cartCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
