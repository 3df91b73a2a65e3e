package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-course-client/internal/app"
	"go-course-client/internal/config"
)

var (
	client *app.App
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coursecli",
	Short: "Course marketplace client: browse the catalog, manage cart and wishlist",
	Long: `coursecli is a terminal client for the course marketplace API.

It filters and sorts the catalog locally with a pure query engine and
keeps the cart and wishlist in sync with the backend under an
optimistic-update discipline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if cfg.Debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		client, err = app.Build(cfg, logger)
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(wishlistCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
