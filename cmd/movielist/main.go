package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/catalog"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/rpc"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/service"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/transport"
)

var (
	// Version is set via ldflags.
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "movielist",
	Short:   "Movie watch-list backend",
	Version: Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC health servers",
	Long: `Run the HTTP API and the gRPC health endpoint.

Configuration is read from MOVIELIST_* environment variables and an
optional .env file in the working directory.

By default only gmail addresses can register. To accept any address set
a permissive pattern, for example:

  MOVIELIST_EMAIL_PATTERN='^[^@\s]+@[^@\s]+$' movielist serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx.New(
			config.Module,
			logger.Module,
			db.Module,
			service.Module,
			catalog.Module,
			transport.Module,
			rpc.Module,
			fx.Invoke(func(*transport.HTTPServer, *rpc.HealthServer) {}),
		).Run()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		l, err := logger.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		gdb, err := db.NewGormClient(cfg, l)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		l.Sugar().Infow("schema migrated", "driver", cfg.DBDriver)
		return nil
	},
}
