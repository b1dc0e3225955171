package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/blogapi/internal/buildinfo"
	"github.com/dmitrijs2005/blogapi/internal/server"
	"github.com/dmitrijs2005/blogapi/internal/server/config"
	"github.com/dmitrijs2005/blogapi/internal/server/repositories/repomanager"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "blogapi",
		Short:        "Blog API server",
		SilenceUsage: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve [flags]",
		Short: "Run migrations and serve the HTTP API",
		Long: `Flags use the short form: -a addr, -d dsn, -s secret, -t minutes,
-e environment, -l log level, -u public URL, -g=true, -c config file.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:                "migrate [flags]",
		Short:              "Apply database migrations and exit",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})

	return cmd
}

func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, args []string) error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := server.NewLogger(cfg)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return err
	}
	return app.Run(ctx)
}

func migrate(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := server.NewLogger(cfg)

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return err
	}
	if err := server.Migrate(ctx, db, rm); err != nil {
		return err
	}
	logger.Info(ctx, "migrations applied")
	return nil
}
