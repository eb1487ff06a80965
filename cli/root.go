package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/ledcontent/internal/config"
	"github.com/xiaot623/ledcontent/internal/logging"
	"github.com/xiaot623/ledcontent/internal/service"
	"github.com/xiaot623/ledcontent/internal/store"
	"github.com/xiaot623/ledcontent/policy"
)

type commandContext struct {
	driver  string
	dsn     string
	verbose bool
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "ledctl",
		Short:         "Manage LED content documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.driver, "driver", cfg.DatabaseDriver, "Database driver (sqlite3 or postgres)")
	rootCmd.PersistentFlags().StringVar(&ctx.dsn, "db", cfg.DatabaseURL, "Database connection string")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log store operations to stderr")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newActivateCommand(ctx))
	rootCmd.AddCommand(newTestCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newImageCommand(ctx))
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}

func (c *commandContext) logger() *slog.Logger {
	if !c.verbose {
		return logging.Discard()
	}
	logger, err := logging.New(logging.Options{Level: "info", Output: os.Stderr})
	if err != nil {
		return logging.Discard()
	}
	return logger
}

// withService opens the store for the duration of fn.
func (c *commandContext) withService(ctx context.Context, fn func(*service.Service) error) error {
	db, err := store.NewSQLStore(c.driver, c.dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return fmt.Errorf("load content policy: %w", err)
	}
	return fn(service.New(db, policyEngine, nil, c.logger(), nil))
}
