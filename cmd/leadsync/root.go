package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd loads the configuration and opens the log file before any subcommand runs
var rootCmd = &cobra.Command{
	Use:           "leadsync",
	Short:         "Insider profile deletion and lead ingestion",
	Long:          `leadsync removes customer profiles from Insider by CPF and loads cleaned lead exports (CSV or Excel) into a database table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = logging.NewFileLogger(logging.Options{
			Dir:       cfg.LogDir,
			Name:      "leadsync",
			Level:     cfg.LogLevel,
			MaxSizeMB: cfg.LogMaxSizeMB,
		})
		if err != nil {
			return err
		}
		logger = logger.With(zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger != nil {
			logger.Error("Command failed", zap.Error(err))
			_ = logger.Sync()
		}
		pterm.Error.Println(logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(deleteCmd, ingestCmd, queryCmd)
}
