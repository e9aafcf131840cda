package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/deletion"
)

var (
	deleteIDs     []string
	deleteIDsFile string
	deleteQuery   string
	deleteRate    int
)

// deleteCmd removes one Insider profile per CPF at a bounded request rate
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete Insider profiles by CPF",
	Long: `The delete command sends one deletion request per CPF to the Insider API.
Identifiers come from --ids, a file (--ids-file, one per line) or a SQL query (--query)
run against the configured database. Requests are paced to --rate per minute.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateDeletion(); err != nil {
			return err
		}
		ctx := cmd.Context()

		src, closeSrc, err := identifierSource(cmd)
		if err != nil {
			return err
		}
		defer closeSrc()

		ids, err := src.IDs(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			pterm.Warning.Println("No identifiers to delete")
			return nil
		}

		rate := cfg.RequestsPerMinute
		if cmd.Flags().Changed("rate") {
			rate = deleteRate
		}

		client := deletion.NewClient(cfg.DeleteURL, cfg.PartnerName, cfg.Token, cfg.HTTPTimeout)
		dispatcher := deletion.NewDispatcher(client, rate, logger)

		bar, barErr := pterm.DefaultProgressbar.
			WithTotal(len(ids)).
			WithTitle("Deleting").
			WithWriter(os.Stderr).
			Start()
		if barErr == nil {
			dispatcher.WithProgress(func() { bar.Increment() })
		}

		outcome, runErr := dispatcher.Run(ctx, ids)
		if barErr == nil {
			_, _ = bar.Stop()
		}

		pterm.Println("Process finished.")
		pterm.Printf("  Profiles deleted: %d\n", outcome.Success)
		pterm.Printf("  Failed or not found: %d\n", outcome.Failure)
		pterm.Printf("  Elapsed: %.2f seconds\n", outcome.Elapsed.Seconds())

		if runErr != nil {
			if errors.Is(runErr, deletion.ErrNetwork) {
				pterm.Printf("  Not attempted: %d\n", outcome.Total-outcome.Attempted())
			}
			return runErr
		}
		return nil
	},
}

// identifierSource picks the single identifier source named by the flags
func identifierSource(cmd *cobra.Command) (deletion.Source, func(), error) {
	noop := func() {}

	set := 0
	for _, name := range []string{"ids", "ids-file", "query"} {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	if set != 1 {
		return nil, noop, errors.New("exactly one of --ids, --ids-file or --query is required")
	}

	switch {
	case cmd.Flags().Changed("ids"):
		return deletion.StaticSource(deleteIDs), noop, nil
	case cmd.Flags().Changed("ids-file"):
		return deletion.FileSource{Path: deleteIDsFile}, noop, nil
	}

	conn, err := connector.NewConnector(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect for identifier query: %w", err)
	}
	closeConn := func() {
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close connection", zap.Error(err))
		}
	}
	return deletion.QuerySource{DB: conn.DB(), Query: deleteQuery}, closeConn, nil
}

func init() {
	deleteCmd.Flags().StringSliceVar(&deleteIDs, "ids", nil, "Comma-separated CPFs to delete")
	deleteCmd.Flags().StringVar(&deleteIDsFile, "ids-file", "", "File with one CPF per line")
	deleteCmd.Flags().StringVar(&deleteQuery, "query", "", "SQL query whose first column holds the CPFs")
	deleteCmd.Flags().IntVar(&deleteRate, "rate", 900, "Maximum requests per minute (0 disables pacing)")
}
