package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs shown by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "Show previous scrape runs",
		Long: `Show scrape runs recorded in the history database, newest first.

Examples:
  # All recent runs
  docscrape history

  # Runs of one site
  docscrape history https://docs.pipecat.ai`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to show (0 = all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	baseURL := ""
	if len(args) > 0 {
		baseURL = config.NormalizeBaseURL(args[0])
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(getDBDir(cmd), opts)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
			return nil
		}
		return err
	}
	defer db.Close() //nolint:errcheck // read-only use

	runs, err := db.ListRuns(cmd.Context(), baseURL, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
		return nil
	}

	tbl := table.New("ID", "Started", "Platform", "Base URL", "Pages", "Failed", "Status").WithWriter(cmd.OutOrStdout())
	for _, run := range runs {
		status := "incomplete"
		if run.CompletedAt != nil {
			status = "complete"
		}
		tbl.AddRow(run.ID, run.StartedAt.Local().Format("2006-01-02 15:04"), run.Platform, run.BaseURL, run.Successful, run.Failed, status)
	}
	tbl.Print()

	return nil
}
