package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscrape",
		Short: "Scrape any documentation site to Markdown",
		Long: `docscrape discovers the pages of a documentation site (sitemap, llms.txt or
link crawling), converts each page to Markdown and writes it with a manifest
that lets interrupted runs resume where they stopped.

A URL may be given without the scrape subcommand:
  docscrape https://docs.pipecat.ai`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	_ = cmd.PersistentFlags().MarkHidden("db-dir") //nolint:errcheck // flag defined above

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewPlatformsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	cmd := NewRootCmd()
	cmd.SetArgs(rewriteArgs(cmd, os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rewriteArgs turns "docscrape <url> ..." into "docscrape scrape <url> ...".
// Anything that is a subcommand, a flag or not URL-like is left alone.
func rewriteArgs(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	if strings.HasPrefix(first, "-") || isSubcommand(root, first) {
		return args
	}
	if strings.HasPrefix(first, "http://") || strings.HasPrefix(first, "https://") || strings.Contains(first, ".") {
		return append([]string{"scrape"}, args...)
	}
	return args
}

func isSubcommand(root *cobra.Command, name string) bool {
	if name == "help" || name == "completion" {
		return true
	}
	for _, sub := range root.Commands() {
		if sub.Name() == name || slices.Contains(sub.Aliases, name) {
			return true
		}
	}
	return false
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
