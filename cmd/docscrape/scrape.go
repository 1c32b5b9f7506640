package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/engine"
	"github.com/nao1215/docscrape/internal/log"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/report"
	"github.com/nao1215/docscrape/internal/storage"
	"github.com/spf13/cobra"
)

// errInterrupted is returned when a crawl is stopped by a signal.
var errInterrupted = errors.New("scrape interrupted")

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a documentation site to Markdown",
		Long: `Scrape discovers every page of a documentation site and writes each one as a
Markdown file with YAML front matter.

Pages are discovered through the platform's preferred strategy (sitemap.xml,
llms.txt or link crawling) and fetched one at a time. Progress is written to
_manifest.json in the output directory, so an interrupted scrape can be
continued with --resume.

Examples:
  # Scrape a site into ./pipecat
  docscrape scrape https://docs.pipecat.ai

  # Limit pages and slow down
  docscrape scrape docs.example.com -m 50 -d 1.5

  # Only API reference pages
  docscrape scrape https://docs.example.com -i '/api/' -e '/api/v1/'

  # Continue an interrupted scrape
  docscrape scrape https://docs.example.com -r`,
		Args: cobra.ExactArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output directory (default: derived from the URL)")
	cmd.Flags().IntP("max-pages", "m", config.DefaultMaxPages,
		"Maximum number of pages to scrape (0 = unlimited)")
	cmd.Flags().Float64P("delay", "d", config.DefaultRequestDelay.Seconds(),
		"Delay between requests in seconds")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume from the manifest in the output directory")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print errors")
	cmd.Flags().StringArrayP("include", "i", nil,
		"Only scrape URLs matching this regex (repeatable)")
	cmd.Flags().StringArrayP("exclude", "e", nil,
		"Skip URLs matching this regex (repeatable)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Number of fetch attempts per URL")
	cmd.Flags().StringP("platform", "p", "",
		"Platform adapter to use (default: detected from the URL)")
	cmd.Flags().StringP("config", "c", "",
		"Path to configuration file (default: .docscrape)")
	cmd.Flags().Bool("json", false,
		"Print the run summary as JSON")
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")
	cmd.Flags().Bool("respect-robots", false,
		"Honor robots.txt when crawling links")
	cmd.Flags().String("user-agent", "",
		"User-Agent header sent with every request")

	return cmd
}

// scrapeOptions holds settings that only affect the command, not the crawl.
type scrapeOptions struct {
	platform string
	noDB     bool
	file     *config.File
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, opts, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), log.LevelFromFlags(cfg.Verbose, cfg.Quiet))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts, logger)
}

// buildConfig creates a ScrapeConfig from command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.ScrapeConfig, *scrapeOptions, error) {
	cfg := config.NewScrapeConfig()
	opts := &scrapeOptions{}
	flags := cmd.Flags()

	cfg.BaseURL = config.NormalizeBaseURL(args[0])

	var err error
	if cfg.OutputDir, err = flags.GetString("output"); err != nil {
		return nil, nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = config.DeriveOutputDir(cfg.BaseURL)
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, nil, err
	}
	if cfg.Resume, err = flags.GetBool("resume"); err != nil {
		return nil, nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.IncludePatterns, err = flags.GetStringArray("include"); err != nil {
		return nil, nil, err
	}
	if cfg.ExcludePatterns, err = flags.GetStringArray("exclude"); err != nil {
		return nil, nil, err
	}
	if cfg.JSONOutput, err = flags.GetBool("json"); err != nil {
		return nil, nil, err
	}
	if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
		return nil, nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, nil, err
	}
	if opts.platform, err = flags.GetString("platform"); err != nil {
		return nil, nil, err
	}
	if opts.noDB, err = flags.GetBool("no-db"); err != nil {
		return nil, nil, err
	}
	cfg.DBDir = getDBDir(cmd)

	// Flags left at their defaults may still be overridden by the config file.
	if flags.Changed("delay") {
		seconds, err := flags.GetFloat64("delay")
		if err != nil {
			return nil, nil, err
		}
		if seconds < 0 {
			return nil, nil, fmt.Errorf("invalid delay %s: must be non-negative", strconv.FormatFloat(seconds, 'f', -1, 64))
		}
		cfg.RequestDelay = time.Duration(seconds * float64(time.Second))
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.MaxRetries, err = flags.GetInt("retries"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, nil, err
		}
	}

	// Load configuration file
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" && cfg.ConfigFilePath != "" {
		return nil, nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	if configPath != "" {
		opts.file, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load configuration file: %w", err)
		}
	} else {
		opts.file = config.EmptyFile()
	}

	cfg.ApplySite(opts.file.GetSiteConfig(cfg.Host()))

	return cfg, opts, nil
}

// runScrape resolves the adapter, wires storage and runs the crawl.
func runScrape(ctx context.Context, stdout, stderr io.Writer, cfg *config.ScrapeConfig, opts *scrapeOptions, logger *slog.Logger) error {
	registry := adapter.NewDefaultRegistry(adapter.WithLogger(logger))
	if err := registry.RegisterPlatforms(opts.file.Platforms); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a, err := registry.Get(opts.platform, cfg.BaseURL)
	if err != nil {
		return err
	}
	cfg.Platform = a.Name()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var store storage.Backend = storage.NewFilesystem(storage.WithLogger(logger))
	if !opts.noDB && cfg.DBDir != "" {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, continuing without it", "error", err)
		} else {
			defer func() {
				if cerr := db.Close(); cerr != nil {
					logger.Warn("failed to close history database", "error", cerr)
				}
			}()
			store = storage.NewIndexed(store, db, cfg.BaseURL, logger)
		}
	}

	interactive := !cfg.Quiet && !cfg.JSONOutput
	if interactive {
		if err := report.WriteHeader(stdout, cfg.Platform, cfg.BaseURL, cfg.OutputDir, cfg.Resume); err != nil {
			return err
		}
	}

	crawlOpts := []engine.Option{engine.WithLogger(logger)}
	if interactive {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(stderr))
		s.Suffix = " Discovering pages..."
		s.Start()
		defer s.Stop()
		crawlOpts = append(crawlOpts, engine.WithProgress(spinnerProgress(s)))
	}

	manifest, err := engine.New(a, store, cfg, crawlOpts...).Crawl(ctx)
	if err != nil && manifest == nil {
		return err
	}
	interrupted := err != nil

	if interrupted && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if werr := writeResult(stdout, cfg, manifest); werr != nil {
		return werr
	}
	if indexed, ok := store.(*storage.Indexed); ok && !interrupted {
		logger.Debug("history updated", "changed_pages", indexed.Changed())
	}
	if interrupted {
		return errInterrupted
	}
	return nil
}

// spinnerProgress turns crawl events into spinner updates.
func spinnerProgress(s *spinner.Spinner) engine.ProgressFunc {
	return func(p engine.Progress) {
		var suffix string
		switch p.Kind {
		case engine.EventDiscovering:
			suffix = " Discovering pages..."
		case engine.EventDiscovered:
			suffix = fmt.Sprintf(" Found %d pages to scrape", p.Total)
		case engine.EventPage:
			suffix = fmt.Sprintf(" [%d/%d] %s", p.Done, p.Total, p.URL)
		}
		s.Lock()
		s.Suffix = suffix
		s.Unlock()
	}
}

// writeResult prints the run summary as text or JSON.
func writeResult(w io.Writer, cfg *config.ScrapeConfig, m *model.ScrapeManifest) error {
	var writer report.Writer
	switch {
	case cfg.JSONOutput:
		writer = report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.Quiet:
		return nil
	default:
		writer = report.NewSummaryWriter(w)
	}
	_, err := writer.Write(m)
	return err
}

// getDBDir retrieves the history database directory from the command or its root.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		dir, err = cmd.Root().PersistentFlags().GetString("db-dir")
		if err != nil {
			return config.XDGDataDir()
		}
	}
	return dir
}
