package main

import (
	"fmt"

	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/log"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// NewPlatformsCmd creates the platforms command.
func NewPlatformsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List known documentation platforms",
		Long: `List the built-in platform adapters and those defined in the configuration
file, with the discovery strategy each one uses.

URLs that match no platform are scraped with the generic adapter
(sitemap.xml, falling back to link crawling).`,
		Args: cobra.NoArgs,
		RunE: runPlatformsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Path to configuration file (default: .docscrape)")

	return cmd
}

// definer is implemented by adapters built from a platform definition.
type definer interface {
	Definition() config.PlatformConfig
}

// runPlatformsCmd executes the platforms command.
func runPlatformsCmd(cmd *cobra.Command, _ []string) error {
	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	registry := adapter.NewDefaultRegistry(adapter.WithLogger(log.Discard()))

	configPath := config.FindConfigFile(configFlag)
	if configPath == "" && configFlag != "" {
		return fmt.Errorf("configuration file not found: %s", configFlag)
	}
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration file: %w", err)
		}
		if err := registry.RegisterPlatforms(file.Platforms); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	tbl := table.New("Platform", "Base URL", "Discovery", "Fallback").WithWriter(cmd.OutOrStdout())
	for _, name := range registry.Names() {
		a, err := registry.Get(name, "")
		if err != nil {
			return err
		}
		discovery, fallback := "-", "-"
		if d, ok := a.(definer); ok {
			def := d.Definition()
			if def.Discovery != "" {
				discovery = def.Discovery
			}
			if def.Fallback != "" {
				fallback = def.Fallback
			}
		}
		tbl.AddRow(name, a.BaseURL(), discovery, fallback)
	}
	tbl.Print()

	return nil
}
