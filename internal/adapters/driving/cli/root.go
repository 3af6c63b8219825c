// Package cli implements the notion-nlp command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/app"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Services used by the commands. They are set from the wired App before a
// command runs, or directly by tests.
var (
	sourceService     driving.SourceService
	connectorRegistry driving.ConnectorRegistry
	documentService   driving.DocumentService
	syncOrchestrator  driving.SyncOrchestrator
	authService       driving.AuthService
	analysisService   driving.AnalysisService
	configStore       driven.ConfigStore
)

// Global flags.
var (
	verbose    bool
	configPath string
	dataDir    string
)

// newApp builds the services for the global flags. Nil leaves the
// package services untouched.
var newApp = app.New

// current is the App opened for the running command.
var current *app.App

var rootCmd = &cobra.Command{
	Use:   "notion-nlp",
	Short: "Analyse, organise and tag Notion pages",
	Long: `notion-nlp syncs pages from Notion workspaces, runs text analysis over
them, and organises the results as a page tree with inherited tags.

Get started:
  notion-nlp source add --root-pages <page-url>
  notion-nlp auth set-token <source-id>
  notion-nlp sync
  notion-nlp document tree`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.notion-nlp/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.notion-nlp/data)")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	defer func() { _ = teardown() }()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if newApp == nil || current != nil || !needsServices(cmd) {
		return nil
	}

	a, err := newApp(cmd.Context(), app.Options{ConfigPath: configPath, DataDir: dataDir})
	if err != nil {
		return err
	}
	useApp(a)
	return nil
}

func teardown() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

func useApp(a *app.App) {
	current = a
	sourceService = a.Sources
	connectorRegistry = a.Connectors
	documentService = a.Documents
	syncOrchestrator = a.Sync
	authService = a.Auth
	analysisService = a.Analysis
	configStore = a.Config
}

// needsServices reports whether cmd touches the stores.
func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", "schema", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return cmd.Runnable()
}
