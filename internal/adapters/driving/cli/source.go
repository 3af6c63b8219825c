package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage document sources",
	Long: `Add, list, and remove Notion sources.

A source selects the pages to sync: explicit root pages and databases, or
every page shared with the integration that matches a title search.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [connector-type]",
	Short: "Add a new source",
	Long: `Add a new source. The connector type defaults to "notion".

Examples:
  # Everything shared with the integration
  notion-nlp source add --name Wiki

  # A page tree and a database
  notion-nlp source add --root-pages https://www.notion.so/Team-Wiki-1c2f... \
    --databases 7a9e... --max-depth 2

  # Store the integration token straight away
  notion-nlp source add --name Wiki --token secret_xxx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

var connectorCmd = &cobra.Command{
	Use:   "connector",
	Short: "Show available connectors",
}

var connectorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connector types and their options",
	RunE:  runConnectorList,
}

// Flags for source add.
var (
	sourceAddID              string
	sourceAddName            string
	sourceAddRootPages       string
	sourceAddDatabases       string
	sourceAddQuery           string
	sourceAddMaxDepth        int
	sourceAddIncludeArchived bool
	sourceAddToken           string
	sourceAddConfig          []string
)

func init() {
	f := sourceAddCmd.Flags()
	f.StringVar(&sourceAddID, "id", "", "Source ID (generated when empty)")
	f.StringVarP(&sourceAddName, "name", "n", "", "Display name")
	f.StringVar(&sourceAddRootPages, "root-pages", "", "Comma-separated root page IDs or URLs")
	f.StringVar(&sourceAddDatabases, "databases", "", "Comma-separated database IDs or URLs")
	f.StringVarP(&sourceAddQuery, "query", "q", "", "Title search used when no roots are given")
	f.IntVar(&sourceAddMaxDepth, "max-depth", 0, "Block nesting depth (default from notion.max_depth)")
	f.BoolVar(&sourceAddIncludeArchived, "include-archived", false, "Keep archived pages")
	f.StringVar(&sourceAddToken, "token", "", "Integration token to store for the source")
	f.StringArrayVarP(&sourceAddConfig, "config", "c", nil, "Extra connector config as key=value")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)

	connectorCmd.AddCommand(connectorListCmd)
	rootCmd.AddCommand(connectorCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	connectorType := "notion"
	if len(args) > 0 {
		connectorType = args[0]
	}

	config, err := sourceAddConfigMap(cmd)
	if err != nil {
		return err
	}

	source, err := sourceService.Add(cmd.Context(), domain.Source{
		ID:     sourceAddID,
		Type:   connectorType,
		Name:   sourceAddName,
		Config: config,
	})
	if err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}
	cmd.Printf("Added source: %s (%s)\n", source.ID, source.Name)

	if sourceAddToken == "" {
		cmd.Printf("Store a token with: notion-nlp auth set-token %s\n", source.ID)
		return nil
	}
	if authService == nil {
		return errors.New("auth service not configured")
	}
	if err := authService.SetToken(cmd.Context(), source.ID, sourceAddToken); err != nil {
		return fmt.Errorf("source added but token was rejected: %w", err)
	}
	cmd.Println("Token stored.")
	return nil
}

// sourceAddConfigMap collects connector config from the flags. -c entries
// override the named flags.
func sourceAddConfigMap(cmd *cobra.Command) (map[string]string, error) {
	config := make(map[string]string)
	if sourceAddRootPages != "" {
		config["root_page_ids"] = sourceAddRootPages
	}
	if sourceAddDatabases != "" {
		config["database_ids"] = sourceAddDatabases
	}
	if sourceAddQuery != "" {
		config["query"] = sourceAddQuery
	}

	switch {
	case cmd.Flags().Changed("max-depth"):
		if sourceAddMaxDepth < 1 {
			return nil, fmt.Errorf("--max-depth must be at least 1, got %d", sourceAddMaxDepth)
		}
		config["max_depth"] = strconv.Itoa(sourceAddMaxDepth)
	case configStore != nil && configStore.GetInt("notion.max_depth") > 0:
		config["max_depth"] = strconv.Itoa(configStore.GetInt("notion.max_depth"))
	}
	if sourceAddIncludeArchived {
		config["include_archived"] = "true"
	}

	for _, kv := range sourceAddConfig {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid config %q: expected key=value", kv)
		}
		config[key] = strings.TrimSpace(value)
	}
	return config, nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		s := &sources[i]
		cmd.Printf("  %s\n", s.ID)
		cmd.Printf("    Name: %s\n", s.Name)
		cmd.Printf("    Type: %s\n", s.Type)
		if authService != nil {
			method, workspace, err := authService.Status(cmd.Context(), s.ID)
			if err == nil {
				if workspace != "" {
					cmd.Printf("    Auth: %s (%s)\n", method, workspace)
				} else {
					cmd.Printf("    Auth: %s\n", method)
				}
			}
		}
		keys := make([]string, 0, len(s.Config))
		for k := range s.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("    %s: %s\n", k, s.Config[k])
		}
		cmd.Println()
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	cmd.Printf("Removed source: %s\n", args[0])
	return nil
}

func runConnectorList(cmd *cobra.Command, _ []string) error {
	if connectorRegistry == nil {
		return errors.New("connector registry not configured")
	}

	cmd.Println("Available connectors:")
	for _, ct := range connectorRegistry.List() {
		cmd.Printf("\n  %s - %s\n", ct.ID, ct.Name)
		if ct.Description != "" {
			cmd.Printf("    %s\n", ct.Description)
		}
		for _, k := range ct.ConfigKeys {
			line := fmt.Sprintf("    %-18s %s", k.Key, k.Description)
			if k.Required {
				line += " (required)"
			}
			if k.Default != "" {
				line += fmt.Sprintf(" [default: %s]", k.Default)
			}
			cmd.Println(line)
		}
	}
	return nil
}
