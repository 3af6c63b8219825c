package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/tagging"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Work with document tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with document counts",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

var tagFindCmd = &cobra.Command{
	Use:   "find [tag]",
	Short: "List documents carrying a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagFind,
}

var tagRetagCmd = &cobra.Command{
	Use:   "retag [doc-id]",
	Short: "Re-run the tagger on a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRetag,
}

var tagSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the tagging rules file",
	Long: `Print the JSON Schema of the file named by tagging.rules_file, for
editors that validate YAML or TOML against a schema.`,
	Args: cobra.NoArgs,
	RunE: runTagSchema,
}

func init() {
	tagCmd.AddCommand(tagSchemaCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagFindCmd)
	tagCmd.AddCommand(tagRetagCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	counts, err := documentService.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	if len(counts) == 0 {
		cmd.Println("No tags.")
		return nil
	}

	cmd.Println("Tags:")
	for _, c := range counts {
		cmd.Printf("  %-24s %-24s %d\n", c.Slug, c.Name, c.Documents)
	}
	return nil
}

func runTagFind(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.FindByTag(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to find documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Printf("No documents tagged %q.\n", args[0])
		return nil
	}

	cmd.Printf("Documents tagged %q:\n", args[0])
	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, docs[i].Title)
	}
	return nil
}

func runTagRetag(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	tags, err := documentService.Retag(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to retag document: %w", err)
	}

	cmd.Printf("Retagged %s with %d tags.\n", args[0], len(tags))
	printTags(cmd, tags)
	return nil
}

func runTagSchema(cmd *cobra.Command, _ []string) error {
	schema, err := tagging.RulesSchema()
	if err != nil {
		return err
	}
	cmd.Println(string(schema))
	return nil
}
