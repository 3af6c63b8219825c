package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Browse synced documents",
	Long:  `List, view, and analyse synced Notion pages and their hierarchy.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list [source-id]",
	Short: "List documents, optionally for one source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDetailsCmd = &cobra.Command{
	Use:   "details [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDetails,
}

var documentTreeCmd = &cobra.Command{
	Use:   "tree [source-id]",
	Short: "Show the page hierarchy",
	Long: `Show the page hierarchy of a source, or of every source when no ID
is given. Use --root to show only the pages below one document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocumentTree,
}

var documentOutlineCmd = &cobra.Command{
	Use:   "outline [doc-id]",
	Short: "Show the heading outline of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOutline,
}

var documentTagsCmd = &cobra.Command{
	Use:   "tags [doc-id]",
	Short: "Show document tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentTags,
}

var documentAnalyzeCmd = &cobra.Command{
	Use:   "analyze [doc-id]",
	Short: "Re-run text analysis on a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentAnalyze,
}

var (
	treeRoot      string
	tagsInherited bool
)

func init() {
	documentTreeCmd.Flags().StringVar(&treeRoot, "root", "", "Document ID to start the tree from")
	documentTagsCmd.Flags().BoolVarP(&tagsInherited, "inherited", "i", false, "Include tags inherited from parent pages")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDetailsCmd)
	documentCmd.AddCommand(documentTreeCmd)
	documentCmd.AddCommand(documentOutlineCmd)
	documentCmd.AddCommand(documentTagsCmd)
	documentCmd.AddCommand(documentAnalyzeCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	var sourceID string
	if len(args) > 0 {
		sourceID = args[0]
	}

	var (
		docs []domain.Document
		err  error
	)
	if sourceID != "" {
		docs, err = documentService.ListBySource(ctx, sourceID)
	} else {
		docs, err = documentService.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		if sourceID != "" {
			cmd.Printf("No documents found for source: %s\n", sourceID)
		} else {
			cmd.Println("No documents found. Run 'notion-nlp sync' first.")
		}
		return nil
	}

	if sourceID != "" {
		cmd.Printf("Documents for source %s:\n\n", sourceID)
	} else {
		cmd.Print("Documents:\n\n")
	}
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		if docs[i].URI != "" {
			cmd.Printf("    URI: %s\n", docs[i].URI)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Source:   %s\n", doc.SourceID)
	cmd.Printf("  URI:      %s\n", doc.URI)
	if doc.ParentID != nil {
		cmd.Printf("  Parent:   %s\n", *doc.ParentID)
	}
	cmd.Printf("  Blocks:   %d\n", len(doc.Blocks))
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:     %s\n", tagNames(doc.Tags))
	}
	if doc.Analysis != nil {
		cmd.Println()
		printAnalysis(cmd, doc.Analysis)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentDetails(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	details, err := documentService.GetDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document details: %w", err)
	}

	cmd.Printf("Document Details: %s\n\n", details.ID)
	cmd.Printf("  Title:       %s\n", details.Title)
	cmd.Printf("  Source:      %s (%s)\n", details.SourceName, details.SourceType)
	cmd.Printf("  Source ID:   %s\n", details.SourceID)
	cmd.Printf("  URI:         %s\n", details.URI)
	if details.URL != "" {
		cmd.Printf("  URL:         %s\n", details.URL)
	}
	if len(details.Path) > 0 {
		cmd.Printf("  Path:        %s\n", strings.Join(details.Path, " / "))
	}
	cmd.Printf("  Blocks:      %d\n", details.BlockCount)
	cmd.Printf("  Chunks:      %d\n", details.ChunkCount)
	cmd.Printf("  Tags:        %d\n", details.TagCount)
	cmd.Printf("  Created:     %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:     %s\n", details.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(details.Metadata) > 0 {
		keys := make([]string, 0, len(details.Metadata))
		for k := range details.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("\n  Metadata:")
		for _, k := range keys {
			cmd.Printf("    %s: %s\n", k, details.Metadata[k])
		}
	}

	return nil
}

func runDocumentTree(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var sourceID string
	if len(args) > 0 {
		sourceID = args[0]
	}
	tree, err := documentService.Tree(cmd.Context(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	if tree.Len() == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	out, err := tree.Render(treeRoot)
	if err != nil {
		return fmt.Errorf("failed to render tree: %w", err)
	}
	cmd.Print(out)
	return nil
}

func runDocumentOutline(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	sections, err := documentService.Outline(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to build outline: %w", err)
	}
	if len(hierarchy.Headings(sections)) == 0 {
		cmd.Printf("%s has no headings.\n", doc.Title)
		return nil
	}

	cmd.Print(hierarchy.RenderOutline(doc.Title, sections))
	return nil
}

func runDocumentTags(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	tags, err := documentService.Tags(cmd.Context(), args[0], tagsInherited)
	if err != nil {
		return fmt.Errorf("failed to get tags: %w", err)
	}
	if len(tags) == 0 {
		cmd.Println("No tags.")
		return nil
	}

	printTags(cmd, tags)
	return nil
}

func runDocumentAnalyze(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	analysis, err := documentService.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to analyse document: %w", err)
	}

	cmd.Printf("Analysis of %s:\n\n", args[0])
	printAnalysis(cmd, analysis)
	return nil
}
