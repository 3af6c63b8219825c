package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
)

// progressInterval is how often sync progress is polled.
var progressInterval = 500 * time.Millisecond

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Synchronise pages from Notion",
	Long: `Fetches pages from Notion, analyses and tags them, and stores the result.
If a source ID is provided, only that source is synchronised.
Otherwise, all sources are synchronised.

The first sync of a source fetches everything; later syncs only fetch
pages edited since the previous one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		id := args[0]
		cmd.Printf("Synchronising source: %s...\n", id)
		if err := syncWithProgress(ctx, cmd, id); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		cmd.Printf("Source %s synchronised successfully.\n", id)
		return nil
	}

	cmd.Println("Synchronising all sources...")
	err := syncOrchestrator.SyncAll(ctx)
	printSyncSummary(ctx, cmd)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	cmd.Println("All sources synchronised successfully.")
	return nil
}

// syncWithProgress runs the sync in the background and polls its status.
// The running count is only redrawn on a terminal.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, sourceID string) error {
	done := make(chan error, 1)
	go func() {
		done <- syncOrchestrator.Sync(ctx, sourceID)
	}()

	live := isTerminal(cmd)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	shown := 0
	for {
		select {
		case err := <-done:
			if st, _ := syncOrchestrator.Status(ctx, sourceID); st != nil &&
				(st.DocumentsProcessed > 0 || st.DocumentsDeleted > 0) {
				if live {
					cmd.Print("\r")
				}
				cmd.Println(syncCounts(st))
			}
			return err
		case <-ticker.C:
			if !live {
				continue
			}
			if st, _ := syncOrchestrator.Status(ctx, sourceID); st != nil && st.DocumentsProcessed > shown {
				shown = st.DocumentsProcessed
				cmd.Printf("\rProcessing... %d documents", shown)
			}
		}
	}
}

// printSyncSummary prints the counts of each source after a SyncAll.
func printSyncSummary(ctx context.Context, cmd *cobra.Command) {
	if sourceService == nil {
		return
	}
	sources, err := sourceService.List(ctx)
	if err != nil {
		return
	}
	for _, src := range sources {
		st, err := syncOrchestrator.Status(ctx, src.ID)
		if err != nil || st == nil {
			continue
		}
		cmd.Printf("  %s (%s): %s\n", src.Name, src.ID, syncCounts(st))
	}
}

func syncCounts(st *driving.SyncStatus) string {
	return fmt.Sprintf("Processed %d documents, deleted %d (%d errors)",
		st.DocumentsProcessed, st.DocumentsDeleted, st.ErrorCount)
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
