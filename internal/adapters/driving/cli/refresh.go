package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

var (
	refreshForce bool
	refreshJSON  bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Index new and changed documents",
	Long: `Lists every configured source, re-indexes documents whose change marker
moved, and drops documents that disappeared. Use --force to re-index everything.

A failing document is reported and keeps its previous chunks.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "re-index unchanged documents too")
	refreshCmd.Flags().BoolVar(&refreshJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	if !refreshJSON {
		cmd.Println("Refreshing knowledge base...")
	}
	report, err := knowledgeBase.Refresh(cmd.Context(), refreshForce)
	if report != nil {
		if refreshJSON {
			if jerr := printJSON(cmd, report); jerr != nil {
				return jerr
			}
		} else {
			printReport(cmd, report)
		}
	}
	if err != nil {
		return fail("refresh", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *domain.RefreshReport) {
	for _, id := range r.Updated {
		cmd.Printf("  updated  %s\n", id)
	}
	for _, id := range r.Removed {
		cmd.Printf("  removed  %s\n", id)
	}
	for _, f := range r.Failed {
		cmd.Printf("  failed   %s (%s): %s\n", f.DocumentID, f.Stage, f.Error)
	}
	if r.Interrupted != "" {
		cmd.Printf("  stopped  %s (interrupted)\n", r.Interrupted)
	}
	cmd.Printf("\n%d updated, %d removed, %d unchanged, %d failed (%d chunks) in %s\n",
		len(r.Updated), len(r.Removed), r.Unchanged, len(r.Failed), r.Chunks, r.Duration.Round(time.Millisecond))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
