package cli

import (
	"errors"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

var (
	documentsJSON bool
	statsJSON     bool
	clearYes      bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "List indexed documents",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every vector and index entry",
	Long: `Empties the knowledge base. The next refresh re-indexes every document.
Pass --yes to confirm.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "confirm removal")
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	docs, err := knowledgeBase.Documents(cmd.Context())
	if err != nil {
		return fail("listing documents", err)
	}
	if documentsJSON {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'reqlens refresh' first.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %-14s %4d chunks  %s  %s\n", d.Type, d.ChunkCount, formatTime(d.IndexedAt), d.Name)
		if d.Name != d.DocumentID {
			cmd.Printf("  %-14s %s\n", "", d.DocumentID)
		}
	}
	cmd.Printf("\n%d documents\n", len(docs))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	stats, err := knowledgeBase.Stats(cmd.Context())
	if err != nil {
		return fail("stats", err)
	}
	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Documents:     %d\n", stats.Documents)
	cmd.Printf("Vectors:       %d (dimension %d)\n", stats.Store.TotalVectors, stats.Store.Dimension)
	cmd.Printf("Metadata:      %d entries\n", stats.Store.MetadataEntries)
	cmd.Printf("Storage:       %d bytes\n", stats.Store.StorageSizeBytes)
	cmd.Printf("Last refresh:  %s\n", formatTime(stats.LastRefresh))

	types := make([]domain.DocumentType, 0, len(stats.ByType))
	for t := range stats.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		cmd.Printf("  %-14s %d\n", t, stats.ByType[t])
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}
	if !clearYes {
		return errors.New("refusing to clear without --yes")
	}
	if err := knowledgeBase.Clear(cmd.Context()); err != nil {
		return fail("clear", err)
	}
	cmd.Println("Knowledge base cleared.")
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
