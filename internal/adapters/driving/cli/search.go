package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

var (
	searchTopK      int
	searchThreshold float64
	searchJSON      bool

	multiTopK      int
	multiThreshold float64
	multiJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the most similar chunks.
Each result carries its document, character range, line and page.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var multiSearchCmd = &cobra.Command{
	Use:   "multi-search [query...]",
	Short: "Run several queries and merge the results",
	Long: `Runs every query, merges the hits and keeps the best score for chunks
found more than once. The merged list is cut to --top-k.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMultiSearch,
}

func init() {
	addSearchFlags(searchCmd, &searchTopK, &searchThreshold, &searchJSON)
	addSearchFlags(multiSearchCmd, &multiTopK, &multiThreshold, &multiJSON)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(multiSearchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	results, err := knowledgeBase.Search(cmd.Context(), args[0], searchOptions(cmd, searchTopK, searchThreshold))
	if err != nil {
		return fail("search", err)
	}
	if searchJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, results)
	return nil
}

func runMultiSearch(cmd *cobra.Command, args []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	results, err := knowledgeBase.MultiSearch(cmd.Context(), args, searchOptions(cmd, multiTopK, multiThreshold))
	if err != nil {
		return fail("multi-search", err)
	}
	if multiJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, results)
	return nil
}

func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		name := r.DocumentName
		if name == "" {
			name = r.DocumentID
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, name, r.Score)
		loc := ""
		if r.PageNumber > 0 {
			loc = fmt.Sprintf(" page %d", r.PageNumber)
		}
		cmd.Printf("      %s chars %d-%d, line %d%s\n", r.DocumentID, r.CharStart, r.CharEnd, r.LineNumber, loc)
		cmd.Printf("      %s\n", snippet(r.Text, 160))
		cmd.Println()
	}
}

// snippet collapses whitespace and cuts text to n runes.
func snippet(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
