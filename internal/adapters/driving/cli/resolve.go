package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

// DefaultResolveContext is the characters shown either side of the range.
const DefaultResolveContext = 200

var (
	resolveBefore int
	resolveAfter  int
	resolveJSON   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [doc-id] [start] [end]",
	Short: "Show the source text around a character range",
	Long: `Resolves a character range of an indexed document back to its text,
with surrounding context. Ranges outside the document are clamped.
The requested range is printed between » and «.

A negative offset would be read as a flag, so put flags first and pass
the positional arguments after --.

Examples:
  reqlens resolve specs/security.md 120 161
  reqlens resolve --before 50 -- specs/security.md -50 100`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().IntVarP(&resolveBefore, "before", "b", DefaultResolveContext, "characters of context before the range")
	resolveCmd.Flags().IntVarP(&resolveAfter, "after", "a", DefaultResolveContext, "characters of context after the range")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output the window as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := requireResolver(); err != nil {
		return err
	}

	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid start %q: %w", args[1], err)
	}
	end, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid end %q: %w", args[2], err)
	}

	w, err := resolver.Resolve(cmd.Context(), domain.ResolveRequest{
		DocumentID: args[0],
		CharStart:  start,
		CharEnd:    end,
		Before:     resolveBefore,
		After:      resolveAfter,
	})
	if err != nil {
		return fail("resolve", err)
	}

	if resolveJSON {
		return printJSON(cmd, struct {
			*domain.ResolvedWindow
			Highlighted string `json:"highlighted"`
		}{w, w.Highlighted()})
	}

	loc := fmt.Sprintf("line %d", w.LineNumber)
	if w.PageNumber > 0 {
		loc += fmt.Sprintf(", page %d", w.PageNumber)
	}
	cmd.Printf("%s chars %d-%d (%s)\n\n", w.DocumentID, w.WindowStart, w.WindowEnd, loc)
	cmd.Println(w.WindowText[:w.RelativeStart] + "»" + w.Highlighted() + "«" + w.WindowText[w.RelativeEnd:])
	return nil
}
