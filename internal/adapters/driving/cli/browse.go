package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/tui"
)

// isTerminal reports whether stdout is a terminal. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"tui"},
	Short:   "Browse the knowledge base interactively",
	Long: `Launch the interactive terminal browser.

Search the knowledge base, open a hit to read the text around it and list
the indexed documents. Separate queries with ";" to merge several searches.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Open
  +/-      - Widen or narrow the context window
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) (err error) {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}
	if err := requireResolver(); err != nil {
		return err
	}
	if !isTerminal() {
		return errors.New("browse needs an interactive terminal")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("browser panicked: %v", r)
		}
	}()

	ports := tui.NewPorts(knowledgeBase, resolver)
	ports.SearchOptions = searchDefaults

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}
