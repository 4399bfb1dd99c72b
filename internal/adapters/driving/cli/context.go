package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	contextContent string
	contextFile    string
	contextJSON    bool
)

var contextCmd = &cobra.Command{
	Use:   "context [section]",
	Short: "Retrieve reference context for a document section",
	Long: `Retrieves the reference passages a debt analysis needs for one section
of the document under review. The section text comes from --content,
from --file, or from stdin when --file is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVarP(&contextContent, "content", "c", "", "section text")
	contextCmd.Flags().StringVar(&contextFile, "file", "", `read section text from a file ("-" for stdin)`)
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output results as JSON")
	contextCmd.MarkFlagsMutuallyExclusive("content", "file")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}

	content, err := sectionContent(cmd)
	if err != nil {
		return err
	}

	results, err := knowledgeBase.SectionContext(cmd.Context(), args[0], content)
	if err != nil {
		return fail("context retrieval", err)
	}
	if contextJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, results)
	return nil
}

func sectionContent(cmd *cobra.Command) (string, error) {
	switch contextFile {
	case "":
		if contextContent == "" {
			return "", errors.New("section text required: use --content or --file")
		}
		return contextContent, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	default:
		data, err := os.ReadFile(contextFile)
		return string(data), err
	}
}
