package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tql",
		Short: "A jq-like query engine for Markdown documents",
		Long: `tql parses a Markdown document into headings, code blocks, links,
images, tables, lists, blockquotes, paragraphs and front matter, then runs a
jq-flavored query over that structure.`,
	}

	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewTreeCmd())
	cmd.AddCommand(NewFunctionsCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
