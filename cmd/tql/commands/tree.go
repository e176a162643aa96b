package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/query"
)

// NewTreeCmd creates the `tql tree <file>` command, a shorthand for
// `tql query <file> . --format tree`.
func NewTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file.md>",
		Short: "Print the document's heading tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := mdmodel.New()
			doc, err := parser.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			reg := newConfiguredRegistry()
			engine := query.NewEngineWithRegistry(doc, reg)

			q, qerr := query.ParseQuery(".h")
			if qerr != nil {
				return fmt.Errorf("building tree query: %w", qerr)
			}
			values, qerr := engine.Execute(q)
			if qerr != nil {
				return fmt.Errorf("running tree query: %w", qerr)
			}

			fmt.Println(query.FormatOutput(values, query.FormatTree))
			return nil
		},
	}
}
