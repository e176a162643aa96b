package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orhun/tql/internal/mdmodel"
	"github.com/orhun/tql/internal/query"
	"github.com/orhun/tql/internal/registryconfig"
)

// NewQueryCmd creates the `tql query <file> <query>` command.
func NewQueryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query <file.md> <query>",
		Short: "Run a tql query against a Markdown file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args[0], args[1], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "plain", "output format: plain|json|json-pretty|jsonl|md|tree")
	return cmd
}

func runQuery(path, queryStr, formatStr string) error {
	outFmt, err := query.ParseOutputFormat(formatStr)
	if err != nil {
		return err
	}

	parser := mdmodel.New()
	doc, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	reg := newConfiguredRegistry()
	engine := query.NewEngineWithRegistry(doc, reg)

	q, qerr := query.ParseQuery(queryStr)
	if qerr != nil {
		fmt.Fprintln(os.Stderr, qerr.Format())
		os.Exit(1)
	}

	values, qerr := engine.Execute(q)
	if qerr != nil {
		fmt.Fprintln(os.Stderr, qerr.Format())
		os.Exit(1)
	}

	fmt.Println(query.FormatOutput(values, outFmt))
	return nil
}

// newConfiguredRegistry builds the default registry, layering in a
// discovered `.tql.yml` when one is present, so CLI invocations always
// honor the same extensibility config as library callers.
func newConfiguredRegistry() *query.Registry {
	reg := query.NewRegistryWithBuiltins()

	cwd, err := os.Getwd()
	if err != nil {
		return reg
	}
	path, err := registryconfig.Find(cwd)
	if err != nil {
		return reg
	}
	cfg, err := registryconfig.Load(path)
	if err != nil {
		return reg
	}
	if err := registryconfig.Apply(cfg, reg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
	}
	return reg
}
