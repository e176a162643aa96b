package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewFunctionsCmd creates the `tql functions` command: registry
// introspection, listing every registered function and alias.
func NewFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List registered functions and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := newConfiguredRegistry()

			bold := color.New(color.Bold)
			for _, name := range reg.FunctionNames() {
				bold.Print(name)
				if desc := reg.Description(name); desc != "" {
					fmt.Printf(" - %s", desc)
				}
				fmt.Println()
			}

			aliases := reg.Aliases()
			if len(aliases) == 0 {
				return nil
			}

			names := make([]string, 0, len(aliases))
			for a := range aliases {
				names = append(names, a)
			}
			sort.Strings(names)

			fmt.Println()
			color.New(color.Underline).Println("aliases")
			for _, a := range names {
				fmt.Printf("%s -> %s\n", a, aliases[a])
			}
			return nil
		},
	}
}
