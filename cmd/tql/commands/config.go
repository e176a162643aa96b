package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orhun/tql/internal/registryconfig"
)

// NewConfigCmd creates the `tql config` command group: schema and init.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the .tql.yml extensibility config",
	}

	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate JSON Schema for .tql.yml files",
		Long: `Generate a JSON Schema for IDE autocomplete and validation of .tql.yml
extensibility configuration files.

  # yaml-language-server: $schema=https://raw.githubusercontent.com/orhun/tql/main/schema.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaBytes, err := registryconfig.GenerateSchema()
			if err != nil {
				return fmt.Errorf("generating schema: %w", err)
			}

			if outputFile == "" {
				fmt.Println(string(schemaBytes))
				return nil
			}

			if dir := filepath.Dir(outputFile); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating directory %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(outputFile, schemaBytes, 0o644); err != nil {
				return fmt.Errorf("writing schema: %w", err)
			}
			fmt.Printf("JSON Schema written to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter .tql.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ".tql.yml"
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("%s already exists\n", path)
				return nil
			}
			if err := registryconfig.CreateDefaultFile(path); err != nil {
				return fmt.Errorf("creating config file: %w", err)
			}
			fmt.Printf("created %s\n", path)
			return nil
		},
	}
}
