package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/dataqa/internal/catalog"
	"github.com/jonathan/dataqa/internal/observability"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List registered dataset, converter, rule, LLM and prompt types",
	RunE:  runTypes,
}

var typesJSON bool

func init() {
	typesCmd.Flags().BoolVar(&typesJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	if typesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Describe())
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintRegistry(cat.Describe())
	return nil
}
