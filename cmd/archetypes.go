package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/gitval/internal/output"
)

var archetypesFormat string

var archetypesCmd = &cobra.Command{
	Use:   "archetypes",
	Short: "List the developer archetypes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.RenderArchetypes(archetypesFormat)
	},
}

func init() {
	archetypesCmd.Flags().StringVarP(&archetypesFormat, "format", "f", output.FormatTable, "Output format: table, json")
	rootCmd.AddCommand(archetypesCmd)
}
