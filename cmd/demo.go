package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/gitval/internal/demo"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/output"
)

var (
	demoFormat string
	demoSort   string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show a sample assessment of a fictional team",
	Long:  "Render the built-in sample analysis. Needs no GitHub token or API key.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return demoRun()
	},
}

func init() {
	demoCmd.Flags().StringVarP(&demoFormat, "format", "f", output.FormatTable, "Output format: table, json, csv, markdown")
	demoCmd.Flags().StringVarP(&demoSort, "sort", "s", models.SortByGPA, "Developer order: gpa, risk, commits")
	rootCmd.AddCommand(demoCmd)
}

func demoRun() error {
	if err := checkSort(demoSort); err != nil {
		return err
	}
	res := demo.Sample()
	models.SortDevelopers(res.Developers, demoSort)
	return ui.RenderAnalysis(res, demoFormat)
}
