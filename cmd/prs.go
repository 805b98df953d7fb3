package cmd

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/daemon"
	"github.com/joescharf/gitval/internal/output"
)

var prsFormat string

var prsCmd = &cobra.Command{
	Use:   "prs [repo]",
	Short: "List the merged pull requests that would be graded",
	Long: `Fetch the most recently merged pull requests of a repository without
grading them. Use --format json to save the records for 'gitval score'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), daemon.ShutdownSignals()...)
		defer stop()
		return prsRun(ctx, target)
	},
}

func init() {
	prsCmd.Flags().StringVarP(&prsFormat, "format", "f", output.FormatTable, "Output format: table, json")
	rootCmd.AddCommand(prsCmd)
}

func prsRun(ctx context.Context, target string) error {
	repo, err := repoArg(target)
	if err != nil {
		return err
	}
	f, err := newFetcher()
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would fetch merged pull requests of %s", repo)
		return nil
	}

	res, err := analysis.NewService(f, nil, nil).FetchPullRequests(ctx, repo)
	if err != nil {
		return &failure{msg: res.Error, err: err}
	}
	return ui.RenderPullRequests(res, prsFormat)
}
