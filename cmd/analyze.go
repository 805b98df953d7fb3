package cmd

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/daemon"
	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/output"
)

var (
	analyzeFormat string
	analyzeSort   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo]",
	Short: "Grade the authors of a repository's merged pull requests",
	Long: `Fetch the most recently merged pull requests of a GitHub repository,
grade each author with the configured language model, and print the
ranked assessment.

The repository may be a URL (https://github.com/owner/repo, git@github.com:owner/repo.git)
or owner/repo. Without an argument, or with a path, the GitHub origin
remote of that checkout is used.`,
	Example: `  gitval analyze golang/go
  gitval analyze https://github.com/acme/widgets --sort risk
  gitval analyze . --format markdown > team.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), daemon.ShutdownSignals()...)
		defer stop()
		return analyzeRun(ctx, target)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", output.FormatTable, "Output format: table, json, csv, markdown")
	analyzeCmd.Flags().StringVarP(&analyzeSort, "sort", "s", models.SortByGPA, "Developer order: gpa, risk, commits")
	rootCmd.AddCommand(analyzeCmd)
}

// failure carries the user-facing message of a failed run while keeping the
// underlying error for errors.Is.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

// progress prints a status line unless the output is meant for a pipe.
func progress(format, msg string, a ...any) {
	if format == output.FormatTable || format == "" {
		ui.Info(msg, a...)
	}
}

func checkSort(by string) error {
	switch by {
	case models.SortByGPA, models.SortByRisk, models.SortByCommits:
		return nil
	}
	return fmt.Errorf("unknown sort: %s (use: gpa, risk, commits)", by)
}

// repoArg maps a command argument to a repository reference, resolving
// local paths through their origin remote.
func repoArg(target string) (string, error) {
	if _, err := git.Resolve(target); err == nil {
		return target, nil
	}
	ref, err := git.ResolveLocal(target)
	if err != nil {
		return "", &failure{msg: fmt.Sprintf("%s is neither a GitHub repository nor a checkout with a GitHub origin", target), err: err}
	}
	ui.VerboseLog("Using origin remote of %s: %s", target, ref)
	return ref.String(), nil
}

func analyzeRun(ctx context.Context, target string) error {
	if err := checkSort(analyzeSort); err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	repo, err := repoArg(target)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would fetch up to %d merged pull requests of %s and grade them with %s",
			viper.GetInt("github.max_pull_requests"), repo, llmConfig().Provider)
		return nil
	}
	progress(analyzeFormat, "Analyzing %s", output.Cyan(repo))
	res, err := svc.Analyze(ctx, repo)
	if err != nil {
		return &failure{msg: analysis.Message(err), err: err}
	}

	models.SortDevelopers(res.Developers, analyzeSort)
	return ui.RenderAnalysis(res, analyzeFormat)
}
