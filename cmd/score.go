package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/daemon"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/output"
	"github.com/joescharf/gitval/internal/scoring"
)

var (
	scoreFormat string
	scoreSort   string
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Grade commit records saved by 'gitval prs --format json'",
	Long: `Grade the authors of previously fetched commit records. The input is the
JSON written by 'gitval prs --format json' (an object with a "commits" array)
or a bare array of records. Reads stdin when no file or "-" is given.`,
	Example: `  gitval prs acme/widgets -f json > prs.json
  gitval score prs.json --sort risk`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), daemon.ShutdownSignals()...)
		defer stop()
		return scoreRun(ctx, in)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", output.FormatTable, "Output format: table, json, csv, markdown")
	scoreCmd.Flags().StringVarP(&scoreSort, "sort", "s", models.SortByGPA, "Developer order: gpa, risk, commits")
	rootCmd.AddCommand(scoreCmd)
}

// readCommits accepts a PullRequestsResult object or a bare record array.
func readCommits(r io.Reader) ([]models.CommitRecord, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	var wrapped models.PullRequestsResult
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Commits, wrapped.RepoName, nil
	}
	var commits []models.CommitRecord
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, "", fmt.Errorf("input is not a commit record list: %w", err)
	}
	return commits, "", nil
}

func scoreRun(ctx context.Context, in io.Reader) error {
	if err := checkSort(scoreSort); err != nil {
		return err
	}
	commits, repo, err := readCommits(in)
	if err != nil {
		return err
	}
	c, err := newCompleter()
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would grade %d commit records with %s", len(commits), llmConfig().Provider)
		return nil
	}

	svc := analysis.NewService(nil, scoring.NewScorer(c, viper.GetInt("scoring.prompt_diff_chars")), nil)
	res, err := svc.ScoreDevelopers(ctx, commits)
	if err != nil {
		return &failure{msg: res.Error, err: err}
	}
	res.Repository = repo
	models.SortDevelopers(res.Developers, scoreSort)
	return ui.RenderAnalysis(res, scoreFormat)
}
