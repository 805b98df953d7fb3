// Package analysis runs the end-to-end pipeline: resolve a repository, fetch
// its merged pull requests, and score the authors. Every operation returns a
// non-nil result value alongside its error so transports can render the
// failure without inspecting the error.
package analysis

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/metrics"
	"github.com/joescharf/gitval/internal/models"
)

// Fetcher produces commit records for a repository reference.
type Fetcher interface {
	Fetch(ctx context.Context, input string) (*git.FetchResult, error)
}

// Scorer grades the authors of a set of commit records.
type Scorer interface {
	Score(ctx context.Context, commits []models.CommitRecord) (*models.AnalysisResult, error)
}

// DemoSource returns the sample analysis.
type DemoSource interface {
	Result(ctx context.Context) (*models.AnalysisResult, error)
}

// Service wires the pipeline stages together.
type Service struct {
	fetcher Fetcher
	scorer  Scorer
	demo    DemoSource
}

// NewService returns a Service.
func NewService(f Fetcher, s Scorer, d DemoSource) *Service {
	return &Service{fetcher: f, scorer: s, demo: d}
}

// ResolveRepository parses a repository URL or "owner/repo" string.
func (s *Service) ResolveRepository(input string) (git.Ref, error) {
	return git.Resolve(input)
}

// FetchPullRequests returns the commit records for repo.
func (s *Service) FetchPullRequests(ctx context.Context, repo string) (res *models.PullRequestsResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("fetch", r)
			res = models.FailedPullRequests(err.Error())
		}
	}()

	fr, err := s.fetcher.Fetch(ctx, repo)
	if err != nil {
		return models.FailedPullRequests(Message(err)), err
	}
	return &models.PullRequestsResult{
		Success:  true,
		Commits:  fr.Commits,
		RepoName: fr.RepoName,
		Skipped:  fr.Skipped,
	}, nil
}

// ScoreDevelopers grades the authors of commits.
func (s *Service) ScoreDevelopers(ctx context.Context, commits []models.CommitRecord) (res *models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("score", r)
			res = models.FailedAnalysis(err.Error())
		}
	}()

	res, err = s.scorer.Score(ctx, commits)
	if err != nil {
		return models.FailedAnalysis(Message(err)), err
	}
	return res, nil
}

// Analyze fetches and scores repo. Pull requests skipped during the fetch
// are reported ahead of authors skipped during scoring.
func (s *Service) Analyze(ctx context.Context, repo string) (res *models.AnalysisResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = recovered("analyze", r)
			res = models.FailedAnalysis(err.Error())
		}
		record(err)
	}()

	slog.Info("analysis started", "repo", repo)
	fr, err := s.fetcher.Fetch(ctx, repo)
	if err != nil {
		slog.Warn("analysis failed", "repo", repo, "stage", "fetch", "error", err)
		return models.FailedAnalysis(Message(err)), err
	}

	res, err = s.scorer.Score(ctx, fr.Commits)
	if err != nil {
		slog.Warn("analysis failed", "repo", fr.RepoName, "stage", "score", "error", err)
		return models.FailedAnalysis(Message(err)), err
	}

	res.Repository = fr.RepoName
	res.Skipped = append(append([]models.Skip(nil), fr.Skipped...), res.Skipped...)
	slog.Info("analysis finished", "repo", res.Repository, "developers", len(res.Developers),
		"skipped", len(res.Skipped), "duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Demo returns the sample analysis.
func (s *Service) Demo(ctx context.Context) (res *models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("demo", r)
			res = models.FailedAnalysis(err.Error())
		}
	}()

	res, err = s.demo.Result(ctx)
	if err != nil {
		return models.FailedAnalysis(Message(err)), err
	}
	metrics.Analyses.WithLabelValues(metrics.OutcomeDemo).Inc()
	return res, nil
}

func recovered(op string, r any) error {
	slog.Error("panic during analysis", "op", op, "panic", r, "stack", string(debug.Stack()))
	return ErrUnexpected
}

func record(err error) {
	if err != nil {
		metrics.Analyses.WithLabelValues(metrics.OutcomeFailure).Inc()
		return
	}
	metrics.Analyses.WithLabelValues(metrics.OutcomeSuccess).Inc()
}
