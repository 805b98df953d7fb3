// Package scoring grades developers: it groups commit records by author,
// asks a model to score each author, and assembles the ranked result.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joescharf/gitval/internal/llm"
	"github.com/joescharf/gitval/internal/metrics"
	"github.com/joescharf/gitval/internal/models"
)

var (
	ErrNoCommits            = errors.New("no commits provided for analysis")
	ErrMissingLLMCredential = errors.New("no LLM API key configured (set OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	ErrNoDevelopersScored   = errors.New("failed to analyze any developers; check API keys and try again")
)

// Scorer grades authors one at a time through a Completer.
type Scorer struct {
	completer llm.Completer
	diffCap   int
}

// NewScorer returns a Scorer. A nil completer means no credential is
// configured; Score then fails without making any request.
func NewScorer(c llm.Completer, diffCap int) *Scorer {
	return &Scorer{completer: c, diffCap: diffCap}
}

// Score grades every author in commits. An author whose request or reply
// fails is logged, recorded in Skipped, and left out; the run fails only
// when no author could be scored.
func (s *Scorer) Score(ctx context.Context, commits []models.CommitRecord) (*models.AnalysisResult, error) {
	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	if s.completer == nil {
		return nil, ErrMissingLLMCredential
	}

	var (
		devs    []models.DeveloperAssessment
		skipped []models.Skip
	)
	for _, g := range GroupByAuthor(commits) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dev, reason, err := s.scoreAuthor(ctx, g)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("skipping developer", "item", g.Key, "reason", reason, "error", err)
			metrics.DevelopersDropped.WithLabelValues(reason).Inc()
			skipped = append(skipped, models.Skip{Item: g.Key, Reason: fmt.Sprintf("%s: %v", reason, err)})
			continue
		}
		metrics.DevelopersScored.Inc()
		devs = append(devs, dev)
	}

	return Finalize(devs, len(commits), skipped)
}

func (s *Scorer) scoreAuthor(ctx context.Context, g AuthorGroup) (models.DeveloperAssessment, string, error) {
	system, user, err := llm.BuildScoringPrompt(g.Name, g.Email, g.Commits, s.diffCap)
	if err != nil {
		return models.DeveloperAssessment{}, metrics.ReasonValidation, err
	}

	text, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		return models.DeveloperAssessment{}, metrics.ReasonLLM, err
	}

	score, err := llm.ParseScore(text)
	if err != nil {
		return models.DeveloperAssessment{}, metrics.ReasonParse, err
	}
	return Assemble(g, score), "", nil
}
