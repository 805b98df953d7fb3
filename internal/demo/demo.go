// Package demo produces the fixed sample analysis shown when no repository
// has been analyzed yet.
package demo

import (
	"context"
	"time"

	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/scoring"
)

const (
	Repository   = "acme-corp/enterprise-platform"
	TotalCommits = 247
	DefaultDelay = 2 * time.Second
)

// Generator returns the sample result after a simulated delay.
type Generator struct {
	delay time.Duration
}

// New returns a Generator. A negative delay is treated as zero.
func New(delay time.Duration) *Generator {
	if delay < 0 {
		delay = 0
	}
	return &Generator{delay: delay}
}

// Result waits for the configured delay, or until ctx is done, and returns a
// fresh copy of the sample analysis.
func (g *Generator) Result(ctx context.Context) (*models.AnalysisResult, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return Sample(), nil
}

type sampleDev struct {
	name, email, archetype, assessment string
	gpa                                float64
	commits, additions, deletions      int
	confidence, complexity, deletion   int
	grades                             []models.CommitGrade
}

var developers = []sampleDev{
	{
		name: "Sarah Chen", email: "sarah.chen@acme.corp", gpa: 3.87, archetype: "Architect",
		assessment: "High strategic value; designed core authentication system and API gateway.",
		commits:    47, additions: 4823, deletions: 2156, confidence: 94, complexity: 91, deletion: 78,
		grades: []models.CommitGrade{
			{SHA: "a1b2c3d", Grade: 95, Reasoning: "Implemented OAuth2 flow with PKCE"},
			{SHA: "e4f5g6h", Grade: 88, Reasoning: "Refactored database connection pooling"},
		},
	},
	{
		name: "Marcus Johnson", email: "marcus.j@acme.corp", gpa: 3.52, archetype: "Surgeon",
		assessment: "Precise fixes; eliminated 3 critical security vulnerabilities with minimal code.",
		commits:    38, additions: 1247, deletions: 1089, confidence: 89, complexity: 82, deletion: 85,
		grades: []models.CommitGrade{
			{SHA: "i7j8k9l", Grade: 92, Reasoning: "Fixed SQL injection in user search"},
			{SHA: "m0n1o2p", Grade: 85, Reasoning: "Patched XSS vulnerability in comments"},
		},
	},
	{
		name: "Aisha Patel", email: "aisha.p@acme.corp", gpa: 3.21, archetype: "Janitor",
		assessment: "Exceptional cleanup; deleted 4,200 lines of legacy code safely.",
		commits:    52, additions: 892, deletions: 4234, confidence: 82, complexity: 68, deletion: 95,
		grades: []models.CommitGrade{
			{SHA: "q3r4s5t", Grade: 88, Reasoning: "Removed deprecated payment processor"},
			{SHA: "u6v7w8x", Grade: 82, Reasoning: "Cleaned up unused utility functions"},
		},
	},
	{
		name: "David Mueller", email: "david.m@acme.corp", gpa: 2.84, archetype: "Feature Factory",
		assessment: "High output but concerning patterns; 40% of commits are bug fixes.",
		commits:    67, additions: 8923, deletions: 1245, confidence: 65, complexity: 71, deletion: 32,
		grades: []models.CommitGrade{
			{SHA: "y9z0a1b", Grade: 72, Reasoning: "Added user dashboard, some edge cases"},
			{SHA: "c2d3e4f", Grade: 58, Reasoning: "Fixed bug introduced in previous commit"},
		},
	},
	{
		name: "Emma Wilson", email: "emma.w@acme.corp", gpa: 2.31, archetype: "Firefighter",
		assessment: "Reactive pattern detected; 60% of bug fixes are for self-introduced issues.",
		commits:    45, additions: 3456, deletions: 2890, confidence: 52, complexity: 58, deletion: 45,
		grades: []models.CommitGrade{
			{SHA: "g5h6i7j", Grade: 45, Reasoning: "Hotfix for production crash (self-caused)"},
			{SHA: "k8l9m0n", Grade: 62, Reasoning: "Fixed race condition in checkout flow"},
		},
	},
	{
		name: "James O'Brien", email: "james.ob@acme.corp", gpa: 1.89, archetype: "Coaster",
		assessment: "Low strategic value; 70% of commits are documentation and formatting.",
		commits:    34, additions: 1567, deletions: 234, confidence: 38, complexity: 25, deletion: 22,
		grades: []models.CommitGrade{
			{SHA: "o1p2q3r", Grade: 35, Reasoning: "Updated README formatting"},
			{SHA: "s4t5u6v", Grade: 28, Reasoning: "Added console.log statements for debugging"},
		},
	},
}

// Sample builds the sample analysis. Every call returns new slices, so
// callers may sort or modify the result.
func Sample() *models.AnalysisResult {
	devs := make([]models.DeveloperAssessment, len(developers))
	for i, d := range developers {
		arch := archetype.Lookup(d.archetype)
		grades := make([]models.CommitGrade, len(d.grades))
		copy(grades, d.grades)

		devs[i] = models.DeveloperAssessment{
			Name:            d.name,
			Email:           d.email,
			ImpactGPA:       d.gpa,
			LetterGrade:     models.LetterGrade(d.gpa),
			Archetype:       arch.Name,
			ArchetypeInfo:   arch.Info(),
			Assessment:      d.assessment,
			CommitCount:     d.commits,
			TotalAdditions:  d.additions,
			TotalDeletions:  d.deletions,
			NetLinesChanged: d.additions - d.deletions,
			ConfidenceScore: d.confidence,
			ComplexityScore: d.complexity,
			DeletionValue:   d.deletion,
			StrategicImpact: scoring.StrategicImpact(d.confidence, d.complexity, d.deletion),
			Commits:         grades,
		}
	}

	return &models.AnalysisResult{
		Success:      true,
		ID:           "demo",
		Repository:   Repository,
		AnalyzedAt:   time.Now().UTC(),
		TotalCommits: TotalCommits,
		Developers:   devs,
		Summary:      models.Summarize(devs),
	}
}
