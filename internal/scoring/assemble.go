package scoring

import (
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/llm"
	"github.com/joescharf/gitval/internal/models"
)

// now is swapped in tests.
var now = time.Now

// StrategicImpact blends the three rubric scores into one 0-100 value.
func StrategicImpact(confidence, complexity, deletionValue int) int {
	return int(math.Round(0.4*float64(confidence) + 0.35*float64(complexity) + 0.25*float64(deletionValue)))
}

// Assemble combines an author's commits with the model's score. Line totals
// come from the commits; every model number is clamped to its range.
func Assemble(g AuthorGroup, s *llm.Score) models.DeveloperAssessment {
	var additions, deletions int
	for _, c := range g.Commits {
		additions += c.Additions
		deletions += c.Deletions
	}

	gpa := clampGPA(float64(s.ImpactGPA))
	conf := clampScore(float64(s.ConfidenceScore))
	cx := clampScore(float64(s.ComplexityScore))
	del := clampScore(float64(s.DeletionValue))
	arch := archetype.Lookup(s.Archetype)

	grades := make([]models.CommitGrade, len(s.Commits))
	for i, cs := range s.Commits {
		grades[i] = models.CommitGrade{
			SHA:       models.ShortID(cs.SHA),
			Grade:     clampScore(float64(cs.Grade)),
			Reasoning: cs.Reasoning,
		}
	}

	return models.DeveloperAssessment{
		Name:            g.Name,
		Email:           g.Email,
		ImpactGPA:       gpa,
		LetterGrade:     models.LetterGrade(gpa),
		Archetype:       arch.Name,
		ArchetypeInfo:   arch.Info(),
		Assessment:      s.Assessment,
		CommitCount:     len(g.Commits),
		TotalAdditions:  additions,
		TotalDeletions:  deletions,
		NetLinesChanged: additions - deletions,
		ConfidenceScore: conf,
		ComplexityScore: cx,
		DeletionValue:   del,
		StrategicImpact: StrategicImpact(conf, cx, del),
		Commits:         grades,
	}
}

// Finalize orders developers by GPA and wraps them in a success result.
// An empty developer list is ErrNoDevelopersScored.
func Finalize(devs []models.DeveloperAssessment, totalCommits int, skipped []models.Skip) (*models.AnalysisResult, error) {
	if len(devs) == 0 {
		return nil, ErrNoDevelopersScored
	}
	models.SortDevelopers(devs, models.SortByGPA)

	return &models.AnalysisResult{
		Success:      true,
		ID:           ulid.Make().String(),
		AnalyzedAt:   now().UTC(),
		TotalCommits: totalCommits,
		Developers:   devs,
		Summary:      models.Summarize(devs),
		Skipped:      skipped,
	}, nil
}

func clampGPA(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(0, math.Min(4, v))
	return math.Round(v*100) / 100
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
