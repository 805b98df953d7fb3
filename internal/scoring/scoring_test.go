package scoring

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/gitval/internal/llm"
	"github.com/joescharf/gitval/internal/models"
)

// MockCompleter simulates a model endpoint.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// forAuthor matches the user prompt of one developer.
func forAuthor(name string) interface{} {
	return mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, `Developer: "`+name+`"`)
	})
}

func sampleCommits() []models.CommitRecord {
	return []models.CommitRecord{
		{SHA: "PR-3", Author: "alice", AuthorEmail: "alice@example.com", Additions: 100, Deletions: 20, Diff: "a"},
		{SHA: "PR-2", Author: "bob", AuthorEmail: "bob@example.com", Additions: 5, Deletions: 50, Diff: "b"},
		{SHA: "PR-1", Author: "alice", AuthorEmail: "alice@example.com", Additions: 10, Deletions: 30, Diff: "c"},
	}
}

const aliceReply = `{"impactGPA": 3.1, "archetype": "Architect", "assessment": "Strong design work.",
	"confidenceScore": 90, "complexityScore": 80, "deletionValue": 50,
	"commits": [{"sha": "PR-3", "grade": 91, "reasoning": "solid"}, {"sha": "PR-1", "grade": 80, "reasoning": "ok"}]}`

const bobReply = "```json\n" + `{"impactGPA": 3.6, "archetype": "the janitor", "assessment": "Deletes dead code.",
	"confidenceScore": 85, "complexityScore": 40, "deletionValue": 95,
	"commits": [{"sha": "PR-2", "grade": 88, "reasoning": "cleanup"}]}` + "\n```"

func TestGroupByAuthor(t *testing.T) {
	commits := []models.CommitRecord{
		{SHA: "1", Author: "alice", AuthorEmail: "alice@example.com"},
		{SHA: "2", Author: "bob"},
		{SHA: "3", Author: "Alice Smith", AuthorEmail: "alice@example.com"},
		{SHA: "4", Author: "bob"},
		{SHA: "5", Author: "carol", AuthorEmail: "carol@example.com"},
	}

	groups := GroupByAuthor(commits)
	require.Len(t, groups, 3)

	assert.Equal(t, "alice@example.com", groups[0].Key)
	assert.Equal(t, "alice", groups[0].Name, "name from first appearance")
	assert.Len(t, groups[0].Commits, 2)
	assert.Equal(t, "3", groups[0].Commits[1].SHA)

	assert.Equal(t, "bob", groups[1].Key, "falls back to author name")
	assert.Empty(t, groups[1].Email)
	assert.Len(t, groups[1].Commits, 2)

	assert.Equal(t, "carol@example.com", groups[2].Key)
}

func TestGroupByAuthor_Empty(t *testing.T) {
	assert.Empty(t, GroupByAuthor(nil))
}

func TestScore_TwoAuthors(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything, forAuthor("alice")).Return(aliceReply, nil).Once()
	m.On("Complete", mock.Anything, mock.Anything, forAuthor("bob")).Return(bobReply, nil).Once()

	res, err := NewScorer(m, 0).Score(context.Background(), sampleCommits())
	require.NoError(t, err)
	m.AssertExpectations(t)

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.TotalCommits)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.AnalyzedAt.IsZero())
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Developers, 2)

	// bob has the higher GPA and comes first.
	bob, alice := res.Developers[0], res.Developers[1]
	assert.Equal(t, "bob", bob.Name)
	assert.Equal(t, "Janitor", bob.Archetype)
	assert.Equal(t, "blue", bob.ArchetypeInfo.Color)
	assert.Equal(t, -45, bob.NetLinesChanged)

	assert.Equal(t, "alice", alice.Name)
	assert.Equal(t, 2, alice.CommitCount)
	assert.Equal(t, 110, alice.TotalAdditions)
	assert.Equal(t, 50, alice.TotalDeletions)
	assert.Equal(t, 60, alice.NetLinesChanged)
	assert.Equal(t, StrategicImpact(90, 80, 50), alice.StrategicImpact)
	assert.Equal(t, "B+", alice.LetterGrade)
	require.Len(t, alice.Commits, 2)
	assert.Equal(t, 91, alice.Commits[0].Grade)

	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.DeveloperCount)
	assert.Equal(t, 3, res.Summary.CommitCount)
}

func TestScore_OneAuthorFails(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything, forAuthor("alice")).Return("", errors.New("rate limited")).Once()
	m.On("Complete", mock.Anything, mock.Anything, forAuthor("bob")).Return(bobReply, nil).Once()

	res, err := NewScorer(m, 0).Score(context.Background(), sampleCommits())
	require.NoError(t, err)

	require.Len(t, res.Developers, 1)
	assert.Equal(t, "bob", res.Developers[0].Name)
	assert.Equal(t, 3, res.TotalCommits, "counts every input commit")
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "alice@example.com", res.Skipped[0].Item)
	assert.Contains(t, res.Skipped[0].Reason, "rate limited")
}

func TestScore_AllParsesFail(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("I am unable to grade this.", nil).Twice()

	res, err := NewScorer(m, 0).Score(context.Background(), sampleCommits())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoDevelopersScored)
	assert.Contains(t, err.Error(), "failed to analyze any developers")
	m.AssertNumberOfCalls(t, "Complete", 2)
}

func TestScore_MissingCredential(t *testing.T) {
	_, err := NewScorer(nil, 0).Score(context.Background(), sampleCommits())
	assert.ErrorIs(t, err, ErrMissingLLMCredential)
}

func TestScore_NoCommits(t *testing.T) {
	m := new(MockCompleter)
	_, err := NewScorer(m, 0).Score(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoCommits)
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestScore_CancelledContext(t *testing.T) {
	m := new(MockCompleter)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScorer(m, 0).Score(ctx, sampleCommits())
	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestScore_PromptDiffCap(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, `"diff": "abc\n... [truncated]"`)
	})).Return(aliceReply, nil).Once()

	commits := []models.CommitRecord{{SHA: "PR-1", Author: "alice", AuthorEmail: "a@x.io", Diff: "abcdef"}}
	_, err := NewScorer(m, 3).Score(context.Background(), commits)
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestStrategicImpact_Property(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		c, x, d := r.Intn(101), r.Intn(101), r.Intn(101)
		want := int(math.Round(0.4*float64(c) + 0.35*float64(x) + 0.25*float64(d)))

		dev := Assemble(AuthorGroup{Name: "p"}, &llm.Score{
			ConfidenceScore: llm.Number(c),
			ComplexityScore: llm.Number(x),
			DeletionValue:   llm.Number(d),
		})
		require.Equal(t, want, dev.StrategicImpact, "c=%d x=%d d=%d", c, x, d)
	}
}

func TestAssemble_NetLinesProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		var commits []models.CommitRecord
		for j := 0; j < 1+r.Intn(5); j++ {
			commits = append(commits, models.CommitRecord{Additions: r.Intn(5000), Deletions: r.Intn(5000)})
		}
		dev := Assemble(AuthorGroup{Commits: commits}, &llm.Score{})
		require.Equal(t, dev.TotalAdditions-dev.TotalDeletions, dev.NetLinesChanged)
	}
}

func TestAssemble_ClampsModelNumbers(t *testing.T) {
	dev := Assemble(AuthorGroup{Name: "x"}, &llm.Score{
		ImpactGPA:       5.7,
		Archetype:       "banana",
		ConfidenceScore: 140,
		ComplexityScore: -12,
		DeletionValue:   55.5,
		Commits: []llm.CommitScore{
			{SHA: "abcdef123456", Grade: 101, Reasoning: "r"},
			{SHA: "PR-9", Grade: -3},
		},
	})

	assert.Equal(t, 4.0, dev.ImpactGPA)
	assert.Equal(t, "A+", dev.LetterGrade)
	assert.Equal(t, "Coaster", dev.Archetype, "unknown archetype falls back")
	assert.Equal(t, 100, dev.ConfidenceScore)
	assert.Equal(t, 0, dev.ComplexityScore)
	assert.Equal(t, 56, dev.DeletionValue)
	assert.Equal(t, "abcdef1", dev.Commits[0].SHA)
	assert.Equal(t, 100, dev.Commits[0].Grade)
	assert.Equal(t, 0, dev.Commits[1].Grade)
}

func TestAssemble_RoundsGPA(t *testing.T) {
	dev := Assemble(AuthorGroup{}, &llm.Score{ImpactGPA: 3.14159})
	assert.Equal(t, 3.14, dev.ImpactGPA)
	assert.NotNil(t, dev.Commits)
}

func TestFinalize_SortsByGPA(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	devs := make([]models.DeveloperAssessment, 20)
	for i := range devs {
		devs[i] = models.DeveloperAssessment{Name: string(rune('a' + i)), ImpactGPA: float64(r.Intn(400)) / 100}
	}

	res, err := Finalize(devs, 40, nil)
	require.NoError(t, err)
	for i := 1; i < len(res.Developers); i++ {
		assert.GreaterOrEqual(t, res.Developers[i-1].ImpactGPA, res.Developers[i].ImpactGPA)
	}
}

func TestFinalize_Empty(t *testing.T) {
	_, err := Finalize(nil, 3, []models.Skip{{Item: "a", Reason: "x"}})
	assert.ErrorIs(t, err, ErrNoDevelopersScored)
}

func TestFinalize_Timestamp(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	res, err := Finalize([]models.DeveloperAssessment{{Name: "a", ImpactGPA: 2}}, 1, nil)
	require.NoError(t, err)
	assert.True(t, res.AnalyzedAt.Equal(fixed))
	assert.Len(t, res.ID, 26)
}
