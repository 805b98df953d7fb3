package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/textutil"
)

// DefaultPromptDiffChars caps each diff embedded in the user message.
const DefaultPromptDiffChars = 1000

const promptTruncationMarker = "\n... [truncated]"

const systemPrompt = `You are a Principal Software Architect auditing a codebase for a Private Equity firm. Your job is to separate the '10x Engineers' from the 'Coasters'.

Read every diff and grade it from 0 to 100 against three criteria.

1. **Confidence**: does the change fix the root cause or only patch a symptom?
   - 90-100: addresses a fundamental architectural issue and prevents future bugs
   - 70-89: a solid implementation that correctly solves the stated problem
   - 50-69: works, with possible edge cases or some technical debt
   - 30-49: patches a symptom and is likely to cause later issues
   - 0-29: a band-aid that creates more problems than it solves

2. **Complexity**: is this a hard architectural change or a text edit?
   - 90-100: system-wide architecture, complex algorithms, critical infrastructure
   - 70-89: multi-component work that needs deep domain knowledge
   - 50-69: standard feature work with some complexity
   - 30-49: simple CRUD or otherwise straightforward changes
   - 0-29: trivial edits such as typos, formatting or comments

3. **Net Negative Value**:
   - Deleting unnecessary code is HIGH VALUE (it pays down technical debt)
   - Shipping an essential feature in little code is HIGH VALUE
   - Whitespace, excessive logging and boilerplate are LOW VALUE
   - Large additions with no clear purpose are NEGATIVE VALUE

Assign exactly one developer archetype:
%s

Be ruthlessly honest. The firm needs accurate assessments, not encouragement. Watch for:
- introducing bugs and then fixing them (a red flag)
- deleting more code than is added (often positive)
- changes to core business logic versus peripheral code
- evidence that the developer understands the wider system

Return your analysis as a valid JSON object.`

const responseSchema = `{
  "impactGPA": <number 0.0-4.0>,
  "archetype": "<one of: %s>",
  "assessment": "<one-line assessment, max 200 chars>",
  "confidenceScore": <number 0-100>,
  "complexityScore": <number 0-100>,
  "deletionValue": <number 0-100>,
  "commits": [
    {
      "sha": "<7-char sha>",
      "grade": <number 0-100>,
      "reasoning": "<brief reasoning>"
    }
  ]
}`

type commitSummary struct {
	SHA          string `json:"sha"`
	Message      string `json:"message"`
	Date         string `json:"date"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"filesChanged"`
	Diff         string `json:"diff"`
}

// SystemPrompt returns the fixed grading rubric.
func SystemPrompt() string {
	var sb strings.Builder
	for i, a := range archetype.All() {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %q: %s", a.Name, a.Description)
	}
	return fmt.Sprintf(systemPrompt, sb.String())
}

// BuildScoringPrompt returns the system rubric and the user message for one
// author. Each diff is cut to diffCap characters; diffCap <= 0 selects
// DefaultPromptDiffChars.
func BuildScoringPrompt(author, email string, commits []models.CommitRecord, diffCap int) (system string, user string, err error) {
	if diffCap <= 0 {
		diffCap = DefaultPromptDiffChars
	}

	summaries := make([]commitSummary, len(commits))
	for i, c := range commits {
		summaries[i] = commitSummary{
			SHA:          c.ShortSHA(),
			Message:      c.Message,
			Date:         formatDate(c.Date),
			Additions:    c.Additions,
			Deletions:    c.Deletions,
			FilesChanged: c.FilesChanged,
			Diff:         textutil.Truncate(c.Diff, diffCap, promptTruncationMarker),
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return "", "", fmt.Errorf("encode commit summaries: %w", err)
	}

	if email == "" {
		email = "unknown"
	}

	var sb strings.Builder
	sb.WriteString("You are analyzing commit diffs for one developer.\n\n")
	fmt.Fprintf(&sb, "Developer: %q (%s)\n\n", author, email)
	sb.WriteString("Here are their commits (JSON):\n\n")
	sb.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	sb.WriteString("\n\nReturn ONLY a single JSON object with this exact structure, and nothing else:\n\n")
	fmt.Fprintf(&sb, responseSchema, strings.Join(archetype.Names(), ", "))

	return SystemPrompt(), sb.String(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
