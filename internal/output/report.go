package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/models"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is wrapped by the Render functions for unsupported formats.
var ErrUnknownFormat = errors.New("unknown format")

func unknownFormat(format string, allowed ...string) error {
	return fmt.Errorf("%w: %s (use: %s)", ErrUnknownFormat, format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderAnalysis writes res in the given format.
func (u *UI) RenderAnalysis(res *models.AnalysisResult, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(u.Out, res)
	case FormatCSV:
		return analysisCSV(u.Out, res)
	case FormatMarkdown:
		analysisMarkdown(u.Out, res)
		return nil
	case FormatTable, "":
		u.analysisTable(res)
		return nil
	default:
		return unknownFormat(format, FormatTable, FormatJSON, FormatCSV, FormatMarkdown)
	}
}

func (u *UI) analysisTable(res *models.AnalysisResult) {
	fmt.Fprintf(u.Out, "%s  %s\n\n", Cyan(res.Repository), res.AnalyzedAt.Local().Format(time.DateTime))

	table := u.Table([]string{"#", "Developer", "Grade", "GPA", "Archetype", "Impact", "Commits", "+/-", "Net"})
	for i, d := range res.Developers {
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			d.Name,
			GradeColor(d.LetterGrade, d.ImpactGPA),
			fmt.Sprintf("%.2f", d.ImpactGPA),
			ArchetypeColor(d.Archetype, d.ArchetypeInfo.Color),
			ScoreColor(d.StrategicImpact),
			strconv.Itoa(d.CommitCount),
			fmt.Sprintf("+%d/-%d", d.TotalAdditions, d.TotalDeletions),
			NetLines(d.NetLinesChanged),
		})
	}
	_ = table.Render()

	if s := res.Summary; s != nil {
		fmt.Fprintf(u.Out, "\n%d developers, %d commits analyzed. Team GPA %.2f (%s), average impact %d.\n",
			s.DeveloperCount, res.TotalCommits, s.AverageGPA, models.LetterGrade(s.AverageGPA), s.AverageImpact)
	}
	if u.Verbose {
		for _, d := range res.Developers {
			fmt.Fprintf(u.Out, "\n%s: %s\n", d.Name, d.Assessment)
			for _, c := range d.Commits {
				fmt.Fprintf(u.Out, "  %s  %3d  %s\n", c.SHA, c.Grade, c.Reasoning)
			}
		}
	}
	for _, sk := range res.Skipped {
		u.Warning("skipped %s: %s", sk.Item, sk.Reason)
	}
}

func analysisCSV(w io.Writer, res *models.AnalysisResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Name", "Email", "ImpactGPA", "LetterGrade", "Archetype", "StrategicImpact",
		"Confidence", "Complexity", "DeletionValue", "Commits", "Additions", "Deletions", "NetLines", "Assessment"})
	for _, d := range res.Developers {
		_ = cw.Write([]string{
			d.Name, d.Email,
			strconv.FormatFloat(d.ImpactGPA, 'f', 2, 64), d.LetterGrade, d.Archetype,
			strconv.Itoa(d.StrategicImpact), strconv.Itoa(d.ConfidenceScore),
			strconv.Itoa(d.ComplexityScore), strconv.Itoa(d.DeletionValue),
			strconv.Itoa(d.CommitCount), strconv.Itoa(d.TotalAdditions),
			strconv.Itoa(d.TotalDeletions), strconv.Itoa(d.NetLinesChanged),
			d.Assessment,
		})
	}
	cw.Flush()
	return cw.Error()
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func analysisMarkdown(w io.Writer, res *models.AnalysisResult) {
	fmt.Fprintf(w, "# Developer assessment: %s\n\n", res.Repository)
	if !res.AnalyzedAt.IsZero() {
		fmt.Fprintf(w, "Analyzed %s, %d commits.\n\n", res.AnalyzedAt.UTC().Format(time.RFC3339), res.TotalCommits)
	}
	fmt.Fprintln(w, "| Developer | Grade | GPA | Archetype | Impact | Commits | Net lines |")
	fmt.Fprintln(w, "|-----------|-------|-----|-----------|--------|---------|-----------|")
	for _, d := range res.Developers {
		fmt.Fprintf(w, "| %s | %s | %.2f | %s | %d | %d | %s |\n",
			mdEscape(d.Name), d.LetterGrade, d.ImpactGPA, d.Archetype, d.StrategicImpact, d.CommitCount, NetLines(d.NetLinesChanged))
	}
	if s := res.Summary; s != nil {
		fmt.Fprintf(w, "\nTeam GPA **%.2f**, average strategic impact **%d**.\n", s.AverageGPA, s.AverageImpact)
	}
	for _, d := range res.Developers {
		fmt.Fprintf(w, "\n## %s\n\n%s\n", mdEscape(d.Name), d.Assessment)
	}
}

// RenderPullRequests writes the fetched commit records as a table or JSON.
func (u *UI) RenderPullRequests(res *models.PullRequestsResult, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(u.Out, res)
	case FormatTable, "":
	default:
		return unknownFormat(format, FormatTable, FormatJSON)
	}

	fmt.Fprintf(u.Out, "%s\n\n", Cyan(res.RepoName))
	table := u.Table([]string{"PR", "Author", "Merged", "Files", "+/-", "Title"})
	for _, c := range res.Commits {
		title, _, _ := strings.Cut(c.Message, "\n")
		_ = table.Append([]string{
			c.SHA,
			c.Author,
			c.Date.Local().Format(time.DateOnly),
			strconv.Itoa(c.FilesChanged),
			fmt.Sprintf("+%d/-%d", c.Additions, c.Deletions),
			title,
		})
	}
	_ = table.Render()
	for _, sk := range res.Skipped {
		u.Warning("skipped %s: %s", sk.Item, sk.Reason)
	}
	return nil
}

// RenderArchetypes lists the archetype table.
func (u *UI) RenderArchetypes(format string) error {
	all := archetype.All()
	switch format {
	case FormatJSON:
		infos := make([]models.ArchetypeInfo, len(all))
		for i, a := range all {
			infos[i] = a.Info()
		}
		return writeJSON(u.Out, infos)
	case FormatTable, "":
		table := u.Table([]string{"Archetype", "Description"})
		for _, a := range all {
			_ = table.Append([]string{ArchetypeColor(a.Name, a.Color), a.Description})
		}
		return table.Render()
	default:
		return unknownFormat(format, FormatTable, FormatJSON)
	}
}
