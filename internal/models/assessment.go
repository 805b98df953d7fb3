package models

import "time"

// ArchetypeInfo is the display metadata attached to a developer's archetype.
type ArchetypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CommitGrade is the model's grade for one commit of a developer.
type CommitGrade struct {
	SHA       string `json:"sha"`
	Grade     int    `json:"grade"`
	Reasoning string `json:"reasoning"`
}

// DeveloperAssessment is the scored record for one author.
type DeveloperAssessment struct {
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	ImpactGPA       float64       `json:"impactGPA"` // 0.0 - 4.0
	LetterGrade     string        `json:"letterGrade"`
	Archetype       string        `json:"archetype"`
	ArchetypeInfo   ArchetypeInfo `json:"archetypeInfo"`
	Assessment      string        `json:"assessment"`
	CommitCount     int           `json:"commitCount"`
	TotalAdditions  int           `json:"totalAdditions"`
	TotalDeletions  int           `json:"totalDeletions"`
	NetLinesChanged int           `json:"netLinesChanged"`
	ConfidenceScore int           `json:"confidenceScore"` // 0-100
	ComplexityScore int           `json:"complexityScore"` // 0-100
	DeletionValue   int           `json:"deletionValue"`   // 0-100, higher = more valuable deletions
	StrategicImpact int           `json:"strategicImpact"` // 0-100, computed locally
	Commits         []CommitGrade `json:"commits"`
}

// AnalysisResult is the outcome of an analysis. Success results carry the
// developers; failures carry only Error.
type AnalysisResult struct {
	Success      bool                  `json:"success"`
	ID           string                `json:"id,omitempty"`
	Repository   string                `json:"repository,omitempty"`
	AnalyzedAt   time.Time             `json:"analyzedAt,omitzero"`
	TotalCommits int                   `json:"totalCommits,omitempty"`
	Developers   []DeveloperAssessment `json:"developers,omitempty"`
	Summary      *Summary              `json:"summary,omitempty"`
	Skipped      []Skip                `json:"skipped,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// FailedAnalysis returns a failure result with the given user-facing message.
func FailedAnalysis(msg string) *AnalysisResult {
	return &AnalysisResult{Success: false, Error: msg}
}

// PullRequestsResult is the outcome of fetching pull requests for a repository.
type PullRequestsResult struct {
	Success  bool           `json:"success"`
	Commits  []CommitRecord `json:"commits,omitempty"`
	RepoName string         `json:"repoName,omitempty"`
	Skipped  []Skip         `json:"skipped,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// FailedPullRequests returns a failure result with the given user-facing message.
func FailedPullRequests(msg string) *PullRequestsResult {
	return &PullRequestsResult{Success: false, Error: msg}
}
