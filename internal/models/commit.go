package models

import "time"

// CommitRecord is one merged pull request treated as the unit of analysis.
// Counts come from the hosting API's PR totals, not from the (possibly
// truncated) diff text.
type CommitRecord struct {
	SHA          string    `json:"sha"` // "PR-<number>"
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"authorEmail"`
	Date         time.Time `json:"date"` // merged_at, else created_at
	Message      string    `json:"message"`
	Diff         string    `json:"diff"`
	FilesChanged int       `json:"filesChanged"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
}

// ShortSHA returns the 7-character identifier used to key per-commit grades.
func (c CommitRecord) ShortSHA() string {
	return ShortID(c.SHA)
}

// ShortID truncates an identifier to at most 7 characters.
func ShortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// GroupKey is the identity used to aggregate commits by author.
func (c CommitRecord) GroupKey() string {
	if c.AuthorEmail != "" {
		return c.AuthorEmail
	}
	return c.Author
}

// Skip records an item dropped from a batch and why.
type Skip struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}
