package scoring

import "github.com/joescharf/gitval/internal/models"

// AuthorGroup is every commit attributed to one author.
type AuthorGroup struct {
	Key     string
	Name    string
	Email   string
	Commits []models.CommitRecord
}

// GroupByAuthor partitions commits by author email, falling back to the
// author name when the email is empty. Groups come back in the order each
// author first appears, and commits keep their input order.
func GroupByAuthor(commits []models.CommitRecord) []AuthorGroup {
	var groups []AuthorGroup
	index := make(map[string]int)

	for _, c := range commits {
		key := c.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, AuthorGroup{Key: key, Name: c.Author, Email: c.AuthorEmail})
		}
		groups[i].Commits = append(groups[i].Commits, c)
	}
	return groups
}
