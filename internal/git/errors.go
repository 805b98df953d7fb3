package git

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken      = errors.New("GitHub token is not set (configure github.token or GITHUB_TOKEN)")
	ErrInvalidReference  = errors.New("invalid GitHub repository URL; use format: https://github.com/owner/repo")
	ErrRepoNotFound      = errors.New("repository not found")
	ErrUnauthorized      = errors.New("GitHub authentication failed; check your token")
	ErrNoMergedPRs       = errors.New("no merged pull requests found in this repository")
	ErrNoPullRequestData = errors.New("could not fetch any pull request data; check repository permissions")
)

// UpstreamError is any other failure reported by the GitHub API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("GitHub API error (%d): %s", e.StatusCode, e.Message)
	}
	return "GitHub API error: " + e.Message
}
