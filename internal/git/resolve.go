package git

import (
	"regexp"
	"strings"
)

// Ref identifies a GitHub repository.
type Ref struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// String returns the canonical "owner/repo" name.
func (r Ref) String() string {
	return r.Owner + "/" + r.Repo
}

var (
	// https://github.com/owner/repo(.git) followed by a path, query or
	// fragment; www. and SSH forms included.
	urlPattern = regexp.MustCompile(`github\.com[/:]([^/\s?#]+)/([^/\s?#]+?)(?:\.git)?(?:[/?#].*)?$`)
	// owner/repo with an optional .git suffix or trailing slash.
	barePattern = regexp.MustCompile(`^([^/\s:?#]+)/([^/\s?#]+?)(?:\.git)?/?$`)
)

// Resolve parses a repository URL or a bare "owner/repo" string.
// It returns ErrInvalidReference when neither form matches.
func Resolve(input string) (Ref, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Ref{}, ErrInvalidReference
	}

	if strings.Contains(s, "github.com") {
		if m := urlPattern.FindStringSubmatch(s); m != nil {
			return Ref{Owner: m[1], Repo: m[2]}, nil
		}
		return Ref{}, ErrInvalidReference
	}

	if m := barePattern.FindStringSubmatch(s); m != nil {
		return Ref{Owner: m[1], Repo: m[2]}, nil
	}
	return Ref{}, ErrInvalidReference
}
