package analysis

import (
	"context"
	"errors"

	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/scoring"
)

// ErrUnexpected replaces any failure that is not part of the documented
// taxonomy, including recovered panics.
var ErrUnexpected = errors.New("unexpected error during analysis")

// Kind groups failures for callers that map them onto transport codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConfig
	KindEmpty
	KindUpstream
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindConfig:
		return "config"
	case KindEmpty:
		return "empty"
	case KindUpstream:
		return "upstream"
	case KindCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// Classify returns the Kind of err.
func Classify(err error) Kind {
	var upErr *git.UpstreamError
	switch {
	case errors.Is(err, git.ErrInvalidReference), errors.Is(err, scoring.ErrNoCommits):
		return KindValidation
	case errors.Is(err, git.ErrRepoNotFound):
		return KindNotFound
	case errors.Is(err, git.ErrUnauthorized):
		return KindAuth
	case errors.Is(err, git.ErrMissingToken), errors.Is(err, scoring.ErrMissingLLMCredential):
		return KindConfig
	case errors.Is(err, git.ErrNoMergedPRs), errors.Is(err, git.ErrNoPullRequestData), errors.Is(err, scoring.ErrNoDevelopersScored):
		return KindEmpty
	case errors.As(err, &upErr):
		return KindUpstream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}

// userFacing lists the sentinels whose own text is safe to show.
var userFacing = []error{
	git.ErrInvalidReference,
	git.ErrRepoNotFound,
	git.ErrUnauthorized,
	git.ErrMissingToken,
	git.ErrNoMergedPRs,
	git.ErrNoPullRequestData,
	scoring.ErrNoCommits,
	scoring.ErrMissingLLMCredential,
	scoring.ErrNoDevelopersScored,
}

// Message is the text shown to users for err. A wrapped sentinel shows only
// the sentinel's own text, so context added while wrapping stays in the
// logs. Internal failures collapse to ErrUnexpected.
func Message(err error) string {
	switch Classify(err) {
	case KindInternal:
		return ErrUnexpected.Error()
	case KindCancelled:
		return "analysis cancelled"
	case KindUpstream:
		var upErr *git.UpstreamError
		errors.As(err, &upErr)
		return upErr.Error()
	}
	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrUnexpected.Error()
}
