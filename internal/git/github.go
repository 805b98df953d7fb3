package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/joescharf/gitval/internal/metrics"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/textutil"
)

// DiffTruncationMarker is appended to diffs cut at the configured limit.
const DiffTruncationMarker = "\n... [truncated at %d chars]"

const (
	DefaultListPageSize    = 20
	DefaultMaxPullRequests = 10
	DefaultDiffMaxChars    = 1000
)

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	Token           string
	BaseURL         string
	ListPageSize    int
	MaxPullRequests int
	DiffMaxChars    int
	HTTPClient      *http.Client
}

// FetchResult is the outcome of a successful fetch.
type FetchResult struct {
	Commits  []models.CommitRecord
	RepoName string
	Skipped  []models.Skip
}

// Fetcher turns the most recently merged pull requests of a repository into
// commit records using the GitHub REST API.
type Fetcher struct {
	client *github.Client
	opts   Options
}

// NewFetcher builds a Fetcher. A missing token is reported by Fetch, not here,
// so a fetcher can always be constructed from configuration.
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.ListPageSize <= 0 {
		opts.ListPageSize = DefaultListPageSize
	}
	if opts.MaxPullRequests <= 0 {
		opts.MaxPullRequests = DefaultMaxPullRequests
	}
	if opts.DiffMaxChars <= 0 {
		opts.DiffMaxChars = DefaultDiffMaxChars
	}

	httpClient := opts.HTTPClient
	if opts.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}
	client := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}

	return &Fetcher{client: client, opts: opts}, nil
}

// Fetch resolves input, lists recently closed pull requests, and converts up
// to MaxPullRequests merged ones into commit records. Requests run one at a
// time. A pull request whose detail or diff cannot be fetched is skipped and
// reported in FetchResult.Skipped; a cancelled ctx aborts the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, input string) (*FetchResult, error) {
	if f.opts.Token == "" {
		return nil, ErrMissingToken
	}
	ref, err := Resolve(input)
	if err != nil {
		return nil, err
	}

	merged, err := f.listMerged(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, ErrNoMergedPRs
	}

	result := &FetchResult{RepoName: ref.String()}
	for _, pr := range merged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, reason, err := f.fetchOne(ctx, ref, pr.GetNumber())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			item := fmt.Sprintf("PR-%d", pr.GetNumber())
			slog.Warn("skipping pull request", "item", item, "reason", reason, "error", err)
			metrics.PullRequestsSkipped.WithLabelValues(reason).Inc()
			result.Skipped = append(result.Skipped, models.Skip{Item: item, Reason: fmt.Sprintf("%s: %v", reason, err)})
			continue
		}
		result.Commits = append(result.Commits, *rec)
	}

	if len(result.Commits) == 0 {
		return nil, ErrNoPullRequestData
	}
	metrics.PullRequestsFetched.Add(float64(len(result.Commits)))
	return result, nil
}

func (f *Fetcher) listMerged(ctx context.Context, ref Ref) ([]*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: f.opts.ListPageSize},
	}
	prs, resp, err := f.client.PullRequests.List(ctx, ref.Owner, ref.Repo, opts)
	if err != nil {
		return nil, classify(resp, err)
	}

	var merged []*github.PullRequest
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		merged = append(merged, pr)
		if len(merged) == f.opts.MaxPullRequests {
			break
		}
	}
	return merged, nil
}

// fetchOne returns the skip reason label alongside any error.
func (f *Fetcher) fetchOne(ctx context.Context, ref Ref, number int) (*models.CommitRecord, string, error) {
	pr, _, err := f.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, number)
	if err != nil {
		return nil, metrics.ReasonDetail, err
	}

	diff, _, err := f.client.PullRequests.GetRaw(ctx, ref.Owner, ref.Repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return nil, metrics.ReasonDiff, err
	}

	login := pr.GetUser().GetLogin()
	author := login
	if author == "" {
		author = "Unknown"
	}
	email := f.authorEmail(ctx, ref, number)
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if email == "" {
		email = author + "@github.com"
	}

	date := pr.GetMergedAt().Time
	if date.IsZero() {
		date = pr.GetCreatedAt().Time
	}

	marker := fmt.Sprintf(DiffTruncationMarker, f.opts.DiffMaxChars)
	return &models.CommitRecord{
		SHA:          fmt.Sprintf("PR-%d", number),
		Author:       author,
		AuthorEmail:  email,
		Date:         date.UTC().Truncate(time.Second),
		Message:      pr.GetTitle(),
		Diff:         textutil.Truncate(diff, f.opts.DiffMaxChars, marker),
		FilesChanged: pr.GetChangedFiles(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
	}, "", nil
}

// authorEmail reads the author email of the pull request's first commit.
// Any failure yields "" so the caller falls back to the login address.
func (f *Fetcher) authorEmail(ctx context.Context, ref Ref, number int) string {
	commits, _, err := f.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, number, &github.ListOptions{PerPage: 1})
	if err != nil {
		slog.Debug("commit email lookup failed", "item", fmt.Sprintf("PR-%d", number), "error", err)
		return ""
	}
	if len(commits) == 0 {
		return ""
	}
	return commits[0].GetCommit().GetAuthor().GetEmail()
}

// classify maps a list failure onto the package's sentinel errors.
func classify(resp *github.Response, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	switch status {
	case http.StatusNotFound:
		return ErrRepoNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}

	// go-github re-populates the body after decoding the error, so the raw
	// text is still readable here.
	msg := err.Error()
	if status != 0 && resp.Body != nil {
		if data, readErr := io.ReadAll(resp.Body); readErr == nil && len(bytes.TrimSpace(data)) > 0 {
			msg = string(bytes.TrimSpace(data))
		}
	}
	return &UpstreamError{StatusCode: status, Message: msg}
}
