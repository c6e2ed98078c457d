package github

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/integrations"
)

const (
	// DefaultAPIURL is the GitHub REST API root.
	DefaultAPIURL = "https://api.github.com"
	// DefaultArchiveURL is where commit tarballs are served from.
	DefaultArchiveURL = "https://github.com"
)

// Client provides access to the GitHub API with optional authentication.
type Client struct {
	*integrations.Client
	download   *integrations.Client
	baseURL    string
	archiveURL string
}

// NewClient creates a GitHub client. Pass an empty token for unauthenticated
// requests.
func NewClient(token string) *Client {
	headers := map[string]string{"User-Agent": integrations.UserAgent}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:     integrations.NewClient(headers),
		download:   integrations.NewClientWithHTTP(integrations.NewHTTPClient(0), headers),
		baseURL:    DefaultAPIURL,
		archiveURL: DefaultArchiveURL,
	}
}

// WithBaseURLs points the client at alternative API and archive hosts.
// Empty arguments keep the current value.
func (c *Client) WithBaseURLs(api, archive string) *Client {
	if api != "" {
		c.baseURL = strings.TrimSuffix(api, "/")
	}
	if archive != "" {
		c.archiveURL = strings.TrimSuffix(archive, "/")
	}
	return c
}

// LatestCommit returns the SHA of the head commit of branch in repo
// ("owner/name").
func (c *Client) LatestCommit(ctx context.Context, repo, branch string) (string, error) {
	owner, name, err := ParseRepoRef(repo)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, owner, name, branch)
	body, err := c.GetText(ctx, url, map[string]string{"Accept": "application/vnd.github.VERSION.sha"})
	if err != nil {
		return "", err
	}
	sha := strings.TrimSpace(body)
	if err := ValidateCommit(sha); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidResponse, err, "latest commit of %s@%s", repo, branch)
	}
	return sha, nil
}

// Tarball opens the gzip-compressed source archive of commit. The caller
// must close the returned body.
func (c *Client) Tarball(ctx context.Context, repo, commit string) (io.ReadCloser, error) {
	owner, name, err := ParseRepoRef(repo)
	if err != nil {
		return nil, err
	}
	if err := ValidateCommit(commit); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s/%s/archive/%s.tar.gz", c.archiveURL, owner, name, commit)
	return c.download.Open(ctx, url, nil)
}
