package crates

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/integrations"
	"github.com/matzehuels/rustcap/pkg/version"
)

// DefaultBaseURL is the crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

// Client provides access to the crates.io package registry API.
// It is safe for concurrent use.
//
// crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client rooted at baseURL. An empty baseURL
// selects [DefaultBaseURL].
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{
		"User-Agent": integrations.UserAgent,
	}
	return &Client{
		Client:  integrations.NewClient(headers),
		baseURL: baseURL,
	}
}

// MaxVersion returns the crate's max_version as reported by crates.io.
//
// Returns:
//   - [version.Zero] if the crate does not exist (HTTP 404)
//   - an [errors.ErrCodeNetwork] error for other HTTP failures
//   - an [errors.ErrCodeInvalidResponse] error if max_version is missing or not semver
func (c *Client) MaxVersion(ctx context.Context, crate string) (*semver.Version, error) {
	var data crateResponse
	u := fmt.Sprintf("%s/crates/%s", c.baseURL, url.PathEscape(crate))
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return version.Zero, nil
		}
		return nil, err
	}

	if data.Crate.MaxVersion == "" {
		return nil, errors.New(errors.ErrCodeInvalidResponse, "crate %s: response has no max_version", crate)
	}
	v, err := semver.StrictNewVersion(data.Crate.MaxVersion)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "crate %s: max_version %q", crate, data.Crate.MaxVersion)
	}
	return v, nil
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
	} `json:"crate"`
}
