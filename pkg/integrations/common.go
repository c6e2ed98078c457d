package integrations

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds metadata requests. Downloads use a client without an
// overall timeout and rely on the request context instead.
const DefaultTimeout = 30 * time.Second

// UserAgent identifies rustcap to registries. crates.io rejects requests
// without one.
const UserAgent = "rustcap (https://github.com/matzehuels/rustcap)"

// NewHTTPClient creates an HTTP client with the given overall timeout.
// A zero timeout means no limit.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
