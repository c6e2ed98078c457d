package github

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/rustcap/pkg/errors"
)

const testSHA = "0123456789abcdef0123456789abcdef01234567"

func TestClient_LatestCommit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/rust-lang/rust/commits/master" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.VERSION.sha" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(testSHA + "\n"))
	}))
	defer server.Close()

	c := NewClient("secret").WithBaseURLs(server.URL, "")

	sha, err := c.LatestCommit(context.Background(), "rust-lang/rust", "master")
	if err != nil {
		t.Fatalf("LatestCommit failed: %v", err)
	}
	if sha != testSHA {
		t.Errorf("LatestCommit = %q, want %q", sha, testSHA)
	}
}

func TestClient_LatestCommit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		repo   string
		status int
		body   string
		code   errors.Code
	}{
		{"bad repo ref", "rust", http.StatusOK, testSHA, errors.ErrCodeInvalidInput},
		{"unknown branch", "rust-lang/rust", http.StatusNotFound, "", errors.ErrCodeNotFound},
		{"rate limited", "rust-lang/rust", http.StatusForbidden, "", errors.ErrCodeNetwork},
		{"not a sha", "rust-lang/rust", http.StatusOK, "<html>", errors.ErrCodeInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient("").WithBaseURLs(server.URL, "").LatestCommit(context.Background(), tt.repo, "master")
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestClient_Tarball(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rust-lang/rust/archive/"+testSHA+".tar.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	c := NewClient("").WithBaseURLs("", server.URL)

	body, err := c.Tarball(context.Background(), "rust-lang/rust", testSHA)
	if err != nil {
		t.Fatalf("Tarball failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "archive-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestClient_TarballRejectsShortCommit(t *testing.T) {
	_, err := NewClient("").Tarball(context.Background(), "rust-lang/rust", "abc123")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"rust-lang/rust", "rust-lang", "rust", false},
		{"matzehuels/rustcap", "matzehuels", "rustcap", false},
		{"rust", "", "", true},
		{"-bad/rust", "", "", true},
		{"rust-lang/", "", "", true},
		{"rust-lang/ru st", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			owner, repo, err := ParseRepoRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoRef(%q) = %q, %q, want %q, %q", tt.ref, owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestValidateCommit(t *testing.T) {
	if err := ValidateCommit(testSHA); err != nil {
		t.Errorf("ValidateCommit(valid) = %v", err)
	}
	for _, bad := range []string{"", "abc", testSHA + "0", "0123456789ABCDEF0123456789abcdef01234567"} {
		if err := ValidateCommit(bad); err == nil {
			t.Errorf("ValidateCommit(%q) = nil, want error", bad)
		}
	}
}
