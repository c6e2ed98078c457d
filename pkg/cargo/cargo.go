package cargo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Runner executes an external command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Standard error is streamed to Stderr
// when set, so cargo's progress output reaches the terminal.
type ExecRunner struct {
	Stderr io.Writer
}

// Run implements [Runner].
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, lastLine(msg))
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Cargo invokes cargo with an optional rustup toolchain override.
type Cargo struct {
	Toolchain string // e.g. "nightly"; empty uses the default toolchain
	Runner    Runner
}

// New returns a Cargo using toolchain and an [ExecRunner] writing to stderr.
func New(toolchain string, stderr io.Writer) *Cargo {
	return &Cargo{Toolchain: toolchain, Runner: ExecRunner{Stderr: stderr}}
}

// Args returns the full cargo argument list for a subcommand.
func (c *Cargo) Args(sub ...string) []string {
	if c.Toolchain == "" {
		return sub
	}
	return append([]string{"+" + c.Toolchain}, sub...)
}

// MetadataRaw runs `cargo metadata --format-version=1` in dir and returns
// the unparsed JSON.
func (c *Cargo) MetadataRaw(ctx context.Context, dir string) ([]byte, error) {
	out, err := c.Runner.Run(ctx, dir, "cargo", c.Args("metadata", "--format-version=1")...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "cargo metadata in %s", dir)
	}
	return out, nil
}

// Metadata runs `cargo metadata` in dir and parses the result.
func (c *Cargo) Metadata(ctx context.Context, dir string) (*Metadata, error) {
	out, err := c.MetadataRaw(ctx, dir)
	if err != nil {
		return nil, err
	}
	return ParseMetadata(out)
}

// Publish runs `cargo publish --allow-dirty --no-verify` in dir, the
// directory holding the rewritten manifest. Verification is skipped because
// the renamed dependencies it would build against may not be indexed yet.
func (c *Cargo) Publish(ctx context.Context, dir string) error {
	if _, err := c.Runner.Run(ctx, dir, "cargo", c.Args("publish", "--allow-dirty", "--no-verify")...); err != nil {
		return errors.Wrap(errors.ErrCodePublishRejected, err, "cargo publish in %s", dir)
	}
	return nil
}
