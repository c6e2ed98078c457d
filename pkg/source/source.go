// Package source materializes an upstream commit on disk.
//
// A checkout lives at {workDir}/{repo}-{commit}, which is the top-level
// directory GitHub puts in its commit tarballs. Once a checkout is complete a
// .ok marker is written next to the sources, and later runs for the same
// commit reuse the directory without downloading anything.
//
// Publishing edits manifests and entry points inside the checkout. Before the
// first edit of a file its unpacked content is saved under .rustcap-orig, and
// a reused checkout is reset from those copies, so every run starts from the
// tree as it was unpacked.
//
// The checkout's workspace Cargo.toml is renamed to Cargo.toml.bk so that each
// compiler crate resolves as its own workspace root under `cargo metadata` and
// `cargo publish`.
package source

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Marker is the file written once a checkout is complete.
const Marker = ".ok"

// Originals is the directory, relative to the checkout root, holding the
// unpacked content of every file a run has changed.
const Originals = ".rustcap-orig"

// Fetcher opens the gzip-compressed tarball of a commit.
type Fetcher interface {
	Tarball(ctx context.Context, repo, commit string) (io.ReadCloser, error)
}

// Checkout is an unpacked upstream tree.
type Checkout struct {
	Repo   string // owner/name
	Commit string
	Dir    string // absolute path of the tree root
}

// Path joins rel onto the checkout root.
func (c *Checkout) Path(rel string) string {
	return filepath.Join(c.Dir, filepath.FromSlash(rel))
}

// Restore puts the file at path back to its unpacked content. The first
// call for a path saves that content instead, so callers restore a file right
// before changing it. A missing file is left alone.
func (c *Checkout) Restore(path string) error {
	saved, err := c.saved(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(saved)
	if err == nil {
		return writeBytes(path, data)
	}
	if !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "read %s", saved)
	}

	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return writeBytes(saved, data)
}

// Reset restores every file saved by [Checkout.Restore].
func (c *Checkout) Reset() error {
	base := filepath.Join(c.Dir, Originals)
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return writeBytes(filepath.Join(c.Dir, rel), data)
	})
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "reset checkout %s", c.Dir)
	}
	return nil
}

func (c *Checkout) saved(path string) (string, error) {
	rel, err := filepath.Rel(c.Dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "%s is outside checkout %s", path, c.Dir)
	}
	return filepath.Join(c.Dir, Originals, rel), nil
}

// Dir returns where the checkout of repo at commit lives under workDir.
func Dir(workDir, repo, commit string) string {
	return filepath.Join(workDir, path.Base(repo)+"-"+commit)
}

// Ready reports whether a complete checkout exists.
func Ready(workDir, repo, commit string) bool {
	_, err := os.Stat(filepath.Join(Dir(workDir, repo, commit), Marker))
	return err == nil
}

// Fetch returns the checkout of repo at commit, downloading and unpacking it
// through f unless a complete checkout already exists. The returned bool
// reports whether a download happened.
func Fetch(ctx context.Context, f Fetcher, workDir, repo, commit string) (*Checkout, bool, error) {
	dir := Dir(workDir, repo, commit)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	co := &Checkout{Repo: repo, Commit: commit, Dir: abs}
	if Ready(workDir, repo, commit) {
		if err := co.Reset(); err != nil {
			return nil, false, err
		}
		return co, false, nil
	}

	// A directory without the marker is a leftover from an interrupted run.
	if err := os.RemoveAll(abs); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "remove partial checkout %s", abs)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidPath, err, "create work dir %s", workDir)
	}

	body, err := f.Tarball(ctx, repo, commit)
	if err != nil {
		return nil, false, err
	}
	defer body.Close()

	if err := Unpack(body, workDir); err != nil {
		return nil, false, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, false, errors.New(errors.ErrCodeInvalidResponse, "tarball for %s@%s has no %s directory", repo, commit, filepath.Base(abs))
	}
	if err := Finalize(abs); err != nil {
		return nil, false, err
	}
	return co, true, nil
}

// Finalize renames the workspace manifest out of the way and writes the
// completion marker.
func Finalize(dir string) error {
	ws := filepath.Join(dir, "Cargo.toml")
	if _, err := os.Stat(ws); err == nil {
		if err := os.Rename(ws, ws+".bk"); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "rename workspace manifest")
		}
	}
	if err := os.WriteFile(filepath.Join(dir, Marker), nil, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s marker", Marker)
	}
	return nil
}

// Unpack extracts a gzip-compressed tar stream into dst. Entries that would
// land outside dst are rejected.
func Unpack(r io.Reader, dst string) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidResponse, err, "open gzip stream")
	}
	defer zr.Close()

	root, err := filepath.Abs(dst)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dst)
	}

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidResponse, err, "read tar entry")
		}

		target, err := within(root, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "create %s", target)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return errors.New(errors.ErrCodeInvalidPath, "tar entry %q links to absolute path %q", hdr.Name, hdr.Linkname)
			}
			if _, err := within(root, path.Join(path.Dir(hdr.Name), hdr.Linkname)); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(target))
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "symlink %s", target)
			}
		default:
			// pax global headers, hard links and devices carry nothing we build from
		}
	}
}

func within(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "tar entry %q escapes %s", name, root)
	}
	return target, nil
}

func writeBytes(target string, data []byte) error {
	return writeFile(target, bytes.NewReader(data), 0o644)
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(target))
	}
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", target)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", target)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", target)
	}
	return nil
}
