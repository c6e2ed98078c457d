// Package version decides the version number shared by every package in a
// publishing run.
//
// Published packages track a moving upstream with no SemVer discipline of
// their own, so every run bumps the major version: compatibility between two
// published versions is never promised.
package version

import (
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Zero is the version reported for a package that was never published.
var Zero = semver.New(0, 0, 0, "", "")

// Parse parses a published version string.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "parse version %q", s)
	}
	return v, nil
}

// Next returns current with the major component incremented and minor,
// patch and any pre-release or build metadata cleared.
func Next(current *semver.Version) *semver.Version {
	return semver.New(current.Major()+1, 0, 0, "", "")
}

// Max returns the greatest of versions, or [Zero] if there are none.
func Max(versions ...*semver.Version) *semver.Version {
	out := Zero
	for _, v := range versions {
		if v != nil && v.GreaterThan(out) {
			out = v
		}
	}
	return out
}
