package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/rustcap/pkg/errors"
)

func TestNext(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"0.0.0", "1.0.0"},
		{"3.7.2", "4.0.0"},
		{"2.0.0", "3.0.0"},
		{"0.1.0", "1.0.0"},
		{"699.0.0", "700.0.0"},
		{"1.2.3-alpha.1", "2.0.0"},
		{"1.2.3+build.5", "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			got := Next(semver.MustParse(tt.current))
			if got.String() != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

func TestNext_Zero(t *testing.T) {
	if got := Next(Zero); got.String() != "1.0.0" {
		t.Errorf("Next(Zero) = %s, want 1.0.0", got)
	}
}

func TestMax(t *testing.T) {
	if got := Max(); !got.Equal(Zero) {
		t.Errorf("Max() = %s, want 0.0.0", got)
	}

	got := Max(semver.MustParse("1.0.0"), nil, semver.MustParse("2.0.0"), semver.MustParse("1.9.9"))
	if got.String() != "2.0.0" {
		t.Errorf("Max = %s, want 2.0.0", got)
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("12.0.0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Major() != 12 {
		t.Errorf("Major = %d, want 12", v.Major())
	}

	for _, bad := range []string{"", "v1.0.0", "1.0", "latest"} {
		if _, err := Parse(bad); !errors.Is(err, errors.ErrCodeInvalidVersion) {
			t.Errorf("Parse(%q) code = %v, want %v", bad, errors.GetCode(err), errors.ErrCodeInvalidVersion)
		}
	}
}
