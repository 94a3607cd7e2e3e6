// Package version provides the semantic version value type used for release
// tags and the bump arithmetic on top of it.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TagPrefix is the prefix every release tag carries.
const TagPrefix = "v"

// Floor is the version assumed when a repository has no release tags yet.
var Floor = mustParseTag("v0.0.0")

// Version is a value object pairing a parsed semantic version with the tag
// text it was read from.
type Version struct {
	sv  *semver.Version
	tag string
}

// ParseTag parses a release tag. The tag must start with "v" followed by a
// strict MAJOR.MINOR.PATCH version with optional pre-release and build
// metadata. Tags such as "v1", "bar" or "foo-v1.0.0" are rejected.
func ParseTag(tag string) (Version, error) {
	if !strings.HasPrefix(tag, TagPrefix) {
		return Version{}, ErrMissingPrefix
	}
	sv, err := semver.StrictNewVersion(strings.TrimPrefix(tag, TagPrefix))
	if err != nil {
		return Version{}, ErrInvalidVersion
	}
	return Version{sv: sv, tag: tag}, nil
}

func mustParseTag(tag string) Version {
	v, err := ParseTag(tag)
	if err != nil {
		panic(err)
	}
	return v
}

// parseLoose accepts a version with or without the tag prefix.
func parseLoose(s string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(s, TagPrefix))
}

// String returns the tag text the version was parsed from.
func (v Version) String() string {
	if v.sv == nil {
		return Floor.tag
	}
	return v.tag
}

// Semver returns the underlying parsed version.
func (v Version) Semver() *semver.Version {
	if v.sv == nil {
		return Floor.sv
	}
	return v.sv
}

// Compare orders versions by major, minor and patch, then by pre-release
// precedence. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	return v.Semver().Compare(other.Semver())
}

// GreaterThan returns true if v > other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Max returns the highest of the given versions, or Floor if none are given.
// When two tags denote the same version the first one wins.
func Max(versions ...Version) Version {
	latest := Floor
	found := false
	for _, v := range versions {
		if !found || v.GreaterThan(latest) {
			latest = v
			found = true
		}
	}
	return latest
}
