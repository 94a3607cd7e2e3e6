package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// Bump computes the version following current for the given bump kind.
// current may carry the "v" prefix or not; the result always does.
//
//	patch: x.y.z -> x.y.(z+1)
//	minor: x.y.z -> x.(y+1).0
//	major: x.y.z -> (x+1).0.0
//
// A pre-release is released instead of skipped when the components the
// bump resets are already zero: v1.2.3-rc.1 patch, v1.3.0-rc.1 minor and
// v2.0.0-rc.1 major or minor all drop the pre-release only.
func Bump(current string, kind bump.Kind) (string, error) {
	const op = "version.Bump"

	fail := func(cause error) error {
		return rperrors.VersionWrap(cause, op,
			fmt.Sprintf("unable to bump current version %q to next %s version", current, kind))
	}

	sv, err := parseLoose(current)
	if err != nil {
		return "", fail(ErrInvalidVersion)
	}

	pre := sv.Prerelease() != ""
	var next semver.Version
	switch kind {
	case bump.Patch:
		next = sv.IncPatch()
	case bump.Minor:
		if pre && sv.Patch() == 0 {
			next = release(sv)
		} else {
			next = sv.IncMinor()
		}
	case bump.Major:
		if pre && sv.Minor() == 0 && sv.Patch() == 0 {
			next = release(sv)
		} else {
			next = sv.IncMajor()
		}
	default:
		return "", fail(ErrInvalidBumpKind)
	}

	return TagPrefix + next.String(), nil
}

// release strips pre-release and build metadata from sv.
func release(sv *semver.Version) semver.Version {
	return *semver.New(sv.Major(), sv.Minor(), sv.Patch(), "", "")
}
