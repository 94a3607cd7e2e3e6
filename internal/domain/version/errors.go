package version

import "errors"

// Domain errors for version operations.
var (
	// ErrInvalidVersion indicates a string that is not a strict semantic version.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrMissingPrefix indicates a tag without the leading "v".
	ErrMissingPrefix = errors.New("tag does not start with \"v\"")

	// ErrInvalidBumpKind indicates a bump kind other than patch, minor or major.
	ErrInvalidBumpKind = errors.New("invalid bump kind")
)
