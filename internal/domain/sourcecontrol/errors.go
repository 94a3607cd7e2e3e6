package sourcecontrol

import "errors"

// Errors a TagPublisher or TagLister wraps so callers can tell why a
// release tag could not be read or published.
var (
	// ErrNotARepository means the git backend was pointed at a repo-path
	// without a checkout, so no tag can be listed or created locally.
	ErrNotARepository = errors.New("repo-path holds no git checkout")

	// ErrCommitNotFound means the merge commit the tag should point at is
	// unknown to the backend, typically a shallow checkout or an empty SHA.
	ErrCommitNotFound = errors.New("merge commit to tag is unknown")

	// ErrTagAlreadyExists means the release tag is already published. A
	// rerun for a merged pull request reports it instead of moving the tag.
	ErrTagAlreadyExists = errors.New("release tag already published")

	// ErrRemoteNotFound means the configured remote is missing from the
	// checkout, so a locally created tag cannot be pushed.
	ErrRemoteNotFound = errors.New("remote to push the release tag to is not configured")

	// ErrPushFailed means the remote rejected or dropped the tag push. The
	// local tag exists, the release does not.
	ErrPushFailed = errors.New("release tag push failed")

	// ErrAuthenticationRequired means the remote refused the tag push for
	// missing or insufficient credentials; the token needs contents: write.
	ErrAuthenticationRequired = errors.New("remote refused tag push credentials")
)
