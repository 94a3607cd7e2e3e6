package sourcecontrol

import (
	"strings"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/version"
)

// TagRefPrefix is the namespace git keeps tags under.
const TagRefPrefix = "refs/tags/"

// TagRef returns the fully qualified reference for a tag name.
func TagRef(name string) string {
	return TagRefPrefix + strings.TrimPrefix(name, TagRefPrefix)
}

// TagList is an unordered list of tag names.
type TagList []string

// VersionTags parses every release tag in the list. Tags that are not
// release tags are returned separately, in list order.
func (tl TagList) VersionTags() (versions []version.Version, skipped []string) {
	versions = make([]version.Version, 0, len(tl))
	for _, name := range tl {
		v, err := version.ParseTag(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		versions = append(versions, v)
	}
	return versions, skipped
}
