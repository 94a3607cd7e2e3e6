package release

import (
	"fmt"
	"strings"
)

// Marker identifies status comments written by this action.
const Marker = "🛠️ _Auto tagging "

const (
	footerEnabled  = "🛠️ _Auto tagging enabled_ with label "
	footerDisabled = "🛠️ _Auto tagging disabled_"
	paragraph      = "\n\n"
)

// Template placeholders.
const (
	PlaceholderNextVersion = "<next-version>"
	PlaceholderRepoURL     = "<repo-url>"
)

// Templates holds the configurable status comment bodies.
type Templates struct {
	Release  string
	Released string
	Unmerged string
}

// DefaultTemplates returns the built-in comment templates.
func DefaultTemplates() Templates {
	return Templates{
		Release:  "🚀 Merging this PR will release `" + PlaceholderNextVersion + "`",
		Released: "🚀 This PR has been released as [`" + PlaceholderNextVersion + "`](" + PlaceholderRepoURL + ")",
		Unmerged: "🚀 This PR has been closed unmerged. No new release will be created for these changes",
	}
}

// Render substitutes every placeholder occurrence in tmpl.
func Render(tmpl, nextVersion, repoURL string) string {
	return strings.NewReplacer(
		PlaceholderNextVersion, nextVersion,
		PlaceholderRepoURL, repoURL,
	).Replace(tmpl)
}

// ReleaseURL returns the web URL of the release page for tag.
func ReleaseURL(serverURL, owner, repo, tag string) string {
	return fmt.Sprintf("%s/%s/%s/releases/tag/%s", strings.TrimSuffix(serverURL, "/"), owner, repo, tag)
}

// Code formats text as inline markdown code.
func Code(text string) string {
	return "`" + text + "`"
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = Code(item)
	}
	return strings.Join(quoted, ", ")
}

// EnabledFooter is appended to comments of runs that will tag or have tagged.
func EnabledFooter(label string) string {
	return paragraph + footerEnabled + Code(label)
}

// DisabledFooter is appended to comments of runs that will not tag.
func DisabledFooter() string {
	return paragraph + footerDisabled
}

// PreviewBody renders the comment for an open pull request.
func PreviewBody(t Templates, next, repoURL, label string, workflows []string) string {
	var sb strings.Builder
	sb.WriteString(Render(t.Release, next, repoURL))
	if len(workflows) > 0 {
		sb.WriteString(paragraph)
		sb.WriteString("Merging will trigger workflows " + codeList(workflows))
	}
	sb.WriteString(EnabledFooter(label))
	return sb.String()
}

// ReleasedBody renders the comment for a merged pull request.
func ReleasedBody(t Templates, next, repoURL, label string, workflows []string) string {
	var sb strings.Builder
	sb.WriteString(Render(t.Released, next, repoURL))
	if len(workflows) > 0 {
		sb.WriteString(paragraph)
		sb.WriteString("Triggering workflows " + codeList(workflows))
	}
	sb.WriteString(EnabledFooter(label))
	return sb.String()
}

// UnmergedBody renders the comment for a pull request closed without merging.
func UnmergedBody(t Templates, next, repoURL string) string {
	return Render(t.Unmerged, next, repoURL) + DisabledFooter()
}

// AmbiguousBody renders the comment asking for a single bump label.
func AmbiguousBody(labels []string) string {
	return fmt.Sprintf("Found %d bump labels (%s), please make sure you only add one bump label.",
		len(labels), codeList(labels)) + DisabledFooter()
}

// NoLabelsBody renders the comment shown after the last bump label was removed.
func NoLabelsBody(configured []string) string {
	return fmt.Sprintf("No bump label present, add one of %s to release these changes.",
		codeList(configured)) + DisabledFooter()
}
