package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/projectsyn/pr-label-tag-action/internal/errors"
)

var workflowCommandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// ReportError writes err for the user. Inside GitHub Actions it is emitted
// as an error workflow command so it shows up as an annotation on the run.
func ReportError(w io.Writer, err error, githubActions bool) {
	if err == nil {
		return
	}

	msg := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) {
		msg = e.Summary()
	}
	msg = errors.RedactSensitive(msg)

	if githubActions {
		fmt.Fprintf(w, "::error::%s\n", workflowCommandEscaper.Replace(msg))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
}

// IsGitHubActions reports whether the process runs as an Actions step.
func IsGitHubActions() bool {
	return isGitHubActions()
}
