// Package security provides secret masking for log and command output.
package security

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/projectsyn/pr-label-tag-action/internal/errors"
)

const redacted = "[REDACTED]"

// Masker redacts credentials from output. It combines the pattern based
// redaction of errors.RedactSensitive with a list of literal secrets, such
// as the configured token, which may not match any known token format.
type Masker struct {
	mu      sync.RWMutex
	enabled bool
	secrets []string
}

// NewMasker creates a disabled Masker.
func NewMasker() *Masker {
	return &Masker{}
}

// Enable enables masking.
func (m *Masker) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

// IsEnabled returns true if masking is enabled.
func (m *Masker) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddSecret registers a literal value to be redacted. Empty values are ignored.
func (m *Masker) AddSecret(secret string) {
	if secret == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets = append(m.secrets, secret)
}

// EnableInCI enables masking if running in a CI environment, judged by
// getenv. Passing nil uses os.Getenv.
func (m *Masker) EnableInCI(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	}

	for _, env := range ciEnvVars {
		if getenv(env) != "" {
			m.Enable()
			return
		}
	}
}

// Mask redacts sensitive data from a string if masking is enabled.
func (m *Masker) Mask(s string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.enabled {
		return s
	}
	for _, secret := range m.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return errors.RedactSensitive(s)
}

// MaskedWriter wraps an io.Writer to mask sensitive data.
type MaskedWriter struct {
	w      io.Writer
	masker *Masker
}

// NewMaskedWriter creates a MaskedWriter that writes through masker.
func NewMaskedWriter(w io.Writer, masker *Masker) *MaskedWriter {
	return &MaskedWriter{w: w, masker: masker}
}

// Write implements io.Writer, masking sensitive data before writing.
func (mw *MaskedWriter) Write(p []byte) (n int, err error) {
	masked := mw.masker.Mask(string(p))
	// Report the original length to satisfy the io.Writer contract.
	if _, err = io.WriteString(mw.w, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}

// AddMask asks the GitHub Actions runner to mask secret in the job log
// with an add-mask workflow command.
func AddMask(w io.Writer, secret string) error {
	if secret == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "::add-mask::%s\n", secret)
	return err
}
