// Package errors provides structured error types for pr-label-tag.
// It implements error classification, wrapping and redaction of secrets.
package errors

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind represents the category of an error.
type Kind uint8

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindConfig indicates a missing or invalid configuration value.
	KindConfig
	// KindContext indicates the run was triggered by an unsupported event.
	KindContext
	// KindUpstream indicates a failing tag, label, comment or workflow listing.
	KindUpstream
	// KindVersion indicates a version that could not be parsed or bumped.
	KindVersion
	// KindPublish indicates a failure creating or pushing a tag, or
	// dispatching a workflow or mutating a comment.
	KindPublish
	// KindState indicates an invalid run state transition.
	KindState
	// KindInternal indicates an internal consistency error.
	KindInternal
)

// String returns a human-readable string for the error kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindContext:
		return "context"
	case KindUpstream:
		return "upstream"
	case KindVersion:
		return "version"
	case KindPublish:
		return "publish"
	case KindState:
		return "state"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the standard error type for pr-label-tag.
type Error struct {
	// Kind is the category of the error.
	Kind Kind
	// Op is the operation being performed when the error occurred.
	Op string
	// Message is a human-readable error message.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches this error.
// A target without Op matches on Kind alone (sentinel pattern).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Op == t.Op
}

// Summary returns the message of the outermost error without the operation
// prefix. It is what gets surfaced to users as the run's failure reason.
func (e *Error) Summary() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// New creates a new Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind Kind, op string, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// GetKind returns the Kind of an error.
// If the error is not an *Error, it returns KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// Config creates a configuration error.
func Config(op, message string) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: message}
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(err error, op, message string) *Error {
	return Wrap(err, KindConfig, op, message)
}

// Context creates an error for runs triggered by the wrong event.
func Context(op, message string) *Error {
	return &Error{Kind: KindContext, Op: op, Message: message}
}

// UpstreamWrap wraps a failing collaborator call.
func UpstreamWrap(err error, op, message string) *Error {
	return Wrap(err, KindUpstream, op, message)
}

// VersionWrap wraps an error as a versioning error.
func VersionWrap(err error, op, message string) *Error {
	return Wrap(err, KindVersion, op, message)
}

// PublishWrap wraps an error as a publish error.
func PublishWrap(err error, op, message string) *Error {
	return Wrap(err, KindPublish, op, message)
}

// State creates a state machine error.
func State(op, message string) *Error {
	return &Error{Kind: KindState, Op: op, Message: message}
}

// Internal creates an internal error.
func Internal(op, message string) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: message}
}

// Sensitive data redaction patterns.
// Word boundaries keep the patterns from matching substrings of unrelated text.
var sensitivePatterns = []*regexp.Regexp{
	// GitHub tokens: ghp_..., gho_..., ghs_..., ghr_..., ghu_...
	regexp.MustCompile(`\bgh[poshru]_[a-zA-Z0-9]{36,}\b`),
	// Fine-grained personal access tokens
	regexp.MustCompile(`\bgithub_pat_[a-zA-Z0-9_]{22,}\b`),
	// Generic bearer tokens
	regexp.MustCompile(`\bBearer\s+[a-zA-Z0-9_.-]{20,}\b`),
	// Basic auth with password in URL
	regexp.MustCompile(`://[^:/\s]+:[^@/\s]+@`),
}

// RedactSensitive removes tokens and credentials from a message.
func RedactSensitive(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}
