// Package errs defines Volta's closed error-kind enumeration
// and an Error type that carries kind, operation, and tool context
// through to the CLI's error-reporting tone.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds the core can surface.
type Kind int

const (
	NetworkError Kind = iota
	DownloadCorrupt
	HookFailed
	HookBadSpec
	NoSuchVersion
	NoPlatform
	NotInProject
	BypassToolNotFound
	NoSuchTool
	RecursionLimit
	ConcurrentFetchTimeout
	ArchiveCorrupt
	Unsupported
	PermissionDenied
	Filesystem
	BadManifest
	BadHooks
	PackageInstallFailed
)

var names = map[Kind]string{
	NetworkError:           "NetworkError",
	DownloadCorrupt:        "DownloadCorrupt",
	HookFailed:             "HookFailed",
	HookBadSpec:            "HookBadSpec",
	NoSuchVersion:          "NoSuchVersion",
	NoPlatform:             "NoPlatform",
	NotInProject:           "NotInProject",
	BypassToolNotFound:     "BypassToolNotFound",
	NoSuchTool:             "NoSuchTool",
	RecursionLimit:         "RecursionLimit",
	ConcurrentFetchTimeout: "ConcurrentFetchTimeout",
	ArchiveCorrupt:         "ArchiveCorrupt",
	Unsupported:            "Unsupported",
	PermissionDenied:       "PermissionDenied",
	Filesystem:             "Filesystem",
	BadManifest:            "BadManifest",
	BadHooks:               "BadHooks",
	PackageInstallFailed:   "PackageInstallFailed",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UnknownError"
}

// ExitCode maps an error Kind to the fixed exit code mapping required by
// §6 when the lifecycle (rather than an exec-replaced child) determines the
// process exit status.
func (k Kind) ExitCode() int {
	switch k {
	case PackageInstallFailed:
		return 1
	case NoSuchTool, BypassToolNotFound:
		return 127
	case RecursionLimit:
		return 126
	default:
		return 1
	}
}

// Error is the concrete error type carried through the core. It always
// names the failing operation and the relevant tool/version when known, and
// carries an optional suggested next action, per §7's propagation policy.
type Error struct {
	Kind      Kind
	Operation string
	Tool      string
	Version   string
	Suggest   string
	Inner     error
	ExitCode  int // only meaningful for PackageInstallFailed
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s failed", e.Kind, e.Operation)
	if e.Tool != "" {
		if e.Version != "" {
			msg += fmt.Sprintf(" (%s %s)", e.Tool, e.Version)
		} else {
			msg += fmt.Sprintf(" (%s)", e.Tool)
		}
	}
	if e.Inner != nil {
		msg += ": " + e.Inner.Error()
	}
	if e.Suggest != "" {
		msg += "\n  suggestion: " + e.Suggest
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Inner }

// New builds an Error for the given kind and operation.
func New(kind Kind, operation string, inner error) *Error {
	return &Error{Kind: kind, Operation: operation, Inner: inner}
}

// WithTool attaches tool/version context to an Error and returns it,
// allowing fluent construction at the call site.
func (e *Error) WithTool(tool, version string) *Error {
	e.Tool = tool
	e.Version = version
	return e
}

// WithSuggestion attaches a suggested next action.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggest = s
	return e
}

// As reports whether err is (or wraps) an *Error of the given kind.
func As(err error, kind Kind) bool {
	var ve *Error
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Kind == kind
}
