// Package errors provides structured error types for mend.
// These errors record which operation failed and what category of failure it was,
// which is how the resolution session decides what to report to the user.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindIO
	KindConfig
	KindGit
	KindDetection
	KindHook
	KindExpired
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "configuration error"
	case KindGit:
		return "git error"
	case KindDetection:
		return "detection error"
	case KindHook:
		return "hook error"
	case KindExpired:
		return "expired"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for mend.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...any) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of the outermost *Error in err's chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Cause returns the message of the innermost error in the chain, which for
// command failures is the text the command itself printed.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// Detection errors

func DetectionFailed(root string, err error) error {
	return E(Op("conflict.Detect"), KindDetection, fmt.Sprintf("failed to list unmerged files in %s", root), err)
}

// Hook errors

func HookFailed(hook string, err error) error {
	return E(Op("session.Hook"), KindHook, fmt.Sprintf("%s failed", hook), err)
}

// Git errors

// GitCommandFailed records a failed git invocation. When git printed
// something on stderr, that text becomes the underlying error.
func GitCommandFailed(args []string, stderr string, err error) error {
	cmd := "git " + strings.Join(args, " ")
	if msg := strings.TrimSpace(stderr); msg != "" {
		return E(Op("git.Run"), KindGit, cmd, errors.New(msg))
	}
	return E(Op("git.Run"), KindGit, cmd, err)
}

func GitNotRepo(path string) error {
	return E(Op("git.GetGitRoot"), KindInvalid, fmt.Sprintf("%s is not a git repository", path))
}

func GitOperationFailed(operation string, err error) error {
	return E(Op("git."+operation), KindGit, fmt.Sprintf("%s failed", operation), err)
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

// Notification errors

func NotificationExpired(id string) error {
	return E(Op("notification.Activate"), KindExpired, fmt.Sprintf("notification %s has expired", id))
}

func NotificationNotFound(id string) error {
	return E(Op("notification.Activate"), KindNotFound, fmt.Sprintf("notification %s not found", id))
}

func ActionNotFound(id, label string) error {
	return E(Op("notification.Activate"), KindNotFound, fmt.Sprintf("notification %s has no action %q", id, label))
}

// Merge tool errors

func MarkersRemain(path string, conflicts int) error {
	return E(Op("mergetool.MarkResolved"), KindInvalid, fmt.Sprintf("%s still has %d unresolved conflict(s)", path, conflicts))
}

func PreviewFailed(path string, err error) error {
	return E(Op("mergetool.Preview"), KindIO, fmt.Sprintf("failed to read %s", path), err)
}

// Background task errors

func TaskCanceled(name string, err error) error {
	return E(Op("background.Go"), KindCanceled, fmt.Sprintf("task %s dropped before start", name), err)
}
