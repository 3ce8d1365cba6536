package signals

import (
	"errors"
	"fmt"
)

// Dispatch error taxonomy. These are data, not faults: every Send/SendTree
// call returns them inside per-target outcomes so a bad target can never
// crash the session loop.
var (
	ErrProtectedTarget     = errors.New("protected target")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("process not found")
	ErrPlatformUnsupported = errors.New("signal not supported on this platform")
)

// TargetError attaches the attempted pid to a taxonomy error.
type TargetError struct {
	PID int32
	Err error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("pid %d: %v", e.PID, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

func targetErr(pid int32, err error) error {
	return &TargetError{PID: pid, Err: err}
}

// Explain translates a taxonomy error into the message shown in the status
// bar. Raw OS error text is deliberately not surfaced.
func Explain(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProtectedTarget):
		return "refusing to signal a protected process"
	case errors.Is(err, ErrPermissionDenied):
		return "run with elevated privileges or select a user-owned process"
	case errors.Is(err, ErrNotFound):
		return "process no longer exists"
	case errors.Is(err, ErrPlatformUnsupported):
		return "that signal is not available on this platform"
	default:
		return "signal delivery failed"
	}
}
