//go:build !windows

package collector

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Raw syscall outcomes surfaced to the dispatch engine. The engine maps
// these onto its own taxonomy; raw errno text never reaches the user.
var (
	ErrNoProcess  = errors.New("no such process")
	ErrPermission = errors.New("operation not permitted")
	ErrBadSignal  = errors.New("invalid signal number")
)

// Kill delivers signum to pid. Signal numbers outside the classic 1..31
// range are rejected before the syscall.
func (c *SystemCollector) Kill(pid int32, signum int) error {
	if signum < 1 || signum > 31 {
		return ErrBadSignal
	}
	err := unix.Kill(int(pid), unix.Signal(signum))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return ErrNoProcess
	case errors.Is(err, unix.EPERM):
		return ErrPermission
	case errors.Is(err, unix.EINVAL):
		return ErrBadSignal
	default:
		return err
	}
}
