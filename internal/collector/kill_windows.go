//go:build windows

package collector

import "errors"

var (
	ErrNoProcess  = errors.New("no such process")
	ErrPermission = errors.New("operation not permitted")
	ErrBadSignal  = errors.New("invalid signal number")
)

// Kill is unsupported on Windows; posix signal numbers have no equivalent.
func (c *SystemCollector) Kill(pid int32, signum int) error {
	return ErrBadSignal
}
