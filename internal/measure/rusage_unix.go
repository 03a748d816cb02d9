//go:build linux || darwin || freebsd || netbsd || openbsd

package measure

import (
	"os"
	"runtime"
	"syscall"
)

// PeakRSS returns the maximum resident set size of an exited child process
// in bytes, or 0 when the platform does not report it.
func PeakRSS(state *os.ProcessState) uint64 {
	if state == nil {
		return 0
	}
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil || ru.Maxrss <= 0 {
		return 0
	}
	// darwin reports bytes, the others kilobytes.
	if runtime.GOOS == "darwin" {
		return uint64(ru.Maxrss)
	}
	return uint64(ru.Maxrss) * 1024
}
