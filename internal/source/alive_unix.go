//go:build !windows

package source

import (
	"os"
	"syscall"
)

// processAlive checks for the process with signal 0.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds. Send signal 0 to check.
	return process.Signal(syscall.Signal(0)) == nil
}
