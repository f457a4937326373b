package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// CheckRunning reports whether a live daemon holds the lock at path, and
// its pid. A lock file whose recorded process is dead counts as not
// running; the next daemon start reclaims it.
func CheckRunning(lockPath string) (bool, int) {
	pid, ok := ReadPID(lockPath)
	if !ok {
		return false, 0
	}
	if !IsAlive(pid) {
		return false, 0
	}
	return true, pid
}

// SendStop asks the running daemon to shut down. The daemon releases its
// lock on the way out, which is what daemon-stop waits for.
func SendStop(lockPath string) error {
	running, pid := CheckRunning(lockPath)
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal daemon: %w", err)
	}
	return nil
}

// SendRefresh asks the running daemon to scan immediately. Pending
// requests coalesce on the daemon side, so sending this repeatedly is
// harmless.
func SendRefresh(lockPath string) error {
	running, pid := CheckRunning(lockPath)
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Signal(syscall.SIGUSR1); err != nil {
		return fmt.Errorf("failed to signal daemon: %w", err)
	}
	return nil
}
