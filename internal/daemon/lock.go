package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// AlreadyRunningError means another live daemon holds the lock.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("daemon already running (PID %d)", e.PID)
	}
	return "daemon already running"
}

// Lock is the single-holder daemon marker: a pid file held under an
// exclusive flock. The kernel drops the flock when the holder dies, so a
// stale lock from a crashed daemon is reclaimed simply by acquiring again;
// the recorded pid exists for the control verbs to signal.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the daemon lock or fails fast with AlreadyRunningError
// when a live process holds it.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		pid, _ := ReadPID(path)
		f.Close()
		return nil, &AlreadyRunningError{PID: pid}
	}

	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &Lock{path: path, file: f}, nil
}

// Release drops the flock and removes the lock file.
func (l *Lock) Release() {
	if l.file == nil {
		return
	}
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
	os.Remove(l.path)
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// ReadPID reads the pid recorded in the lock file.
func ReadPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// IsAlive reports whether a process with the given pid exists.
func IsAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
