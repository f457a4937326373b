package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "daemon.pid")
}

func TestAcquireRecordsOwnPID(t *testing.T) {
	path := lockPath(t)

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	pid, ok := ReadPID(path)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), pid)
}

func TestSecondAcquireFailsWhileHeld(t *testing.T) {
	path := lockPath(t)

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(path)
	require.Error(t, err)

	var already *AlreadyRunningError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, os.Getpid(), already.PID)
}

func TestReleaseAllowsReacquire(t *testing.T) {
	path := lockPath(t)

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	lock.Release()

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "release removes the lock file")

	lock2, err := AcquireLock(path)
	require.NoError(t, err)
	lock2.Release()
}

// A lock file left behind by a dead process carries no flock, so acquiring
// over it succeeds and replaces the recorded pid.
func TestStaleLockIsReclaimed(t *testing.T) {
	path := lockPath(t)
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0644))

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	pid, ok := ReadPID(path)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), pid)
}

func TestCheckRunning(t *testing.T) {
	path := lockPath(t)

	running, _ := CheckRunning(path)
	assert.False(t, running, "no lock file")

	// Live pid (ours).
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644))
	running, pid := CheckRunning(path)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	// Dead pid.
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0644))
	running, _ = CheckRunning(path)
	assert.False(t, running)

	// Garbage content.
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))
	running, _ = CheckRunning(path)
	assert.False(t, running)
}

func TestSendStopWithoutDaemon(t *testing.T) {
	err := SendStop(lockPath(t))
	assert.Error(t, err)
}

func TestSendRefreshWithoutDaemon(t *testing.T) {
	err := SendRefresh(lockPath(t))
	assert.Error(t, err)
}
