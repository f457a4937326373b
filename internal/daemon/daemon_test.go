package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/model"
)

// gatedScanner blocks each Scan until released, so tests control exactly
// when a cycle completes.
type gatedScanner struct {
	proceed chan struct{}
	scans   atomic.Int32
}

func newGatedScanner() *gatedScanner {
	return &gatedScanner{proceed: make(chan struct{})}
}

func (g *gatedScanner) Rescan(ctx context.Context) error { return nil }

func (g *gatedScanner) Scan(ctx context.Context) ([]model.NetworkRecord, error) {
	g.scans.Add(1)
	select {
	case <-g.proceed:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []model.NetworkRecord{{SSID: "HomeNet", Security: model.SecurityWPA2, Signal: 80}}, nil
}

// instantScanner completes immediately.
type instantScanner struct {
	scans atomic.Int32
}

func (s *instantScanner) Rescan(ctx context.Context) error { return nil }

func (s *instantScanner) Scan(ctx context.Context) ([]model.NetworkRecord, error) {
	s.scans.Add(1)
	return []model.NetworkRecord{{SSID: "HomeNet", Security: model.SecurityWPA2, Signal: 80}}, nil
}

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewStore(filepath.Join(t.TempDir(), "cache.json"))
}

func TestDaemonWritesSnapshotOnStart(t *testing.T) {
	store := testStore(t)
	scanner := &instantScanner{}
	d := New(lockPath(t), time.Hour, scanner, store)

	require.NoError(t, d.Start())
	defer d.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := store.WaitForGeneration(ctx, 0, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	require.Len(t, snap.Networks, 1)
	assert.Equal(t, "HomeNet", snap.Networks[0].SSID)
}

func TestSecondDaemonFailsWhileFirstRuns(t *testing.T) {
	path := lockPath(t)
	store := testStore(t)

	d1 := New(path, time.Hour, &instantScanner{}, store)
	require.NoError(t, d1.Start())
	defer d1.Stop()

	d2 := New(path, time.Hour, &instantScanner{}, store)
	err := d2.Start()
	require.Error(t, err)
	var already *AlreadyRunningError
	assert.ErrorAs(t, err, &already)
}

// Rapid repeated refresh requests arriving while a cycle is in flight must
// collapse to exactly one extra cycle once the current one finishes.
func TestRefreshTriggersCoalesce(t *testing.T) {
	store := testStore(t)
	scanner := newGatedScanner()
	d := New(lockPath(t), time.Hour, scanner, store)

	require.NoError(t, d.Start())
	defer d.Stop()

	// First cycle is now blocked inside Scan; pile up trigger requests.
	d.TriggerRefresh()
	d.TriggerRefresh()
	d.TriggerRefresh()

	scanner.proceed <- struct{}{} // finish the initial cycle

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := store.WaitForGeneration(ctx, 0, 5*time.Millisecond)
	require.NoError(t, err)

	scanner.proceed <- struct{}{} // finish the single coalesced cycle

	snap, err := store.WaitForGeneration(ctx, 1, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Generation)

	// No third cycle: three pending triggers ran as one.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), scanner.scans.Load())
	assert.Equal(t, uint64(2), store.Generation())
}

func TestScanFailureKeepsPreviousSnapshot(t *testing.T) {
	store := testStore(t)
	prev, err := store.Write([]model.NetworkRecord{{SSID: "old", Security: model.SecurityWPA2}})
	require.NoError(t, err)

	scanner := newGatedScanner()
	d := New(lockPath(t), time.Hour, scanner, store)
	require.NoError(t, d.Start())

	// Stop while the first Scan is blocked: its context is cancelled, the
	// cycle is skipped, and the snapshot stays untouched.
	d.Stop()

	snap, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, prev.Generation, snap.Generation)
	assert.Equal(t, "old", snap.Networks[0].SSID)
}

// A termination signal must finish the full shutdown, lock release
// included, before Wait unblocks; the pid file never outlives Wait.
func TestTerminationSignalReleasesLockBeforeWaitReturns(t *testing.T) {
	path := lockPath(t)
	d := New(path, time.Hour, &instantScanner{}, testStore(t))
	require.NoError(t, d.Start())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	waited := make(chan struct{})
	go func() {
		d.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down after SIGTERM")
	}

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "pid file should be removed before Wait returns")
}

func TestStopReleasesLock(t *testing.T) {
	path := lockPath(t)
	d := New(path, time.Hour, &instantScanner{}, testStore(t))

	require.NoError(t, d.Start())
	d.Stop()

	running, _ := CheckRunning(path)
	assert.False(t, running)

	// Lock can be retaken without breaking anything.
	d2 := New(path, time.Hour, &instantScanner{}, testStore(t))
	require.NoError(t, d2.Start())
	d2.Stop()
}
