package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifimenu/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "cache.json"))
}

func records(n int) []model.NetworkRecord {
	recs := make([]model.NetworkRecord, n)
	for i := range recs {
		recs[i] = model.NetworkRecord{
			SSID:     fmt.Sprintf("net-%d", i),
			Security: model.SecurityWPA2,
			Signal:   90 - i,
			Bars:     "▂▄▆_",
		}
	}
	return recs
}

func TestReadMissingIsEmpty(t *testing.T) {
	s := testStore(t)

	snap, ok := s.Read()
	assert.False(t, ok)
	assert.Zero(t, snap.Generation)
	assert.Empty(t, snap.Networks)
	assert.Equal(t, uint64(0), s.Generation())
}

func TestReadCorruptIsEmpty(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, ok := s.Read()
	assert.False(t, ok)
}

func TestWriteRoundTrip(t *testing.T) {
	s := testStore(t)

	written, err := s.Write(records(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), written.Generation)

	snap, ok := s.Read()
	require.True(t, ok)
	assert.Equal(t, written.Generation, snap.Generation)
	require.Len(t, snap.Networks, 3)
	assert.Equal(t, "net-0", snap.Networks[0].SSID)

	// All records carry the snapshot's scan time.
	for _, n := range snap.Networks {
		assert.True(t, n.LastSeen.Equal(snap.ScannedAt))
	}
}

func TestGenerationIncreasesMonotonically(t *testing.T) {
	s := testStore(t)

	for i := 1; i <= 5; i++ {
		snap, err := s.Write(records(1))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), snap.Generation)
	}
}

// A writer replacing the snapshot while readers poll it: every read must see
// a fully formed snapshot, never a mix of two. Each generation g is written
// with exactly g records, so a torn read would show a count mismatch.
func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	s := testStore(t)

	const writes = 60
	const readers = 4

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastGen uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, ok := s.Read()
				if !ok {
					continue
				}
				assert.Len(t, snap.Networks, int(snap.Generation))
				assert.GreaterOrEqual(t, snap.Generation, lastGen)
				for _, n := range snap.Networks {
					assert.True(t, n.LastSeen.Equal(snap.ScannedAt))
				}
				lastGen = snap.Generation
			}
		}()
	}

	for i := 1; i <= writes; i++ {
		_, err := s.Write(records(i))
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	snap, ok := s.Read()
	require.True(t, ok)
	assert.Equal(t, uint64(writes), snap.Generation)
}

func TestStaleness(t *testing.T) {
	s := testStore(t)

	// No snapshot at all counts as stale.
	assert.True(t, s.Stale(time.Second, 2))

	_, err := s.Write(records(1))
	require.NoError(t, err)
	assert.False(t, s.Stale(time.Hour, 2))
	assert.True(t, s.Stale(time.Nanosecond, 1))
}

func TestInvalidate(t *testing.T) {
	s := testStore(t)
	_, err := s.Write(records(2))
	require.NoError(t, err)

	s.Invalidate()
	_, ok := s.Read()
	assert.False(t, ok)
}

func TestWaitForGeneration(t *testing.T) {
	s := testStore(t)
	_, err := s.Write(records(1))
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		s.Write(records(2))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := s.WaitForGeneration(ctx, 1, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestWaitForGenerationTimesOut(t *testing.T) {
	s := testStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.WaitForGeneration(ctx, 0, 5*time.Millisecond)
	assert.Error(t, err)
}
