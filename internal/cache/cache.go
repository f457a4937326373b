// Package cache persists the shared snapshot of observed networks.
//
// The snapshot file is the only piece of state shared between the daemon and
// foreground invocations. Writes stage a temp file in the same directory and
// rename it into place, so a reader always sees either the previous snapshot
// or the new one in full, never a torn file. Reads therefore need no locking.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/user/wifimenu/internal/model"
)

// Snapshot is an internally consistent view of all networks at one scan
// moment. The generation counter increases monotonically with every write so
// callers can detect staleness without comparing contents.
type Snapshot struct {
	Generation uint64                `json:"generation"`
	ScannedAt  time.Time             `json:"scanned_at"`
	Networks   []model.NetworkRecord `json:"networks"`
}

// Store reads and writes snapshots at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the given snapshot path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the current snapshot. It never fails the caller: an absent,
// unreadable or corrupt file yields (Snapshot{}, false), the Empty sentinel
// the presentation layer renders as "no data yet".
func (s *Store) Read() (Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// Write atomically replaces the snapshot with the given network list. The
// new generation is the previous one plus one, and every record is stamped
// with the snapshot's scan time so a snapshot is internally consistent.
func (s *Store) Write(networks []model.NetworkRecord) (Snapshot, error) {
	prev, _ := s.Read()

	snap := Snapshot{
		Generation: prev.Generation + 1,
		ScannedAt:  time.Now(),
		Networks:   make([]model.NetworkRecord, len(networks)),
	}
	for i, n := range networks {
		n.LastSeen = snap.ScannedAt
		snap.Networks[i] = n
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".wifimenu-cache-*")
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Snapshot{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Snapshot{}, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return Snapshot{}, err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return Snapshot{}, err
	}
	return snap, nil
}

// Generation returns the current generation, 0 when no snapshot exists.
func (s *Store) Generation() uint64 {
	snap, ok := s.Read()
	if !ok {
		return 0
	}
	return snap.Generation
}

// Age returns the time since the last scan. Without a snapshot it returns a
// very large duration so staleness checks treat "never scanned" as stale.
func (s *Store) Age() time.Duration {
	snap, ok := s.Read()
	if !ok {
		return time.Duration(1<<63 - 1)
	}
	return time.Since(snap.ScannedAt)
}

// Stale reports whether the snapshot is older than n refresh intervals.
// The daemon's own failures surface only through this: a skipped cycle is
// visible as growing age, never silently eaten for more than one cycle.
func (s *Store) Stale(interval time.Duration, n int) bool {
	if n < 1 {
		n = 1
	}
	return s.Age() > interval*time.Duration(n)
}

// Invalidate removes the snapshot file.
func (s *Store) Invalidate() {
	os.Remove(s.path)
}

// WaitForGeneration polls until the snapshot generation exceeds after, the
// context expires, or the poll interval elapses with no change. Used by the
// scan verb to return once the daemon has written a fresh snapshot.
func (s *Store) WaitForGeneration(ctx context.Context, after uint64, poll time.Duration) (Snapshot, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if snap, ok := s.Read(); ok && snap.Generation > after {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
