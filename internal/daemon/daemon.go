// Package daemon owns the background refresh cadence. One long-lived
// process scans through the adapter on an interval and writes fresh
// snapshots into the cache; foreground invocations can force a cycle
// through SIGUSR1 without disturbing the schedule.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/model"
	"github.com/user/wifimenu/internal/util"
)

// Scanner is the adapter slice the daemon drives.
type Scanner interface {
	Rescan(ctx context.Context) error
	Scan(ctx context.Context) ([]model.NetworkRecord, error)
}

// Daemon runs the scan loop.
type Daemon struct {
	interval time.Duration
	scanner  Scanner
	store    *cache.Store
	lockPath string
	lock     *Lock

	// refresh carries immediate-refresh requests. Capacity 1 plus
	// drop-when-full sends makes rapid repeated requests coalesce into a
	// single forced cycle, and a request arriving mid-cycle is not lost.
	refresh chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopped   chan struct{}
	startTime time.Time

	mu      sync.Mutex
	running bool
}

// New creates a daemon. It does not take the lock; Start does.
func New(lockPath string, interval time.Duration, scanner Scanner, store *cache.Store) *Daemon {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		interval: interval,
		scanner:  scanner,
		store:    store,
		lockPath: lockPath,
		refresh:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
}

// Start acquires the daemon lock and launches the refresh loop plus the
// signal listener. It fails fast when a live daemon already holds the lock.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already started")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
		return err
	}
	d.lock = lock

	util.Info("Daemon started (PID %d), refreshing every %s", os.Getpid(), d.interval)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run()
	}()

	// Registered before Start returns so a signal arriving right after
	// cannot hit the default handler. Not on the WaitGroup: the handler
	// calls Stop, which waits on it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	go d.handleSignals(sigCh)

	return nil
}

// Wait blocks until Stop has completed, lock release included, so a caller
// exiting right after Wait never leaves the pid file behind.
func (d *Daemon) Wait() {
	<-d.stopped
}

// Stop shuts the daemon down and releases the lock, so the next start does
// not need to break a stale one.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	util.Info("Daemon stopping")
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		util.Warn("Daemon stop timed out")
	}

	if d.lock != nil {
		d.lock.Release()
	}
	close(d.stopped)
}

// TriggerRefresh requests an immediate scan cycle. Requests arriving while
// one is already pending are dropped: multiple pending triggers collapse to
// one forced cycle.
func (d *Daemon) TriggerRefresh() {
	select {
	case d.refresh <- struct{}{}:
	default:
	}
}

// run is the daemon loop: one cycle up front so the menu has data soon,
// then a race between the interval timer and the refresh trigger, whichever
// fires first.
func (d *Daemon) run() {
	d.cycle()

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-timer.C:
			d.cycle()
		case <-d.refresh:
			util.Debug("Immediate refresh requested")
			d.cycle()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(d.interval)
	}
}

// cycle performs one scan and snapshot write. Failures skip the cycle and
// surface only as snapshot age; the loop itself never dies.
func (d *Daemon) cycle() {
	ctx, cancel := context.WithTimeout(d.ctx, d.interval)
	defer cancel()

	if err := d.scanner.Rescan(ctx); err != nil {
		util.Debug("Rescan request failed: %v", err)
	}

	networks, err := d.scanner.Scan(ctx)
	if err != nil {
		util.Warn("Scan failed, keeping previous snapshot: %v", err)
		return
	}

	snap, err := d.store.Write(networks)
	if err != nil {
		util.Warn("Snapshot write failed: %v", err)
		return
	}
	util.Debug("Snapshot %d written: %d networks", snap.Generation, len(snap.Networks))
}

func (d *Daemon) handleSignals(sigCh chan os.Signal) {
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGUSR1 {
				d.TriggerRefresh()
				continue
			}
			util.Info("Received signal: %v", sig)
			d.Stop()
			return
		case <-d.ctx.Done():
			return
		}
	}
}

// Uptime reports how long the daemon has been running.
func (d *Daemon) Uptime() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Since(d.startTime)
}
