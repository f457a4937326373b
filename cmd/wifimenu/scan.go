package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/daemon"
)

var scanWaitFlag bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Ask the daemon for an immediate rescan",
	Long: `Signal the running daemon to rescan right away instead of waiting
for the next interval. Repeated triggers while a scan is in flight coalesce
into a single extra cycle. Without a running daemon the snapshot is left
untouched.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanWaitFlag, "wait", "w", true,
		"Wait for the rescan to land in the snapshot")
}

func runScan(cmd *cobra.Command, args []string) error {
	running, _ := daemon.CheckRunning(cfg.LockPath())
	if !running {
		fmt.Println("Daemon is not running; start it with \"wifimenu daemon\"")
		return nil
	}

	store := cache.NewStore(cfg.CachePath())
	gen := store.Generation()

	if err := daemon.SendRefresh(cfg.LockPath()); err != nil {
		return fmt.Errorf("failed to signal daemon: %w", err)
	}

	if !scanWaitFlag {
		fmt.Println("Rescan requested")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ScanWait)
	defer cancel()

	snap, err := store.WaitForGeneration(ctx, gen, 200*time.Millisecond)
	if err != nil {
		return fmt.Errorf("rescan did not finish within %s", cfg.ScanWait)
	}

	fmt.Printf("Scan complete: %d networks (generation %d)\n",
		len(snap.Networks), snap.Generation)
	return nil
}
