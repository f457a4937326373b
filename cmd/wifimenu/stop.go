package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifimenu/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "daemon-stop",
	Short: "Stop the background scan daemon",
	Long:  "Stop the running scan daemon gracefully.",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	running, pid := daemon.CheckRunning(cfg.LockPath())
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Printf("Stopping daemon (PID %d)...\n", pid)

	if err := daemon.SendStop(cfg.LockPath()); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	for i := 0; i < 30; i++ {
		time.Sleep(500 * time.Millisecond)
		if running, _ := daemon.CheckRunning(cfg.LockPath()); !running {
			fmt.Println("Daemon stopped")
			return nil
		}
	}

	fmt.Println("Warning: daemon may not have stopped completely")
	return nil
}
