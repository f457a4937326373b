package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/daemon"
	"github.com/user/wifimenu/internal/nmcli"
	"github.com/user/wifimenu/internal/util"
)

var daemonForeground bool

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the background scan daemon",
	Long: `Start the daemon that rescans periodically and keeps the network
snapshot fresh. Exactly one daemon runs at a time; a second start fails
with the live daemon's PID. SIGUSR1 forces an immediate rescan.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVarP(&daemonForeground, "foreground", "f", false,
		"Run in foreground instead of detaching")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if running, pid := daemon.CheckRunning(cfg.LockPath()); running {
		fmt.Printf("Daemon is already running (PID %d)\n", pid)
		return nil
	}

	if daemonForeground {
		return runDaemonForeground()
	}
	return spawnDaemon()
}

func runDaemonForeground() error {
	scanner := nmcli.NewClient(cfg.ConnectTimeout, cfg.PingHost, cfg.PingCount)
	store := cache.NewStore(cfg.CachePath())

	d := daemon.New(cfg.LockPath(), cfg.RefreshInterval, scanner, store)
	if err := d.Start(); err != nil {
		var already *daemon.AlreadyRunningError
		if errors.As(err, &already) {
			fmt.Printf("Daemon is already running (PID %d)\n", already.PID)
			return nil
		}
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	util.Info("daemon started, rescanning every %s", cfg.RefreshInterval)
	d.Wait()
	return nil
}

// spawnDaemon re-executes the binary detached so the keybind invocation
// returns immediately.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	files := []*os.File{nil, nil, nil}
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		files[1], files[2] = logFile, logFile
	}

	procAttr := &os.ProcAttr{
		Dir:   "/",
		Env:   os.Environ(),
		Files: files,
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	proc, err := os.StartProcess(executable,
		[]string{executable, "daemon", "--foreground"}, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}
	if err := proc.Release(); err != nil {
		util.Warn("failed to release process: %v", err)
	}

	fmt.Printf("Daemon started (PID %d)\n", proc.Pid)
	if cfg.LogFile != "" {
		fmt.Printf("Logs: %s\n", cfg.LogFile)
	}
	return nil
}
