package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/daemon"
	"github.com/user/wifimenu/internal/nmcli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and snapshot status",
	Long:  "Show the scan daemon's state, the cache snapshot, and the active connection.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	runningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	stoppedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	fmt.Println(titleStyle.Render("wifimenu Status"))
	fmt.Println()

	running, pid := daemon.CheckRunning(cfg.LockPath())
	fmt.Print(labelStyle.Render("Daemon: "))
	if running {
		fmt.Println(runningStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(stoppedStyle.Render("Stopped"))
	}

	store := cache.NewStore(cfg.CachePath())
	fmt.Println()
	fmt.Println(titleStyle.Render("Snapshot"))

	snap, ok := store.Read()
	if !ok {
		fmt.Println(labelStyle.Render("  No snapshot yet"))
	} else {
		fmt.Printf("  %s %s\n", labelStyle.Render("Generation:"),
			valueStyle.Render(fmt.Sprintf("%d", snap.Generation)))
		fmt.Printf("  %s %s\n", labelStyle.Render("Scanned:"),
			valueStyle.Render(fmt.Sprintf("%s ago", store.Age().Round(time.Second))))
		fmt.Printf("  %s %s\n", labelStyle.Render("Networks:"),
			valueStyle.Render(fmt.Sprintf("%d", len(snap.Networks))))
		if store.Stale(cfg.RefreshInterval, 2) {
			fmt.Printf("  %s %s\n", labelStyle.Render("Freshness:"),
				stoppedStyle.Render("stale"))
		} else {
			fmt.Printf("  %s %s\n", labelStyle.Render("Freshness:"),
				runningStyle.Render("fresh"))
		}
	}

	client := nmcli.NewClient(cfg.ConnectTimeout, cfg.PingHost, cfg.PingCount)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if current, err := client.ActiveSSID(ctx); err == nil && current != "" {
		fmt.Println()
		fmt.Println(titleStyle.Render("Connection"))
		fmt.Printf("  %s %s\n", labelStyle.Render("SSID:"), valueStyle.Render(current))

		if details, err := client.ConnectionDetails(ctx, current); err == nil {
			fmt.Printf("  %s %s\n", labelStyle.Render("IP:"), valueStyle.Render(details.IP))
			if details.LatencyMs > 0 {
				fmt.Printf("  %s %s\n", labelStyle.Render("Latency:"),
					valueStyle.Render(fmt.Sprintf("%.1f ms", details.LatencyMs)))
			}
		}
	}

	if hs, err := client.ActiveHotspot(ctx); err == nil && hs != "" {
		fmt.Println()
		fmt.Printf("%s %s\n", labelStyle.Render("Hotspot:"), runningStyle.Render(hs))
	}

	return nil
}
