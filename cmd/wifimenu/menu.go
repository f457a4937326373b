package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifimenu/internal/cache"
	"github.com/user/wifimenu/internal/connect"
	"github.com/user/wifimenu/internal/daemon"
	"github.com/user/wifimenu/internal/hotspot"
	"github.com/user/wifimenu/internal/menu"
	"github.com/user/wifimenu/internal/model"
	"github.com/user/wifimenu/internal/nmcli"
	"github.com/user/wifimenu/internal/notify"
	"github.com/user/wifimenu/internal/qr"
	"github.com/user/wifimenu/internal/util"
)

// menuPrompter bridges the interactive prompt programs into the connection
// orchestrator.
type menuPrompter struct{}

func (menuPrompter) RequestSecret(ctx context.Context, ssid string, attempt int) (string, error) {
	title := fmt.Sprintf("Password for %s", ssid)
	if attempt > 1 {
		title = fmt.Sprintf("Wrong password for %s, try again (attempt %d)", ssid, attempt)
	}
	secret, ok := menu.Password(title)
	if !ok {
		return "", connect.ErrCancelled
	}
	return secret, nil
}

func (menuPrompter) ConfirmOpenNetwork(ctx context.Context, ssid string) (bool, error) {
	return menu.Confirm(fmt.Sprintf("%q is an open network, traffic is unencrypted. Connect anyway?", ssid)), nil
}

// interruptContext cancels on Ctrl+C or SIGTERM so an in-flight connect is
// aborted through the orchestrator's cleanup path instead of being killed
// mid-attempt with a partial profile left behind.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	client := nmcli.NewClient(cfg.ConnectTimeout, cfg.PingHost, cfg.PingCount)
	store := cache.NewStore(cfg.CachePath())

	// A stale snapshot gets one refresh nudge before the first render.
	if running, _ := daemon.CheckRunning(cfg.LockPath()); running && store.Stale(cfg.RefreshInterval, 2) {
		if err := daemon.SendRefresh(cfg.LockPath()); err != nil {
			util.Debug("refresh nudge failed: %v", err)
		}
	}

	for {
		snap, haveSnap := store.Read()

		radio := true
		if on, err := client.Radio(ctx); err == nil {
			radio = on
		} else {
			util.Debug("radio state unavailable: %v", err)
		}

		current := ""
		if radio {
			current, _ = client.ActiveSSID(ctx)
		}

		action, err := menu.Run(menu.Options{
			Networks:     snap.Networks,
			RadioEnabled: radio,
			CurrentSSID:  current,
			CacheAge:     store.Age(),
			Scanning:     !haveSnap,
			MaxRows:      cfg.MaxMenuRows,
		})
		if err != nil {
			return err
		}

		switch action.Kind {
		case menu.ActionNone:
			return nil

		case menu.ActionConnect:
			doConnect(ctx, client, store, action.Target, "")
			return nil

		case menu.ActionManual:
			target, secret, ok := manualTarget(ctx)
			if !ok {
				continue
			}
			doConnect(ctx, client, store, target, secret)
			return nil

		case menu.ActionToggleRadio:
			if err := client.SetRadio(ctx, !radio); err != nil {
				notify.Critical("radio", err.Error())
				continue
			}
			if !radio {
				// Radio just came up; the old snapshot predates it.
				refreshSnapshot(ctx, client, store)
			}

		case menu.ActionRefresh:
			refreshSnapshot(ctx, client, store)

		case menu.ActionDisconnect:
			if current != "" && menu.Confirm(fmt.Sprintf("Disconnect from %s?", current)) {
				if err := client.Disconnect(ctx, current); err != nil {
					notify.Critical("disconnect", err.Error())
				} else {
					notify.Normal("disconnected", current)
				}
			}

		case menu.ActionForget:
			forgetProfile(ctx, client)

		case menu.ActionHotspot:
			toggleHotspot(ctx, client)

		case menu.ActionDetails:
			showDetails(ctx, client, current)

		case menu.ActionQRCode:
			showQRCode(ctx, client, snap, current)
		}
	}
}

func doConnect(ctx context.Context, client *nmcli.Client, store *cache.Store, target model.NetworkRecord, secret string) {
	if target.InUse {
		notify.Low("already connected", target.SSID)
		return
	}

	var vpn *connect.VPNTrigger
	if len(cfg.VPNBindings) > 0 {
		vpn = connect.NewVPNTrigger(cfg.VPNBindings, client, notify.Notifier{})
	}

	orch := connect.New(client, menuPrompter{}, notify.Notifier{}, vpn, connect.Options{
		MaxRetries:       cfg.MaxPasswordRetries,
		WarnOpenNetworks: cfg.WarnOpenNetworks,
	})

	res := orch.Connect(ctx, target, secret)
	if res.Connected() {
		// Refresh so the next menu shows the new in-use marker.
		refreshSnapshot(ctx, client, store)
		if details, err := client.ConnectionDetails(ctx, target.SSID); err == nil && details.LatencyMs > 0 {
			notify.Low("connectivity", fmt.Sprintf("%s reachable, %.0f ms", cfg.PingHost, details.LatencyMs))
		}
	}
}

// manualTarget collects a free-form SSID, optionally "SSID,password".
func manualTarget(ctx context.Context) (model.NetworkRecord, string, bool) {
	line, ok := menu.Input("Connect to hidden or out-of-range network", "SSID or SSID,password")
	if !ok || strings.TrimSpace(line) == "" {
		return model.NetworkRecord{}, "", false
	}

	ssid, secret := line, ""
	if i := strings.IndexByte(line, ','); i >= 0 {
		ssid, secret = line[:i], line[i+1:]
	}
	ssid = strings.TrimSpace(ssid)
	if ssid == "" {
		return model.NetworkRecord{}, "", false
	}

	// Security is unknown for manual entry; with no secret supplied the
	// attempt runs without one rather than prompting blind.
	sec := model.SecurityUnknown
	if secret == "" {
		sec = model.SecurityOpen
	}
	return model.NetworkRecord{SSID: ssid, Security: sec}, secret, true
}

func refreshSnapshot(ctx context.Context, client *nmcli.Client, store *cache.Store) {
	if running, _ := daemon.CheckRunning(cfg.LockPath()); running {
		gen := store.Generation()
		if err := daemon.SendRefresh(cfg.LockPath()); err != nil {
			util.Warn("refresh signal failed: %v", err)
			return
		}
		waitCtx, cancel := context.WithTimeout(ctx, cfg.ScanWait)
		defer cancel()
		if _, err := store.WaitForGeneration(waitCtx, gen, 200*time.Millisecond); err != nil {
			util.Warn("scan did not finish within %s", cfg.ScanWait)
		}
		return
	}

	// No daemon; scan in the foreground so the menu stays usable.
	scanCtx, cancel := context.WithTimeout(ctx, cfg.ScanWait)
	defer cancel()
	if err := client.Rescan(scanCtx); err != nil {
		util.Debug("rescan: %v", err)
	}
	networks, err := client.Scan(scanCtx)
	if err != nil {
		notify.Critical("scan failed", err.Error())
		return
	}
	if _, err := store.Write(networks); err != nil {
		util.Warn("snapshot write failed: %v", err)
	}
}

func forgetProfile(ctx context.Context, client *nmcli.Client) {
	profiles, err := client.SavedProfiles(ctx)
	if err != nil {
		notify.Critical("saved profiles", err.Error())
		return
	}
	if len(profiles) == 0 {
		notify.Low("forget", "no saved networks")
		return
	}

	i, ok := menu.Select("Forget which network?", profiles)
	if !ok {
		return
	}
	name := profiles[i]
	if !menu.Confirm(fmt.Sprintf("Forget %s? Its saved password is deleted.", name)) {
		return
	}
	if err := client.Forget(ctx, name); err != nil {
		notify.Critical("forget", err.Error())
		return
	}
	notify.Normal("forgotten", name)
}

func toggleHotspot(ctx context.Context, client *nmcli.Client) {
	mgr := hotspot.NewManager(client)

	if active, err := mgr.Active(ctx); err == nil && active != "" {
		if !menu.Confirm(fmt.Sprintf("Hotspot %q is up. Turn it off?", active)) {
			return
		}
		if err := mgr.Disable(ctx); err != nil {
			notify.Critical("hotspot", err.Error())
			return
		}
		notify.Normal("hotspot off", active)
		return
	}

	ssid, ok := menu.Input("Hotspot SSID", "leave empty to reuse the stored profile")
	if !ok {
		return
	}

	passphrase := ""
	if ssid != "" {
		passphrase, ok = menu.Password("Hotspot passphrase (8+ characters)")
		if !ok {
			return
		}
	}

	if err := mgr.Enable(ctx, ssid, passphrase); err != nil {
		if errors.Is(err, hotspot.ErrPassphraseTooShort) {
			notify.Critical("hotspot", "passphrase must be at least 8 characters")
		} else {
			notify.Critical("hotspot", err.Error())
		}
		return
	}
	if ssid == "" {
		ssid = "stored profile"
	}
	notify.Normal("hotspot up", ssid)
}

func showDetails(ctx context.Context, client *nmcli.Client, current string) {
	if current == "" {
		return
	}
	details, err := client.ConnectionDetails(ctx, current)
	if err != nil {
		notify.Critical("details", err.Error())
		return
	}

	menu.ShowText("Connection details", formatDetails(details, cfg.PingHost))
}

func formatDetails(details model.ConnectionDetails, pingHost string) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", menu.LabelStyle.Render(label+":"), menu.ValueStyle.Render(value))
	}
	line("SSID", details.SSID)
	line("Security", details.Security.String())
	line("Signal", fmt.Sprintf("%d%%", details.Signal))
	line("IP", details.IP)
	line("Gateway", details.Gateway)
	line("DNS", strings.Join(details.DNS, ", "))
	if details.LatencyMs > 0 {
		line("Latency", fmt.Sprintf("%.1f ms (%s)", details.LatencyMs, pingHost))
	}
	return b.String()
}

func showQRCode(ctx context.Context, client *nmcli.Client, snap cache.Snapshot, current string) {
	if current == "" {
		return
	}

	secret, err := client.SavedSecret(ctx, current)
	if err != nil {
		notify.Critical("qr code", err.Error())
		return
	}

	security := model.SecurityUnknown
	for _, n := range snap.Networks {
		if n.SSID == current {
			security = n.Security
			break
		}
	}

	code, err := qr.Render(current, secret, security)
	if err != nil {
		notify.Critical("qr code", err.Error())
		return
	}
	menu.ShowText("Scan to join "+current, code)
}
