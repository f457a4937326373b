// Package nmcli adapts orchestrator intents to NetworkManager's nmcli tool.
//
// All toolkit failures are returned as typed errors: ErrAuthFailure and
// ErrTimeout for the two causes the orchestrator treats specially, and
// *AdapterError for everything else. Raw nmcli output never leaves this
// package except as the trailing reason line inside an AdapterError.
package nmcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/user/wifimenu/internal/model"
)

// ErrAuthFailure means the toolkit rejected the supplied secret.
var ErrAuthFailure = errors.New("authentication failed")

// ErrTimeout means the operation exceeded its deadline.
var ErrTimeout = errors.New("connection timed out")

// ErrProfileNotFound means a named saved profile does not exist.
var ErrProfileNotFound = errors.New("no such saved profile")

// AdapterError is any other toolkit failure: the call itself failed or the
// output was unparseable.
type AdapterError struct {
	Op     string
	Output string
	Err    error
}

func (e *AdapterError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("nmcli %s: %s", e.Op, e.Output)
	}
	return fmt.Sprintf("nmcli %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Adapter is the boundary the core drives to perform network operations.
// Grounded on the backend seam pattern: one interface, one real client,
// fakes in tests.
type Adapter interface {
	Rescan(ctx context.Context) error
	Scan(ctx context.Context) ([]model.NetworkRecord, error)
	Connect(ctx context.Context, ssid, secret string) error
	Activate(ctx context.Context, name string) error
	Disconnect(ctx context.Context, ssid string) error
	Forget(ctx context.Context, name string) error
	StartVPN(ctx context.Context, profile string) error
	SetAccessPoint(ctx context.Context, on bool, ssid, passphrase string) error
	ConnectionDetails(ctx context.Context, ssid string) (model.ConnectionDetails, error)
	SavedProfiles(ctx context.Context) ([]string, error)
	SavedSecret(ctx context.Context, ssid string) (string, error)
	ActiveSSID(ctx context.Context) (string, error)
	ActiveHotspot(ctx context.Context) (string, error)
	Radio(ctx context.Context) (bool, error)
	SetRadio(ctx context.Context, on bool) error
}

// Client is the nmcli-backed Adapter.
type Client struct {
	connectTimeout time.Duration
	pingHost       string
	pingCount      int
}

// NewClient creates a client. connectTimeout bounds connect/activate calls
// via nmcli --wait; pingHost/pingCount drive the latency probe in
// ConnectionDetails.
func NewClient(connectTimeout time.Duration, pingHost string, pingCount int) *Client {
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}
	if pingCount <= 0 {
		pingCount = 2
	}
	return &Client{
		connectTimeout: connectTimeout,
		pingHost:       pingHost,
		pingCount:      pingCount,
	}
}

// run executes nmcli and returns stdout/stderr separately; classification
// needs both streams.
func (c *Client) run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "nmcli", args...)
	cmd.Env = append(cmd.Environ(), "LANGUAGE=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (c *Client) waitArg() string {
	secs := int(c.connectTimeout.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Rescan asks the toolkit to refresh its access point list. Errors are
// ignored by callers; the follow-up Scan reports the real failure.
func (c *Client) Rescan(ctx context.Context) error {
	_, stderr, err := c.run(ctx, "device", "wifi", "rescan")
	if err != nil {
		return &AdapterError{Op: "rescan", Output: lastLine(stderr), Err: err}
	}
	return nil
}

// Scan lists visible networks, strongest first, with the Known flag set for
// networks that have a saved profile.
func (c *Client) Scan(ctx context.Context) ([]model.NetworkRecord, error) {
	stdout, stderr, err := c.run(ctx,
		"--fields", "IN-USE,SSID,SECURITY,SIGNAL,BARS",
		"--terse", "device", "wifi", "list")
	if err != nil {
		return nil, &AdapterError{Op: "scan", Output: lastLine(stderr), Err: err}
	}

	nets := parseScanOutput(stdout)

	saved, err := c.SavedProfiles(ctx)
	if err == nil {
		known := make(map[string]bool, len(saved))
		for _, name := range saved {
			known[name] = true
		}
		for i := range nets {
			nets[i].Known = known[nets[i].SSID]
		}
	}
	return nets, nil
}

// Connect creates and activates a new profile for ssid. On failure the
// partially created profile is left in place; cleanup is the caller's
// decision (the orchestrator deletes it explicitly).
func (c *Client) Connect(ctx context.Context, ssid, secret string) error {
	args := []string{"--wait", c.waitArg(), "device", "wifi", "connect", ssid}
	if secret != "" {
		args = append(args, "password", secret)
	}

	stdout, stderr, err := c.run(ctx, args...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return classifyConnectFailure("connect", stdout, stderr)
}

// Activate brings up an existing saved profile.
func (c *Client) Activate(ctx context.Context, name string) error {
	stdout, stderr, err := c.run(ctx, "--wait", c.waitArg(), "connection", "up", name)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return classifyConnectFailure("activate", stdout, stderr)
}

// Disconnect takes the named connection down.
func (c *Client) Disconnect(ctx context.Context, ssid string) error {
	_, stderr, err := c.run(ctx, "connection", "down", ssid)
	if err != nil {
		return &AdapterError{Op: "disconnect", Output: lastLine(stderr), Err: err}
	}
	return nil
}

// Forget deletes a saved profile by name. Deleting a profile that does not
// exist reports ErrProfileNotFound, so callers cleaning up after a failed
// connect can tell "nothing to delete" from a real failure.
func (c *Client) Forget(ctx context.Context, name string) error {
	_, stderr, err := c.run(ctx, "connection", "delete", name)
	if err != nil {
		if isMissingProfile(stderr) {
			return &AdapterError{Op: "forget", Output: lastLine(stderr), Err: ErrProfileNotFound}
		}
		return &AdapterError{Op: "forget", Output: lastLine(stderr), Err: err}
	}
	return nil
}

// StartVPN activates the named VPN profile.
func (c *Client) StartVPN(ctx context.Context, profile string) error {
	_, stderr, err := c.run(ctx, "connection", "up", profile)
	if err != nil {
		return &AdapterError{Op: "vpn up", Output: lastLine(stderr), Err: err}
	}
	return nil
}

const hotspotProfileName = "Hotspot"

// SetAccessPoint enables or disables the local access point. Enabling with
// an SSID creates a fresh shared AP profile; enabling without one reuses
// the stored profile.
func (c *Client) SetAccessPoint(ctx context.Context, on bool, ssid, passphrase string) error {
	if !on {
		active, err := c.ActiveHotspot(ctx)
		if err != nil {
			return err
		}
		if active == "" {
			return nil
		}
		return c.Disconnect(ctx, active)
	}

	if ssid == "" {
		return c.Activate(ctx, hotspotProfileName)
	}

	_, stderr, err := c.run(ctx,
		"connection", "add",
		"type", "wifi",
		"ifname", "*",
		"con-name", hotspotProfileName,
		"autoconnect", "no",
		"ssid", ssid,
		"802-11-wireless.mode", "ap",
		"802-11-wireless-security.key-mgmt", "wpa-psk",
		"802-11-wireless-security.psk", passphrase,
		"ipv4.method", "shared")
	if err != nil {
		return &AdapterError{Op: "hotspot add", Output: lastLine(stderr), Err: err}
	}
	return c.Activate(ctx, hotspotProfileName)
}

// ConnectionDetails gathers address, routing, signal and latency info for
// the active connection.
func (c *Client) ConnectionDetails(ctx context.Context, ssid string) (model.ConnectionDetails, error) {
	stdout, stderr, err := c.run(ctx, "-t", "-f", "IP4.ADDRESS,IP4.GATEWAY,IP4.DNS", "device", "show")
	if err != nil {
		return model.ConnectionDetails{}, &AdapterError{Op: "device show", Output: lastLine(stderr), Err: err}
	}
	ip, gateway, dns := parseDeviceInfo(stdout)

	details := model.ConnectionDetails{
		SSID:    ssid,
		IP:      ip,
		Gateway: gateway,
		DNS:     dns,
	}

	if out, _, err := c.run(ctx, "-t", "-f", "IN-USE,SIGNAL", "device", "wifi"); err == nil {
		details.Signal = parseSignalPercent(parseInUseField(out))
	}
	if out, _, err := c.run(ctx, "-t", "-f", "IN-USE,SECURITY", "device", "wifi"); err == nil {
		details.Security = model.ParseSecurity(parseInUseField(out))
	}
	details.LatencyMs = c.pingLatency(ctx)

	return details, nil
}

// pingLatency measures average round-trip time to the configured host.
// A failed probe reports 0; reachability is advisory, not an error.
func (c *Client) pingLatency(ctx context.Context) float64 {
	if c.pingHost == "" {
		return 0
	}
	cmd := exec.CommandContext(ctx, "ping",
		"-c", strconv.Itoa(c.pingCount), "-W", "2", c.pingHost)
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	return parsePingLatency(string(out))
}

// SavedProfiles lists the names of saved wireless profiles. Secrets stay
// inside the toolkit; only names cross this boundary.
func (c *Client) SavedProfiles(ctx context.Context) ([]string, error) {
	stdout, stderr, err := c.run(ctx, "-t", "-f", "NAME,TYPE", "connection", "show")
	if err != nil {
		return nil, &AdapterError{Op: "connection show", Output: lastLine(stderr), Err: err}
	}

	var names []string
	for _, line := range strings.Split(stdout, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) == 2 && strings.Contains(parts[1], "wireless") {
			names = append(names, parts[0])
		}
	}
	return names, nil
}

// SavedSecret looks up the stored passphrase for a profile. Requires polkit
// authorization; used only to build the share QR code, never persisted.
func (c *Client) SavedSecret(ctx context.Context, ssid string) (string, error) {
	stdout, stderr, err := c.run(ctx,
		"-s", "-t", "-f", "802-11-wireless-security.psk", "connection", "show", ssid)
	if err != nil {
		return "", &AdapterError{Op: "secret show", Output: lastLine(stderr), Err: err}
	}
	for _, line := range strings.Split(stdout, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) == 2 && strings.Contains(parts[0], "802-11-wireless-security.psk") {
			return parts[1], nil
		}
	}
	return "", nil
}

// ActiveSSID returns the SSID of the connected network, "" when offline.
func (c *Client) ActiveSSID(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "-t", "-f", "active,ssid", "device", "wifi")
	if err != nil {
		return "", &AdapterError{Op: "active ssid", Output: lastLine(stderr), Err: err}
	}
	for _, line := range strings.Split(stdout, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) == 2 && parts[0] == "yes" {
			return parts[1], nil
		}
	}
	return "", nil
}

// ActiveHotspot returns the name of the active hotspot connection, "" when
// no hotspot is up.
func (c *Client) ActiveHotspot(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "-t", "-f", "NAME,DEVICE", "connection", "show", "--active")
	if err != nil {
		return "", &AdapterError{Op: "active hotspot", Output: lastLine(stderr), Err: err}
	}
	for _, line := range strings.Split(stdout, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) == 2 && strings.Contains(strings.ToLower(parts[0]), "hotspot") {
			return parts[0], nil
		}
	}
	return "", nil
}

// Radio reports whether the Wi-Fi radio is enabled.
func (c *Client) Radio(ctx context.Context) (bool, error) {
	stdout, stderr, err := c.run(ctx, "radio", "wifi")
	if err != nil {
		return false, &AdapterError{Op: "radio", Output: lastLine(stderr), Err: err}
	}
	return strings.Contains(stdout, "enabled"), nil
}

// SetRadio toggles the Wi-Fi radio.
func (c *Client) SetRadio(ctx context.Context, on bool) error {
	arg := "off"
	if on {
		arg = "on"
	}
	_, stderr, err := c.run(ctx, "radio", "wifi", arg)
	if err != nil {
		return &AdapterError{Op: "radio " + arg, Output: lastLine(stderr), Err: err}
	}
	return nil
}
