package connect

import "context"

// VPNStarter is the adapter slice the trigger needs.
type VPNStarter interface {
	StartVPN(ctx context.Context, profile string) error
}

// VPNTrigger maps a connected network to an optional VPN profile to start.
// Bindings are loaded once from configuration and read-only during a run.
type VPNTrigger struct {
	bindings map[string]string // ssid -> vpn profile
	adapter  VPNStarter
	notifier Notifier
}

// NewVPNTrigger builds a trigger from the configured bindings.
func NewVPNTrigger(bindings map[string]string, adapter VPNStarter, notifier Notifier) *VPNTrigger {
	return &VPNTrigger{bindings: bindings, adapter: adapter, notifier: notifier}
}

// Activate starts the VPN bound to ssid, if any. A start failure is
// reported but never rolls back the underlying connection: the two are
// independent resources with independent failure domains. It returns the
// profile name it acted on, "" when no binding exists.
func (t *VPNTrigger) Activate(ctx context.Context, ssid string) string {
	profile, ok := t.bindings[ssid]
	if !ok || profile == "" {
		return ""
	}

	t.notifier.Info("VPN", "starting "+profile)
	if err := t.adapter.StartVPN(ctx, profile); err != nil {
		t.notifier.Error("VPN failed", err.Error())
		return profile
	}
	t.notifier.Info("VPN connected", profile)
	return profile
}
