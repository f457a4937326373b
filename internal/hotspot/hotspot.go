// Package hotspot manages the local access point as a two-state machine.
package hotspot

import (
	"context"
	"errors"
	"sync"
)

// ErrPassphraseTooShort rejects passphrases below the wpa-psk minimum
// before any toolkit call is made.
var ErrPassphraseTooShort = errors.New("hotspot passphrase must be at least 8 characters")

// Controller is the adapter slice the manager needs.
type Controller interface {
	SetAccessPoint(ctx context.Context, on bool, ssid, passphrase string) error
	ActiveHotspot(ctx context.Context) (string, error)
}

// State of the access point.
type State int

const (
	StateOff State = iota
	StateOn
)

// Manager flips the access point between Off and On. There is no retry
// logic: AP creation either succeeds or the configuration is invalid, and
// adapter errors are surfaced verbatim.
type Manager struct {
	adapter Controller

	mu    sync.Mutex
	state State
}

// NewManager creates a manager in the Off state.
func NewManager(adapter Controller) *Manager {
	return &Manager{adapter: adapter}
}

// State returns the manager's view of the access point.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Enable turns the access point on. With an SSID it creates a fresh shared
// AP configuration; without one it reactivates the stored profile.
func (m *Manager) Enable(ctx context.Context, ssid, passphrase string) error {
	if ssid != "" && len(passphrase) < 8 {
		return ErrPassphraseTooShort
	}

	if err := m.adapter.SetAccessPoint(ctx, true, ssid, passphrase); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = StateOn
	m.mu.Unlock()
	return nil
}

// Disable turns the access point off.
func (m *Manager) Disable(ctx context.Context) error {
	if err := m.adapter.SetAccessPoint(ctx, false, "", ""); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = StateOff
	m.mu.Unlock()
	return nil
}

// Active reports the live hotspot connection name from the toolkit, which
// wins over the in-process state when another invocation toggled the AP.
func (m *Manager) Active(ctx context.Context) (string, error) {
	name, err := m.adapter.ActiveHotspot(ctx)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if name != "" {
		m.state = StateOn
	} else {
		m.state = StateOff
	}
	m.mu.Unlock()
	return name, nil
}
