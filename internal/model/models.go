// Package model defines core data structures for wifimenu.
package model

import (
	"strings"
	"time"
)

// Security identifies the encryption kind of a network.
type Security string

const (
	SecurityOpen       Security = "open"
	SecurityWEP        Security = "wep"
	SecurityWPA        Security = "wpa"
	SecurityWPA2       Security = "wpa2"
	SecurityWPA3       Security = "wpa3"
	SecurityEnterprise Security = "enterprise"
	SecurityUnknown    Security = "unknown"
)

// ParseSecurity maps an nmcli SECURITY field to a Security kind.
// nmcli reports values like "WPA2", "WPA1 WPA2", "WPA2 802.1X" or "--".
func ParseSecurity(s string) Security {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case up == "" || up == "--":
		return SecurityOpen
	case strings.Contains(up, "802.1X"):
		return SecurityEnterprise
	case strings.Contains(up, "WPA3"):
		return SecurityWPA3
	case strings.Contains(up, "WPA2"):
		return SecurityWPA2
	case strings.Contains(up, "WPA"):
		return SecurityWPA
	case strings.Contains(up, "WEP"):
		return SecurityWEP
	default:
		return SecurityUnknown
	}
}

// NeedsSecret reports whether connecting requires a passphrase.
func (s Security) NeedsSecret() bool {
	return s != SecurityOpen
}

// String returns the display form of the security kind.
func (s Security) String() string {
	switch s {
	case SecurityOpen:
		return "Open"
	case SecurityWEP:
		return "WEP"
	case SecurityWPA:
		return "WPA"
	case SecurityWPA2:
		return "WPA2"
	case SecurityWPA3:
		return "WPA3"
	case SecurityEnterprise:
		return "802.1X"
	default:
		return "Unknown"
	}
}

// NetworkRecord is one observed network. Records are immutable snapshot
// values: each scan replaces the whole set, nothing is mutated in place.
type NetworkRecord struct {
	SSID     string    `json:"ssid"`
	Security Security  `json:"security"`
	Signal   int       `json:"signal"` // normalized 0-100
	Bars     string    `json:"bars"`
	InUse    bool      `json:"in_use"`
	Known    bool      `json:"known"` // a saved profile exists
	LastSeen time.Time `json:"last_seen"`
}

// FailureKind classifies a failed or abandoned connection attempt.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureAuth
	FailureTimeout
	FailureAdapter
	FailureCancelled
)

// String returns the display form of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureAuth:
		return "auth failure"
	case FailureTimeout:
		return "timeout"
	case FailureAdapter:
		return "adapter error"
	case FailureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ConnectionAttempt is the transient record of one connect operation. It
// lives only for the duration of an orchestrator run and is never persisted.
type ConnectionAttempt struct {
	SSID        string
	Attempts    int
	LastFailure FailureKind
	StartedAt   time.Time
	EndedAt     time.Time
}

// ConnectionDetails describes the currently active connection.
type ConnectionDetails struct {
	SSID      string   `json:"ssid"`
	IP        string   `json:"ip"`
	Gateway   string   `json:"gateway"`
	DNS       []string `json:"dns"`
	Security  Security `json:"security"`
	Signal    int      `json:"signal"` // normalized 0-100
	LatencyMs float64  `json:"latency_ms"` // 0 when the ping probe failed
}
