// Package notify delivers desktop notifications, degrading to the log when
// no notification daemon is reachable.
package notify

import (
	"os/exec"

	"github.com/user/wifimenu/internal/util"
)

// Urgency maps to notify-send urgency levels.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Send delivers one notification.
func Send(urgency Urgency, title, body string) {
	err := exec.Command("notify-send", "-u", string(urgency), "-a", "wifimenu", "Wi-Fi: "+title, body).Run()
	if err != nil {
		util.Info("[%s] %s: %s", urgency, title, body)
	}
}

// Low sends a low-urgency notification.
func Low(title, body string) { Send(UrgencyLow, title, body) }

// Normal sends a normal-urgency notification.
func Normal(title, body string) { Send(UrgencyNormal, title, body) }

// Critical sends a critical-urgency notification.
func Critical(title, body string) { Send(UrgencyCritical, title, body) }

// Notifier adapts this package to the orchestrator's Notifier interface.
type Notifier struct{}

// Info reports progress.
func (Notifier) Info(title, body string) { Normal(title, body) }

// Warn reports a recoverable problem.
func (Notifier) Warn(title, body string) { Critical(title, body) }

// Error reports a terminal failure.
func (Notifier) Error(title, body string) { Critical(title, body) }
