// Package connect drives connection attempts as an explicit state machine.
//
// States: Idle -> Connecting -> {Connected | PasswordRequired | Retrying |
// Failed}, with Connected and Failed terminal. Password retries are bounded
// and reserved for credential errors; a timeout or any other adapter error
// fails directly without consuming retry budget. Every failed attempt at a
// new profile deletes the partial profile the toolkit may have persisted,
// so bad-credential profiles never accumulate.
package connect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/wifimenu/internal/model"
	"github.com/user/wifimenu/internal/nmcli"
)

// State is one node of the connection state machine.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StatePasswordRequired
	StateRetrying
	StateConnected
	StateFailed
)

// String returns the display form of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StatePasswordRequired:
		return "password required"
	case StateRetrying:
		return "retrying"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrCancelled is returned by a Prompter when the user dismisses a prompt.
var ErrCancelled = errors.New("cancelled by user")

// Prompter collects input from the presentation layer. Secret entry must be
// non-echoing and never persisted by the implementation.
type Prompter interface {
	// RequestSecret asks for a passphrase. attempt is 1-based; attempts
	// past the first are re-prompts after a wrong password.
	RequestSecret(ctx context.Context, ssid string, attempt int) (string, error)
	// ConfirmOpenNetwork asks the user to acknowledge connecting to an
	// unencrypted network.
	ConfirmOpenNetwork(ctx context.Context, ssid string) (bool, error)
}

// Notifier reports progress and outcomes to the user.
type Notifier interface {
	Info(title, body string)
	Warn(title, body string)
	Error(title, body string)
}

// adapter is the slice of the toolkit surface the orchestrator needs.
type adapter interface {
	Connect(ctx context.Context, ssid, secret string) error
	Activate(ctx context.Context, name string) error
	Forget(ctx context.Context, name string) error
}

// Result is the terminal outcome of one orchestrator run.
type Result struct {
	State   State
	Kind    model.FailureKind
	Reason  string
	Attempt model.ConnectionAttempt
}

// Connected reports whether the run ended in the Connected state.
func (r Result) Connected() bool { return r.State == StateConnected }

// Orchestrator runs connection attempts against the adapter.
type Orchestrator struct {
	adapter    adapter
	prompter   Prompter
	notifier   Notifier
	vpn        *VPNTrigger
	maxRetries int
	warnOpen   bool

	state State
}

// Options configures an Orchestrator.
type Options struct {
	MaxRetries       int  // bounded password retries, minimum 1
	WarnOpenNetworks bool // gate open networks behind a confirmation
}

// New creates an orchestrator. vpn may be nil when no bindings exist.
func New(a adapter, prompter Prompter, notifier Notifier, vpn *VPNTrigger, opts Options) *Orchestrator {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Orchestrator{
		adapter:    a,
		prompter:   prompter,
		notifier:   notifier,
		vpn:        vpn,
		maxRetries: opts.MaxRetries,
		warnOpen:   opts.WarnOpenNetworks,
		state:      StateIdle,
	}
}

// State returns the machine's current state.
func (o *Orchestrator) State() State { return o.state }

// Connect drives one full connection run for target. secret may carry a
// pre-supplied passphrase (manual entry); when empty and the network needs
// one, the prompter is asked. The returned Result is always terminal.
func (o *Orchestrator) Connect(ctx context.Context, target model.NetworkRecord, secret string) Result {
	attempt := model.ConnectionAttempt{SSID: target.SSID, StartedAt: time.Now()}

	// An open-network connection never proceeds silently.
	if target.Security == model.SecurityOpen && o.warnOpen {
		ok, err := o.prompter.ConfirmOpenNetwork(ctx, target.SSID)
		if err != nil || !ok {
			return o.fail(attempt, model.FailureCancelled, "open network not confirmed")
		}
	}

	o.state = StateConnecting

	if target.Known {
		return o.activateSaved(ctx, target, attempt)
	}
	return o.connectNew(ctx, target, secret, attempt)
}

// activateSaved brings up the existing profile; no profile is created, so
// no cleanup applies on failure.
func (o *Orchestrator) activateSaved(ctx context.Context, target model.NetworkRecord, attempt model.ConnectionAttempt) Result {
	o.notifier.Info("Connecting…", target.SSID)
	attempt.Attempts = 1

	err := o.adapter.Activate(ctx, target.SSID)
	if err == nil {
		return o.succeed(ctx, target.SSID, attempt)
	}
	if ctx.Err() != nil {
		return o.fail(attempt, model.FailureCancelled, "cancelled")
	}
	kind, reason := classify(err)
	return o.fail(attempt, kind, reason)
}

// connectNew creates a fresh profile, retrying on credential errors up to
// the configured bound.
func (o *Orchestrator) connectNew(ctx context.Context, target model.NetworkRecord, secret string, attempt model.ConnectionAttempt) Result {
	if secret == "" && target.Security.NeedsSecret() {
		o.state = StatePasswordRequired
		s, err := o.prompter.RequestSecret(ctx, target.SSID, 1)
		if err != nil || s == "" {
			return o.fail(attempt, model.FailureCancelled, "no secret supplied")
		}
		secret = s
		o.state = StateConnecting
	}

	for n := 1; ; n++ {
		attempt.Attempts = n
		o.state = StateConnecting
		o.notifier.Info("Connecting…", fmt.Sprintf("%s (%d/%d)", target.SSID, n, o.maxRetries))

		err := o.adapter.Connect(ctx, target.SSID, secret)
		if err == nil {
			return o.succeed(ctx, target.SSID, attempt)
		}

		// The toolkit may have persisted a profile with a bad secret;
		// remove it before anything else so it cannot shadow a retry.
		o.cleanup(target.SSID)

		if ctx.Err() != nil {
			return o.fail(attempt, model.FailureCancelled, "cancelled")
		}

		kind, reason := classify(err)
		if kind != model.FailureAuth {
			// Retries are reserved for credential errors: repeating a
			// timeout with the same secret will not help.
			return o.fail(attempt, kind, reason)
		}

		attempt.LastFailure = model.FailureAuth
		if n >= o.maxRetries {
			return o.fail(attempt, model.FailureAuth,
				fmt.Sprintf("too many attempts (%d)", o.maxRetries))
		}

		o.state = StateRetrying
		o.notifier.Warn("Wrong password", fmt.Sprintf("%s: attempt %d of %d failed", target.SSID, n, o.maxRetries))

		o.state = StatePasswordRequired
		s, promptErr := o.prompter.RequestSecret(ctx, target.SSID, n+1)
		if promptErr != nil || s == "" {
			return o.fail(attempt, model.FailureCancelled, "retry abandoned")
		}
		secret = s
	}
}

// cleanup deletes the partial profile left behind by a failed attempt. A
// delete failure is reported but does not change the run's outcome; an
// attempt that failed before the toolkit created a profile has nothing to
// delete and warrants no warning.
func (o *Orchestrator) cleanup(ssid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := o.adapter.Forget(ctx, ssid)
	if err == nil || errors.Is(err, nmcli.ErrProfileNotFound) {
		return
	}
	o.notifier.Warn("Cleanup failed", err.Error())
}

func (o *Orchestrator) succeed(ctx context.Context, ssid string, attempt model.ConnectionAttempt) Result {
	o.state = StateConnected
	attempt.LastFailure = model.FailureNone
	attempt.EndedAt = time.Now()
	o.notifier.Info("Connected", ssid)

	if o.vpn != nil {
		o.vpn.Activate(ctx, ssid)
	}
	return Result{State: StateConnected, Attempt: attempt}
}

func (o *Orchestrator) fail(attempt model.ConnectionAttempt, kind model.FailureKind, reason string) Result {
	o.state = StateFailed
	attempt.LastFailure = kind
	attempt.EndedAt = time.Now()

	if kind == model.FailureCancelled {
		o.notifier.Info("Cancelled", attempt.SSID)
	} else {
		o.notifier.Error("Connection failed", fmt.Sprintf("%s: %s", attempt.SSID, reason))
	}
	return Result{State: StateFailed, Kind: kind, Reason: reason, Attempt: attempt}
}

// classify maps adapter errors to the failure taxonomy. Raw toolkit output
// never reaches the presentation layer except as an AdapterError reason.
func classify(err error) (model.FailureKind, string) {
	switch {
	case errors.Is(err, nmcli.ErrAuthFailure):
		return model.FailureAuth, "wrong password"
	case errors.Is(err, nmcli.ErrTimeout):
		return model.FailureTimeout, "timed out, check signal strength"
	case errors.Is(err, context.Canceled):
		return model.FailureCancelled, "cancelled"
	default:
		return model.FailureAdapter, err.Error()
	}
}
