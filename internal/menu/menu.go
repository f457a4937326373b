// Package menu renders cache contents as selectable rows and collects the
// user's choice. It holds no orchestration logic: every selection returns
// an Action for the command layer to execute.
package menu

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/wifimenu/internal/model"
)

// ActionKind enumerates what the user picked.
type ActionKind int

const (
	ActionNone ActionKind = iota // menu dismissed
	ActionConnect
	ActionToggleRadio
	ActionRefresh
	ActionManual
	ActionDisconnect
	ActionForget
	ActionHotspot
	ActionDetails
	ActionQRCode
)

// Action is one user selection from the main menu.
type Action struct {
	Kind   ActionKind
	Target model.NetworkRecord // set for ActionConnect
}

// Options feeds the menu everything it renders.
type Options struct {
	Networks     []model.NetworkRecord
	RadioEnabled bool
	CurrentSSID  string
	CacheAge     time.Duration
	Scanning     bool // no snapshot yet
	MaxRows      int
}

type row struct {
	label  string
	action Action
}

type menuModel struct {
	rows    []row
	warning string
	cursor  int
	maxRows int
	choice  Action
}

// Run shows the menu and returns the chosen action. Esc or q dismisses the
// menu and returns ActionNone.
func Run(opts Options) (Action, error) {
	m := newMenuModel(opts)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return Action{}, err
	}
	return final.(menuModel).choice, nil
}

func newMenuModel(opts Options) menuModel {
	radioLabel := "⚡ enable wi-fi"
	if opts.RadioEnabled {
		radioLabel = "⚡ disable wi-fi"
	}

	refreshLabel := "🔄 refresh"
	if opts.Scanning {
		refreshLabel = "🔄 refresh (scanning…)"
	} else {
		refreshLabel = fmt.Sprintf("🔄 refresh (scanned %s ago)", opts.CacheAge.Round(time.Second))
	}

	rows := []row{
		{radioLabel, Action{Kind: ActionToggleRadio}},
		{refreshLabel, Action{Kind: ActionRefresh}},
		{"✏  manual connect", Action{Kind: ActionManual}},
		{"📡 hotspot", Action{Kind: ActionHotspot}},
	}
	if opts.CurrentSSID != "" {
		rows = append(rows,
			row{"✂  disconnect " + opts.CurrentSSID, Action{Kind: ActionDisconnect}},
			row{"📊 connection details", Action{Kind: ActionDetails}},
			row{"🔳 share qr code", Action{Kind: ActionQRCode}},
		)
	}
	rows = append(rows, row{"🗑  forget a network", Action{Kind: ActionForget}})

	var warning string
	cursor := 0
	for i, n := range opts.Networks {
		if n.Security == model.SecurityOpen {
			warning = "open (unencrypted) networks in range, connect with care"
		}
		if n.InUse {
			cursor = len(rows) + i
		}
		rows = append(rows, row{networkLabel(n), Action{Kind: ActionConnect, Target: n}})
	}

	maxRows := opts.MaxRows
	if maxRows < 4 {
		maxRows = 14
	}

	return menuModel{rows: rows, warning: warning, cursor: cursor, maxRows: maxRows}
}

func networkLabel(n model.NetworkRecord) string {
	lock := "🔒"
	if n.Security == model.SecurityOpen {
		lock = "  "
	}
	active := "  "
	if n.InUse {
		active = "● "
	}
	known := " "
	if n.Known {
		known = "*"
	}
	return fmt.Sprintf("%s%s %-24s%s %s %3d%%", active, lock, n.SSID, known, n.Bars, n.Signal)
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.choice = Action{Kind: ActionNone}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "r":
		m.choice = Action{Kind: ActionRefresh}
		return m, tea.Quit
	case "enter":
		m.choice = m.rows[m.cursor].action
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	s := TitleStyle.Render("📶 Wi-Fi") + "\n"
	if m.warning != "" {
		s += WarningStyle.Render("⚠ "+m.warning) + "\n"
	}
	s += "\n"

	// Scroll window keeps the cursor visible.
	start := 0
	if m.cursor >= m.maxRows {
		start = m.cursor - m.maxRows + 1
	}
	end := start + m.maxRows
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		r := m.rows[i]
		style := RowStyle
		if r.action.Kind != ActionConnect {
			style = ActionStyle
		}
		if r.action.Kind == ActionConnect && r.action.Target.InUse {
			style = ActiveStyle
		}

		cursor := "  "
		if i == m.cursor {
			cursor = CursorStyle.Render("> ")
		}
		s += cursor + style.Render(r.label) + "\n"
	}

	s += HelpStyle.Render("↑/↓ move · enter select · r refresh · esc quit")
	return s
}
