package menu

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifimenu/internal/model"
)

func sampleOptions() Options {
	return Options{
		Networks: []model.NetworkRecord{
			{SSID: "HomeNet", Security: model.SecurityWPA2, Signal: 90, Bars: "▂▄▆█", InUse: true},
			{SSID: "CoffeeShop", Security: model.SecurityOpen, Signal: 60, Bars: "▂▄__"},
			{SSID: "Neighbor", Security: model.SecurityWPA3, Signal: 30, Bars: "▂___", Known: true},
		},
		RadioEnabled: true,
		CurrentSSID:  "HomeNet",
		CacheAge:     5 * time.Second,
		MaxRows:      14,
	}
}

func TestCursorStartsOnActiveNetwork(t *testing.T) {
	m := newMenuModel(sampleOptions())

	a := m.rows[m.cursor].action
	require.Equal(t, ActionConnect, a.Kind)
	assert.Equal(t, "HomeNet", a.Target.SSID)
	assert.True(t, a.Target.InUse)
}

func TestOpenNetworkWarningShown(t *testing.T) {
	m := newMenuModel(sampleOptions())
	assert.NotEmpty(t, m.warning)

	opts := sampleOptions()
	opts.Networks = opts.Networks[:1]
	m = newMenuModel(opts)
	assert.Empty(t, m.warning)
}

func TestConnectedOnlyRowsHiddenWhenDisconnected(t *testing.T) {
	opts := sampleOptions()
	opts.CurrentSSID = ""
	for i := range opts.Networks {
		opts.Networks[i].InUse = false
	}
	m := newMenuModel(opts)

	for _, r := range m.rows {
		assert.NotContains(t, []ActionKind{ActionDisconnect, ActionDetails, ActionQRCode},
			r.action.Kind, "row %q should not be offered while disconnected", r.label)
	}
	assert.Zero(t, m.cursor)
}

func TestEnterSelectsRowUnderCursor(t *testing.T) {
	m := newMenuModel(sampleOptions())
	m.cursor = 0

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ActionToggleRadio, next.(menuModel).choice.Kind)
}

func TestEscDismissesMenu(t *testing.T) {
	m := newMenuModel(sampleOptions())
	m.cursor = 3

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ActionNone, next.(menuModel).choice.Kind)
}

func TestRefreshHotkey(t *testing.T) {
	m := newMenuModel(sampleOptions())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Equal(t, ActionRefresh, next.(menuModel).choice.Kind)
}

func TestNavigationStaysInBounds(t *testing.T) {
	m := newMenuModel(sampleOptions())
	m.cursor = 0

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Zero(t, next.(menuModel).cursor)

	m.cursor = len(m.rows) - 1
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, len(m.rows)-1, next.(menuModel).cursor)
}

func TestNetworkLabelMarksSecurityAndState(t *testing.T) {
	open := networkLabel(model.NetworkRecord{SSID: "CoffeeShop", Security: model.SecurityOpen, Signal: 60})
	assert.NotContains(t, open, "🔒")

	secured := networkLabel(model.NetworkRecord{SSID: "HomeNet", Security: model.SecurityWPA2, Signal: 90, InUse: true, Known: true})
	assert.Contains(t, secured, "🔒")
	assert.Contains(t, secured, "●")
	assert.Contains(t, secured, "*")
}
