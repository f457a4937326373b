package hotspot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifimenu/internal/nmcli"
)

type fakeController struct {
	setErr    error
	active    string
	activeErr error
	calls     []bool // on/off per SetAccessPoint call
	lastSSID  string
	lastPass  string
}

func (f *fakeController) SetAccessPoint(ctx context.Context, on bool, ssid, passphrase string) error {
	f.calls = append(f.calls, on)
	f.lastSSID = ssid
	f.lastPass = passphrase
	return f.setErr
}

func (f *fakeController) ActiveHotspot(ctx context.Context) (string, error) {
	return f.active, f.activeErr
}

func TestEnableDisable(t *testing.T) {
	f := &fakeController{}
	m := NewManager(f)
	require.Equal(t, StateOff, m.State())

	require.NoError(t, m.Enable(context.Background(), "MySpot", "longenough"))
	assert.Equal(t, StateOn, m.State())
	assert.Equal(t, "MySpot", f.lastSSID)

	require.NoError(t, m.Disable(context.Background()))
	assert.Equal(t, StateOff, m.State())
	assert.Equal(t, []bool{true, false}, f.calls)
}

func TestShortPassphraseRejectedBeforeAdapterCall(t *testing.T) {
	f := &fakeController{}
	m := NewManager(f)

	err := m.Enable(context.Background(), "MySpot", "short")
	assert.ErrorIs(t, err, ErrPassphraseTooShort)
	assert.Empty(t, f.calls)
	assert.Equal(t, StateOff, m.State())
}

func TestReusingStoredProfileSkipsPassphraseCheck(t *testing.T) {
	f := &fakeController{}
	m := NewManager(f)

	// Empty SSID means "reactivate the stored profile"; no new passphrase
	// is involved.
	require.NoError(t, m.Enable(context.Background(), "", ""))
	assert.Equal(t, StateOn, m.State())
}

func TestAdapterErrorSurfacedVerbatim(t *testing.T) {
	wantErr := &nmcli.AdapterError{Op: "hotspot add", Output: "wifi device not found"}
	f := &fakeController{setErr: wantErr}
	m := NewManager(f)

	err := m.Enable(context.Background(), "MySpot", "longenough")
	assert.Equal(t, wantErr, err)
	assert.Equal(t, StateOff, m.State(), "state unchanged on failure")
}

func TestActiveSyncsState(t *testing.T) {
	f := &fakeController{active: "Hotspot"}
	m := NewManager(f)

	name, err := m.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hotspot", name)
	assert.Equal(t, StateOn, m.State())

	f.active = ""
	_, err = m.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateOff, m.State())
}
