package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifimenu/internal/model"
)

func TestPayload(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		secret   string
		security model.Security
		want     string
	}{
		{"wpa2", "HomeNet", "hunter22", model.SecurityWPA2, "WIFI:T:WPA;S:HomeNet;P:hunter22;;"},
		{"wpa3 also maps to WPA", "HomeNet", "pw", model.SecurityWPA3, "WIFI:T:WPA;S:HomeNet;P:pw;;"},
		{"open", "FreeWifi", "", model.SecurityOpen, "WIFI:T:nopass;S:FreeWifi;P:;;"},
		{"wep", "Legacy", "abcde", model.SecurityWEP, "WIFI:T:WEP;S:Legacy;P:abcde;;"},
		{"reserved chars escaped", `My;Net,"x":y`, `p\w;1`, model.SecurityWPA2,
			`WIFI:T:WPA;S:My\;Net\,\"x\"\:y;P:p\\w\;1;;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payload(tt.ssid, tt.secret, tt.security))
		})
	}
}

func TestRenderProducesBlockText(t *testing.T) {
	out, err := Render("HomeNet", "hunter22", model.SecurityWPA2)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Greater(t, len(out), 100, "QR output should span many cells")
}
