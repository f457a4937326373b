// Package qr renders Wi-Fi share codes as terminal block characters.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/user/wifimenu/internal/model"
)

// Payload builds the WIFI:… string phones understand. Reserved characters
// in the SSID and secret are backslash-escaped per the de-facto format.
func Payload(ssid, secret string, security model.Security) string {
	var kind string
	switch security {
	case model.SecurityOpen:
		kind = "nopass"
	case model.SecurityWEP:
		kind = "WEP"
	default:
		kind = "WPA"
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;;", kind, escapeField(ssid), escapeField(secret))
}

// Render returns a scannable QR code for the network as UTF-8 text.
func Render(ssid, secret string, security model.Security) (string, error) {
	code, err := qrcode.New(Payload(ssid, secret, security), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to build QR code: %w", err)
	}
	return code.ToSmallString(false), nil
}

// escapeField escapes the characters the WIFI: format reserves.
func escapeField(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\', ';', ',', '"', ':':
			out.WriteRune('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
