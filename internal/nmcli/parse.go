package nmcli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/user/wifimenu/internal/model"
)

// splitFields splits one line of `nmcli --terse` output into at most n
// fields. Terse output separates fields with ':' and escapes literal ':'
// and '\' inside values with a backslash, which a plain strings.Split
// would mangle for SSIDs containing colons.
func splitFields(line string, n int) []string {
	fields := make([]string, 0, n)
	var cur strings.Builder
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':' && len(fields) < n-1:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// parseScanLine parses one IN-USE:SSID:SECURITY:SIGNAL:BARS line. It
// returns false for hidden networks (empty or "--" SSID).
func parseScanLine(line string) (model.NetworkRecord, bool) {
	parts := splitFields(line, 5)
	if len(parts) < 5 {
		return model.NetworkRecord{}, false
	}

	ssid := strings.TrimSpace(parts[1])
	if ssid == "" || ssid == "--" {
		return model.NetworkRecord{}, false
	}

	return model.NetworkRecord{
		SSID:     ssid,
		Security: model.ParseSecurity(parts[2]),
		Signal:   parseSignalPercent(parts[3]),
		Bars:     strings.TrimSpace(parts[4]),
		InUse:    strings.TrimSpace(parts[0]) == "*",
	}, true
}

// parseScanOutput parses the whole terse scan listing: the in-use network
// sorts first, then by descending signal, and duplicate SSIDs (the same
// network on several channels) collapse to the strongest one.
func parseScanOutput(out string) []model.NetworkRecord {
	var nets []model.NetworkRecord
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rec, ok := parseScanLine(line); ok {
			nets = append(nets, rec)
		}
	}

	sort.SliceStable(nets, func(i, j int) bool {
		if nets[i].InUse != nets[j].InUse {
			return nets[i].InUse
		}
		return nets[i].Signal > nets[j].Signal
	})

	seen := make(map[string]bool, len(nets))
	deduped := nets[:0]
	for _, n := range nets {
		if seen[n.SSID] && !n.InUse {
			continue
		}
		seen[n.SSID] = true
		deduped = append(deduped, n)
	}
	return deduped
}

// classifyConnectFailure maps nmcli connect output to a typed failure.
// nmcli does not use exit codes to distinguish causes, so the combined
// output is the only signal available.
func classifyConnectFailure(op, stdout, stderr string) error {
	combined := strings.ToLower(stdout + stderr)
	switch {
	case strings.Contains(combined, "secrets"),
		strings.Contains(combined, "password"),
		strings.Contains(combined, "authentication"),
		strings.Contains(combined, "802-11-wireless-security"):
		return ErrAuthFailure
	case strings.Contains(combined, "timeout"),
		strings.Contains(combined, "timed out"):
		return ErrTimeout
	default:
		return &AdapterError{Op: op, Output: lastLine(stderr, stdout)}
	}
}

// lastLine returns the last non-empty line of the first non-empty input,
// which is where nmcli puts its human-readable reason.
func lastLine(texts ...string) string {
	for _, text := range texts {
		lines := strings.Split(strings.TrimSpace(text), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if l := strings.TrimSpace(lines[i]); l != "" {
				return l
			}
		}
	}
	return "unknown error"
}

// parseDeviceInfo extracts IP4.ADDRESS[1], IP4.GATEWAY and all IP4.DNS
// entries from `nmcli -t -f IP4.ADDRESS,IP4.GATEWAY,IP4.DNS dev show`.
func parseDeviceInfo(out string) (ip, gateway string, dns []string) {
	for _, line := range strings.Split(out, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) != 2 || parts[1] == "" {
			continue
		}
		key, val := parts[0], parts[1]
		switch {
		case key == "IP4.ADDRESS[1]" && ip == "":
			ip = val
		case key == "IP4.GATEWAY" && gateway == "":
			gateway = val
		case strings.HasPrefix(key, "IP4.DNS"):
			dns = append(dns, val)
		}
	}
	return ip, gateway, dns
}

// isMissingProfile reports whether a `connection delete` failure means the
// profile does not exist. nmcli prints "unknown connection 'name'" or
// "cannot delete unknown connection(s)" for those.
func isMissingProfile(stderr string) bool {
	low := strings.ToLower(stderr)
	return strings.Contains(low, "unknown connection") ||
		strings.Contains(low, "not found")
}

// parseSignalPercent reads an nmcli SIGNAL field, clamped to 0-100.
// Garbage reads as 0.
func parseSignalPercent(s string) int {
	signal, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || signal < 0 {
		return 0
	}
	if signal > 100 {
		return 100
	}
	return signal
}

// parseInUseField returns the second field of the line whose first field is
// "*", for `-t -f IN-USE,<FIELD> dev wifi` listings.
func parseInUseField(out string) string {
	for _, line := range strings.Split(out, "\n") {
		parts := splitFields(strings.TrimSpace(line), 2)
		if len(parts) == 2 && parts[0] == "*" {
			return parts[1]
		}
	}
	return ""
}

// parsePingLatency pulls the average round-trip time in milliseconds out of
// ping's "rtt min/avg/max/mdev = a/b/c/d ms" summary line.
func parsePingLatency(out string) float64 {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "rtt") && !strings.Contains(line, "round-trip") {
			continue
		}
		parts := strings.Split(line, "/")
		if len(parts) < 5 {
			continue
		}
		if ms, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64); err == nil {
			return ms
		}
	}
	return 0
}
