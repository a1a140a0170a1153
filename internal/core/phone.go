package core

import "strings"

// FormatPhone formats an 11-digit Brazilian mobile number as
// "(DD) DDDDD-DDDD". Any other input is returned trimmed but otherwise
// verbatim.
func FormatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != 11 {
		return raw
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return raw
		}
	}
	return "(" + raw[:2] + ") " + raw[2:7] + "-" + raw[7:]
}

// IsFormattablePhone reports whether FormatPhone would reformat raw.
func IsFormattablePhone(raw string) bool {
	raw = strings.TrimSpace(raw)
	return FormatPhone(raw) != raw
}
