package app

import "strings"

// MaskAddress hides most of a recipient address for logging.
// "alice@example.com" -> "a***@example.com", "+15551234567" -> "***4567".
func MaskAddress(address string) string {
	if at := strings.LastIndex(address, "@"); at > 0 {
		return address[:1] + "***" + address[at:]
	}
	if len(address) <= 4 {
		return "***"
	}
	return "***" + address[len(address)-4:]
}
