package validate

import (
	"regexp"
	"strings"
)

var (
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reWallet = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	reIdem   = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)
)

// ID validates a simple resource identifier (product/collection ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Wallet validates a 0x-prefixed 20-byte hex address and lowercases it
// so cache keys and order rows compare consistently.
func Wallet(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reWallet.MatchString(s) {
		return "", false
	}
	return strings.ToLower(s), true
}

// IdempotencyKey accepts client-generated keys (uuid-shaped or similar).
func IdempotencyKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reIdem.MatchString(s)
}
