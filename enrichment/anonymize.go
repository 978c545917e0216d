// Package enrichment derives privacy-safe attributes for page view facts:
// an anonymized client identifier, coarse geography and a user-agent
// classification. Every function here is best-effort and never fails the
// caller.
package enrichment

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// AnonymizeIP returns the hex SHA-256 digest of the trimmed address, or nil
// when the input is empty. The input is not validated; malformed addresses
// are hashed like any other string.
func AnonymizeIP(rawIP string) *string {
	trimmed := strings.TrimSpace(rawIP)
	if trimmed == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(trimmed))
	digest := hex.EncodeToString(sum[:])
	return &digest
}

// RedactIP keeps only the network prefix of an address for diagnostics:
// the first two octets of IPv4, the first two groups of IPv6.
func RedactIP(rawIP string) string {
	ip := net.ParseIP(strings.TrimSpace(rawIP))
	if ip == nil {
		return "invalid"
	}
	if v4 := ip.To4(); v4 != nil {
		parts := strings.Split(v4.String(), ".")
		return parts[0] + "." + parts[1] + ".x.x"
	}
	parts := strings.SplitN(ip.String(), ":", 3)
	return parts[0] + ":" + parts[1] + "::x"
}
