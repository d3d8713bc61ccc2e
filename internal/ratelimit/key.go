package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyForRequest builds a limiter key for a decision request. Authenticated
// requests are limited per identity; anonymous requests per client address.
// Identities are hashed so raw emails never reach the limiter backend.
func KeyForRequest(identity, clientIP string) string {
	identity = strings.TrimSpace(strings.ToLower(identity))
	if identity != "" {
		sum := sha256.Sum256([]byte(identity))
		return "id:" + hex.EncodeToString(sum[:8])
	}
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		return ""
	}
	return "ip:" + clientIP
}
