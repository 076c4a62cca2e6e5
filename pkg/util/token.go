package util

import (
	"crypto/rand"
	"encoding/base64"
)

// resetTokenBytes is the entropy of a password reset secret (256 bits)
const resetTokenBytes = 32

// GenerateResetToken creates a cryptographically secure random token,
// URL-safe encoded so it can ride in a query string unescaped.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
