package ddns

import (
	"crypto/rand"
	"encoding/base64"
)

// newToken produces a cryptographically random URL-safe bearer token.
// 32 bytes of entropy; never derived from the hostname or any other
// guessable input.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
