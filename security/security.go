package security

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
)

// NewTokenID returns a random id for a session token. Logout revokes tokens
// by this id.
func NewTokenID() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-CSRF-Token",
	"X-Api-Key",
}

// SanitizeHeaders returns a copy of headers without credentials, for logging.
func SanitizeHeaders(headers http.Header) http.Header {
	clean := headers.Clone()
	for _, header := range sensitiveHeaders {
		clean.Del(header)
	}
	return clean
}
