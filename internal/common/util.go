package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil slices are ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// AuthorizationValue formats a token for the Authorization header.
func AuthorizationValue(token string) string {
	return TokenScheme + " " + token
}

// ParseAuthorization extracts the token from an Authorization header value.
// The scheme match is case-insensitive; "Bearer" is accepted as an alias.
func ParseAuthorization(v string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, TokenScheme) && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
