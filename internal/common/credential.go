package common

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	credentialScheme  = "argon2id"
	credentialSaltLen = 16
	credentialKeyLen  = 32
)

func deriveCredentialKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, credentialKeyLen)
}

// CredentialDigest derives the offline login verifier kept in the local
// users table. Every call uses a fresh salt, so the result has the form
// "argon2id$<salt hex>$<key hex>" and must be checked with CheckCredential.
func CredentialDigest(password []byte) (string, error) {
	salt, err := MakeRandHexString(credentialSaltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := deriveCredentialKey(password, []byte(salt))
	return credentialScheme + "$" + salt + "$" + hex.EncodeToString(key), nil
}

// CheckCredential reports whether password matches digest. Malformed or
// empty digests never match.
func CheckCredential(digest string, password []byte) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[0] != credentialScheme || parts[1] == "" {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) != credentialKeyLen {
		return false
	}
	got := deriveCredentialKey(password, []byte(parts[1]))
	return subtle.ConstantTimeCompare(got, want) == 1
}
