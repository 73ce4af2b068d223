// Package cryptox holds the small crypto helpers the admission service needs:
// generating opaque, unguessable invite codes.
package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token size constants (bytes of entropy before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	// This is the size used for invite codes: short enough to paste into a
	// registration form, large enough that guessing is not a realistic attack.
	TokenSize128 = 16

	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken returns a cryptographically random token of size bytes,
// encoded base64url without padding (URL-safe, fixed length for a given size).
//
// Collisions are not prevented here; callers that require uniqueness rely on a
// unique constraint at the store and retry on conflict.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. Only for use
// during initialization where failure is unrecoverable.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(err)
	}
	return token
}
