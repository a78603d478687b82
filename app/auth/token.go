package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

const (
	// DefaultTokenLength is the length of tokens printed by gen-token.
	DefaultTokenLength = 32
	// MinTokenLength is the shortest token accepted at startup.
	MinTokenLength = 32
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Verify reports whether candidate equals expected. The running time depends
// only on the lengths of the inputs, never on where the first mismatch is.
func Verify(candidate, expected string) bool {
	if len(candidate) != len(expected) {
		return false
	}

	var diff byte
	for i := 0; i < len(candidate); i++ {
		diff |= candidate[i] ^ expected[i]
	}

	return subtle.ConstantTimeByteEq(diff, 0) == 1
}

// Generate returns a random base62 string of n characters.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}

	token := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)

	for len(token) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		for _, b := range buf {
			// 0x3f masks to 0..63; rejecting 62 and 63 keeps the distribution uniform
			idx := b & 0x3f
			if int(idx) >= len(base62Alphabet) {
				continue
			}
			token = append(token, base62Alphabet[idx])
			if len(token) == n {
				break
			}
		}
	}

	return string(token), nil
}
