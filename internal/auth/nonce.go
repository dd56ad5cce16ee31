package auth

import (
	"crypto/rand"
	"fmt"
)

const (
	nonceLength   = 32
	nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// largest multiple of len(nonceAlphabet) that fits in a byte; bytes at or
	// above it are rejected so every symbol stays equally likely
	nonceCutoff = 256 - 256%len(nonceAlphabet)
)

// GenerateNonce returns 32 characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func GenerateNonce() (string, error) {
	out := make([]byte, 0, nonceLength)
	buf := make([]byte, nonceLength*2)

	for len(out) < nonceLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= nonceCutoff {
				continue
			}
			out = append(out, nonceAlphabet[int(b)%len(nonceAlphabet)])
			if len(out) == nonceLength {
				break
			}
		}
	}

	return string(out), nil
}
