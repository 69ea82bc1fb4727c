package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomTokenGenerator mints the opaque bearer tokens sessions are keyed by.
// Tokens are URL-safe so they survive headers and log lines without escaping.
type RandomTokenGenerator struct {
	// Entropy is the number of random bytes per token; 32 when zero.
	Entropy int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Entropy
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: token entropy unavailable: %w", err)
	}
	return "bmt_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
