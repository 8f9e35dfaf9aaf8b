package captcha

import (
	crand "crypto/rand"
	"fmt"
	"regexp"
)

// Tokens are three independent 10-character segments over a lowercase
// base36 alphabet: 30 characters of high-entropy id, unguessable within a
// challenge's one-minute lifetime.
const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenSegments = 3
	segmentLen    = 10
)

var tokenPattern = regexp.MustCompile(`^[a-z0-9]{10,40}$`)

func newToken() (string, error) {
	buf := make([]byte, tokenSegments*segmentLen)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}

// ValidToken is the cheap syntactic gate applied before any store access.
// It is not a security boundary, just a way to skip round-trips for
// obviously malformed input.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}
