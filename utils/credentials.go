package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Slugify builds a URL-safe slug from name parts: lowercase, hyphen-joined,
// everything that is not a letter or digit dropped. Returns "trainer" when
// nothing usable remains so callers always get a non-empty base.
func Slugify(parts ...string) string {
	var words []string
	for _, part := range parts {
		var b strings.Builder
		for _, r := range strings.ToLower(strings.TrimSpace(part)) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}

	if len(words) == 0 {
		return "trainer"
	}
	return strings.Join(words, "-")
}

// RandomPassword generates a random alphanumeric password of the given length
func RandomPassword(length int) (string, error) {
	if length <= 0 {
		length = 16
	}

	b := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordCharset[n.Int64()]
	}
	return string(b), nil
}
