package shopping

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Slugs are short shareable identifiers: lowercase alphanumerics, five
// characters.
const (
	slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	SlugLength   = 5

	// maxSlugAttempts bounds collision redraws during list creation.
	// Exhaustion means the keyspace is effectively full, which is an
	// operational problem, not a user error.
	maxSlugAttempts = 16
)

// NewSlug draws a random slug from a CSPRNG.
func NewSlug() (string, error) {
	buf := make([]byte, SlugLength)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw slug character: %w", err)
		}
		buf[i] = slugAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidSlug reports whether s has the shape of a generated slug.
func ValidSlug(s string) bool {
	if len(s) != SlugLength {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
