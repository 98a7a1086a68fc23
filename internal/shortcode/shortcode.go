// Package shortcode generates the random identifiers used in short URLs.
package shortcode

import (
	"context"
	"math/rand/v2"
)

const (
	// Length is the fixed length of every generated code.
	Length = 7

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxAttempts = 10
)

// CodeChecker is the slice of the link store the generator needs.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generate returns a random fixed-length alphanumeric code. Codes are opaque
// identifiers, not secrets, so a non-cryptographic source is fine here.
func Generate() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// GenerateUnique generates a code and verifies it against the store, retrying
// a bounded number of times on collision. If every attempt collides the last
// candidate is returned anyway; the unique index on the code column is the
// backstop for that practically unreachable case.
func GenerateUnique(ctx context.Context, store CodeChecker) (string, error) {
	code := Generate()
	for i := 0; i < maxAttempts; i++ {
		exists, err := store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		code = Generate()
	}
	return code, nil
}
