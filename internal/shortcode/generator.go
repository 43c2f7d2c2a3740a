package shortcode

import (
	"crypto/rand"
	"fmt"
)

// DefaultLength is the length used when the caller asks for a non-positive one.
const DefaultLength = 7

// Alphabet is the URL-safe symbol set codes are drawn from. Its size is 64, so the low six
// bits of a random byte select a symbol uniformly.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// Generator produces short codes.
type Generator interface {
	Generate(length int) (string, error)
}

type randomGenerator struct{}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() Generator {
	return randomGenerator{}
}

// Generate returns a random code of the given length
func (randomGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i, b := range bytes {
		bytes[i] = Alphabet[b&63]
	}
	return string(bytes), nil
}
