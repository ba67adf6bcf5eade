// Package promo issues the redeemable codes handed to guests after feedback.
//
// Codes are 8 characters from a 31-symbol alphabet, about 8.5e11 values.
// Uniqueness is probabilistic: nothing checks issued codes against storage,
// and a collision is treated as statistically negligible.
package promo

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// Alphabet is uppercase letters and digits without the look-alikes 0 O 1 I L.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const CodeLength = 8

type Generator struct {
	random io.Reader
}

func NewGenerator() *Generator {
	return &Generator{random: rand.Reader}
}

// Generate returns a fresh code drawn from a cryptographically strong source.
func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("generate promo code: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}

// ExpiresAt is the issue time plus the validity window, truncated to a UTC date.
func ExpiresAt(issuedAt time.Time, validDays int) time.Time {
	t := issuedAt.UTC().AddDate(0, 0, validDays)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders an expiry the way guests and staff see it.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
