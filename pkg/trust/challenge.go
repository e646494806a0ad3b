// Package trust is the identity verification domain: one-time-code
// challenges, session descriptors and the ports the engine depends on.
package trust

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// Challenge is a pending proof-of-possession test for one identity. At most
// one challenge exists per identity; issuance and resend fully replace any
// prior entry.
type Challenge struct {
	Identity string
	Code     string
	IssuedAt time.Time
	Attempts int
}

// IsExpired reports whether the challenge has outlived the given lifetime.
func (c *Challenge) IsExpired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(c.IssuedAt) > lifetime
}

// IsLocked reports whether the attempt bound has been reached.
func (c *Challenge) IsLocked(maxAttempts int) bool {
	return c.Attempts >= maxAttempts
}

// Lock discards the secret code, leaving a tombstone that can only surface
// the lockout to the caller before being removed.
func (c *Challenge) Lock() {
	c.Code = ""
}

// MatchCode compares a submitted code against the stored one without leaking
// timing information about matching prefixes. A locked challenge has no code
// and matches nothing.
func (c *Challenge) MatchCode(submitted string) bool {
	if c.Code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Code), []byte(submitted)) == 1
}

// GenerateCode produces a fixed-length numeric code from a uniform
// cryptographic random source.
func GenerateCode(length int) (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", length), n), nil
}
