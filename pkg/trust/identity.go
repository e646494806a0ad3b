package trust

import (
	"strings"
)

// NormalizeIdentity canonicalizes an identity so challenges for the same
// party always share one store key. Phone numbers are reduced to E.164 form;
// email contacts are lower-cased.
func NormalizeIdentity(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidIdentity()
	}

	if strings.Contains(s, "@") {
		return normalizeEmail(s)
	}
	return normalizePhone(s)
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(s)
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return "", ErrInvalidIdentity()
	}
	if !strings.Contains(s[at+1:], ".") {
		return "", ErrInvalidIdentity()
	}
	return s, nil
}

func normalizePhone(s string) (string, error) {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// formatting noise, dropped
		default:
			return "", ErrInvalidIdentity()
		}
	}

	normalized := b.String()
	if !strings.HasPrefix(normalized, "+") {
		return "", ErrInvalidIdentity().WithDetail("reason", "missing country prefix")
	}

	digits := len(normalized) - 1
	if digits < 8 || digits > 15 {
		return "", ErrInvalidIdentity().WithDetail("reason", "phone number length out of range")
	}
	return normalized, nil
}

// ValidCodeShape reports whether a submitted code has the expected shape
// (fixed length, all digits). Malformed codes are rejected before the store
// is consulted.
func ValidCodeShape(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
