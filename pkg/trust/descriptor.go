package trust

import "time"

// SessionDescriptor is a caller's claimed authentication state as produced
// by the identity provider. This layer never creates descriptors on its own;
// it only gates them.
type SessionDescriptor struct {
	Subject      string
	ExpiresAt    time.Time
	RefreshToken string
}

// HasExpiry reports whether the descriptor carries an explicit expiry.
// Descriptors without one are never admitted.
func (d *SessionDescriptor) HasExpiry() bool {
	return !d.ExpiresAt.IsZero()
}

// CanRefresh reports whether the descriptor carries a refresh capability.
func (d *SessionDescriptor) CanRefresh() bool {
	return d.RefreshToken != ""
}

// SessionGrant is the result of a successful verification: the token pair
// handed back to the caller plus the descriptor it encodes.
type SessionGrant struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Descriptor   SessionDescriptor `json:"-"`
}
