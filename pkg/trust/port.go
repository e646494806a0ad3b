package trust

import (
	"context"
	"time"
)

// MutateFunc inspects and updates a stored challenge under the store's
// per-identity serialization. The store persists the (possibly mutated)
// challenge unless remove is true, in which case the entry is deleted. The
// returned error is propagated either way, so a mutation can both stick and
// fail the operation (a recorded failed attempt).
type MutateFunc func(ch *Challenge) (remove bool, err error)

// ChallengeStore is a concurrency-safe keyed store of pending challenges.
// Implementations must serialize read-modify-write sequences per identity;
// different identities are fully independent.
type ChallengeStore interface {
	// Put stores a challenge, unconditionally replacing any entry for the
	// same identity.
	Put(ctx context.Context, ch Challenge) error

	// Get returns a snapshot of the challenge for an identity, or
	// ErrChallengeNotFound.
	Get(ctx context.Context, identity string) (*Challenge, error)

	// Mutate runs fn against the stored challenge for an identity, holding
	// that identity's serialization for the whole read-modify-write.
	// Returns ErrChallengeNotFound if no entry exists.
	Mutate(ctx context.Context, identity string, fn MutateFunc) error

	// Delete removes the entry for an identity, if any.
	Delete(ctx context.Context, identity string) error

	// SweepExpired removes entries issued before the cutoff and reports how
	// many were reaped.
	SweepExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionIssuer is the identity-provider collaborator that mints a session
// once a challenge has been verified. Its internals are out of scope here.
type SessionIssuer interface {
	IssueSession(ctx context.Context, identity string) (*SessionGrant, error)
}

// AuditEventKind classifies a verification-layer audit event.
type AuditEventKind string

const (
	AuditChallengeIssued  AuditEventKind = "challenge_issued"
	AuditChallengeResent  AuditEventKind = "challenge_resent"
	AuditDeliveryFailed   AuditEventKind = "delivery_failed"
	AuditVerifyMismatch   AuditEventKind = "verify_mismatch"
	AuditVerifyExpired    AuditEventKind = "verify_expired"
	AuditVerifyLocked     AuditEventKind = "verify_locked"
	AuditVerifySucceeded  AuditEventKind = "verify_succeeded"
	AuditResendOnCooldown AuditEventKind = "resend_on_cooldown"
)

// AuditEvent records who triggered which verification outcome and when.
// It deliberately has no field for the code or any digest value.
type AuditEvent struct {
	Identity string
	Kind     AuditEventKind
	At       time.Time
}

// AuditRecorder persists audit events for intrusion diagnostics.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent)
}
