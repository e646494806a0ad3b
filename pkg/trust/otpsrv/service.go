// Package otpsrv implements the one-time-code issuance and verification
// engine. Per identity, a challenge moves PENDING until it is verified,
// expires, or exhausts its attempt bound; every transition goes through the
// store's per-identity serialization.
package otpsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/dispatchx"
	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

// Config bounds the engine. Zero values fall back to the reference defaults.
type Config struct {
	CodeLength        int
	ChallengeLifetime time.Duration
	MaxAttempts       int
	ResendCooldown    time.Duration
	DispatchTimeout   time.Duration

	// DevCodeEcho copies the generated code into issuance results. Only for
	// local development; production config never enables it.
	DevCodeEcho bool
}

func (c *Config) applyDefaults() {
	if c.CodeLength == 0 {
		c.CodeLength = 6
	}
	if c.ChallengeLifetime == 0 {
		c.ChallengeLifetime = 10 * time.Minute
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.ResendCooldown == 0 {
		c.ResendCooldown = 60 * time.Second
	}
	if c.DispatchTimeout == 0 {
		c.DispatchTimeout = 5 * time.Second
	}
}

// Service is the OTP issuance and verification engine.
type Service struct {
	store      trust.ChallengeStore
	dispatcher dispatchx.CodeDispatcher
	sessions   trust.SessionIssuer
	audit      trust.AuditRecorder
	clock      clockx.Clock
	cfg        Config
}

// NewService wires the engine to its collaborators.
func NewService(
	store trust.ChallengeStore,
	dispatcher dispatchx.CodeDispatcher,
	sessions trust.SessionIssuer,
	audit trust.AuditRecorder,
	clock clockx.Clock,
	cfg Config,
) *Service {
	cfg.applyDefaults()
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		sessions:   sessions,
		audit:      audit,
		clock:      clock,
		cfg:        cfg,
	}
}

// IssueResult acknowledges an issuance. The code itself is never included
// outside the development echo mode.
type IssueResult struct {
	Identity  string `json:"identity"`
	Delivered bool   `json:"delivered"`
	DevCode   string `json:"dev_code,omitempty"`
}

// IssueChallenge creates a fresh challenge for the identity, replacing any
// prior one, and asks the dispatch collaborator to deliver the code.
func (s *Service) IssueChallenge(ctx context.Context, rawIdentity string) (*IssueResult, error) {
	identity, err := trust.NormalizeIdentity(rawIdentity)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, identity, trust.AuditChallengeIssued)
}

// ResendChallenge replaces the identity's challenge with a fresh code once
// the cooldown since the last issuance has elapsed. Resend is gated only by
// the cooldown clock; a locked identity may request a fresh challenge.
func (s *Service) ResendChallenge(ctx context.Context, rawIdentity string) (*IssueResult, error) {
	identity, err := trust.NormalizeIdentity(rawIdentity)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	existing, err := s.store.Get(ctx, identity)
	switch {
	case err == nil:
		if elapsed := now.Sub(existing.IssuedAt); elapsed < s.cfg.ResendCooldown {
			remaining := s.cfg.ResendCooldown - elapsed
			s.audit.Record(ctx, trust.AuditEvent{Identity: identity, Kind: trust.AuditResendOnCooldown, At: now})
			return nil, trust.ErrResendCooldown().
				WithDetail("cooldown_remaining_seconds", int(remaining.Round(time.Second).Seconds()))
		}
	case errx.IsCode(err, trust.CodeChallengeNotFound):
		// nothing pending, resend behaves like a first issuance
	default:
		return nil, err
	}

	return s.issue(ctx, identity, trust.AuditChallengeResent)
}

func (s *Service) issue(ctx context.Context, identity string, kind trust.AuditEventKind) (*IssueResult, error) {
	code, err := trust.GenerateCode(s.cfg.CodeLength)
	if err != nil {
		return nil, errx.Wrap(err, "failed to generate verification code", errx.TypeInternal)
	}

	now := s.clock.Now()
	ch := trust.Challenge{
		Identity: identity,
		Code:     code,
		IssuedAt: now,
		Attempts: 0,
	}
	if err := s.store.Put(ctx, ch); err != nil {
		return nil, errx.Wrap(err, "failed to store challenge", errx.TypeInternal)
	}
	s.audit.Record(ctx, trust.AuditEvent{Identity: identity, Kind: kind, At: now})

	result := &IssueResult{Identity: identity, Delivered: true}
	if s.cfg.DevCodeEcho {
		result.DevCode = code
	}

	// The challenge is already stored and no lock is held here; a slow or
	// failed delivery leaves the entry intact so the caller can retry via
	// resend after the cooldown.
	dctx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()
	if err := s.dispatcher.DeliverCode(dctx, identity, code); err != nil {
		s.audit.Record(ctx, trust.AuditEvent{Identity: identity, Kind: trust.AuditDeliveryFailed, At: now})
		logx.WithField("identity", identity).WithError(err).Warn("otpsrv: code delivery failed")
		return nil, trust.ErrDeliveryFailed(err)
	}

	return result, nil
}

// VerifyChallenge validates a submitted code. A match consumes the challenge
// and hands off to the session issuer; a mismatch burns an attempt, and the
// attempt that reaches the bound discards the secret for good.
func (s *Service) VerifyChallenge(ctx context.Context, rawIdentity, submitted string) (*trust.SessionGrant, error) {
	identity, err := trust.NormalizeIdentity(rawIdentity)
	if err != nil {
		return nil, err
	}
	if !trust.ValidCodeShape(submitted, s.cfg.CodeLength) {
		return nil, trust.ErrInvalidCodeShape()
	}

	now := s.clock.Now()
	var outcome trust.AuditEventKind

	err = s.store.Mutate(ctx, identity, func(ch *trust.Challenge) (bool, error) {
		if ch.IsExpired(now, s.cfg.ChallengeLifetime) {
			outcome = trust.AuditVerifyExpired
			return true, trust.ErrChallengeExpired()
		}
		if ch.IsLocked(s.cfg.MaxAttempts) {
			outcome = trust.AuditVerifyLocked
			return true, trust.ErrChallengeLocked()
		}
		if ch.MatchCode(submitted) {
			outcome = trust.AuditVerifySucceeded
			return true, nil
		}

		ch.Attempts++
		remaining := s.cfg.MaxAttempts - ch.Attempts
		if remaining <= 0 {
			// Bound reached: the secret is discarded immediately. The entry
			// stays as a tombstone so the next attempt surfaces the lockout
			// instead of a not-found.
			ch.Lock()
			remaining = 0
		}
		outcome = trust.AuditVerifyMismatch
		return false, trust.ErrCodeMismatch().WithDetail("attempts_remaining", remaining)
	})

	if outcome != "" {
		s.audit.Record(ctx, trust.AuditEvent{Identity: identity, Kind: outcome, At: now})
	}
	if err != nil {
		return nil, err
	}

	grant, err := s.sessions.IssueSession(ctx, identity)
	if err != nil {
		return nil, errx.Wrap(err, "verification succeeded but session issuance failed", errx.TypeExternal)
	}
	return grant, nil
}
