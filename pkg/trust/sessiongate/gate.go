// Package sessiongate decides, per request, whether a presented session
// descriptor is still good or recoverable via refresh. The gate is stateless;
// everything it needs arrives with the call.
package sessiongate

import (
	"context"
	"net/http"
	"time"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

var ErrRegistry = errx.NewRegistry("GATE")

var CodeSessionExpired = ErrRegistry.Register("SESSION_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Session is no longer valid, please sign in again")

func ErrSessionExpired() *errx.Error { return ErrRegistry.New(CodeSessionExpired) }

// Refresher is the identity-provider collaborator consulted for the single
// refresh attempt inside the grace window.
type Refresher interface {
	Refresh(ctx context.Context, d trust.SessionDescriptor) (*trust.SessionDescriptor, error)
}

// Decision records which path the gate took; it is what gets logged, and it
// never contains token material.
type Decision struct {
	Admitted   bool
	Refreshed  bool
	Path       string
	Descriptor *trust.SessionDescriptor
}

// Gate evaluates session descriptors against the decision table.
type Gate struct {
	refresher Refresher
	clock     clockx.Clock
	grace     time.Duration
}

// New creates a gate with the given grace window.
func New(refresher Refresher, clock clockx.Clock, grace time.Duration) *Gate {
	return &Gate{
		refresher: refresher,
		clock:     clock,
		grace:     grace,
	}
}

// Evaluate runs the decision table in order. The returned Decision is always
// populated; the error is non-nil exactly when the request is denied.
func (g *Gate) Evaluate(ctx context.Context, d *trust.SessionDescriptor) (*Decision, error) {
	decision, err := g.evaluate(ctx, d)

	fields := logx.Fields{"path": decision.Path, "admitted": decision.Admitted}
	if d != nil && d.Subject != "" {
		fields["subject"] = d.Subject
	}
	logx.WithFields(fields).Debug("sessiongate: decision")

	return decision, err
}

func (g *Gate) evaluate(ctx context.Context, d *trust.SessionDescriptor) (*Decision, error) {
	if d == nil {
		return deny("no_session")
	}
	if !d.HasExpiry() {
		// fail closed: validity is never assumed without an explicit expiry
		return deny("missing_expiry")
	}

	now := g.clock.Now()
	if d.ExpiresAt.After(now) {
		return &Decision{Admitted: true, Path: "valid", Descriptor: d}, nil
	}

	if now.Sub(d.ExpiresAt) > g.grace {
		return deny("grace_elapsed")
	}

	if g.refresher == nil || !d.CanRefresh() {
		return deny("refresh_unavailable")
	}

	refreshed, err := g.refresher.Refresh(ctx, *d)
	if err != nil {
		return deny("refresh_failed")
	}
	if refreshed == nil || !refreshed.HasExpiry() || !refreshed.ExpiresAt.After(now) {
		return deny("refresh_stale")
	}

	return &Decision{Admitted: true, Refreshed: true, Path: "refreshed", Descriptor: refreshed}, nil
}

func deny(path string) (*Decision, error) {
	return &Decision{Path: path}, ErrSessionExpired().WithDetail("reason", path)
}
