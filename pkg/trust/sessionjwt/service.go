// Package sessionjwt is the session-issuing identity provider backed by
// signed JWTs. It implements both the issuance handoff used by the OTP
// engine and the refresh contract consulted by the session gate.
package sessionjwt

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeTokenIssueFailed = ErrRegistry.Register("TOKEN_ISSUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Session token issuance failed")
	CodeTokenInvalid     = ErrRegistry.Register("TOKEN_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Session token is invalid")
	CodeRefreshInvalid   = ErrRegistry.Register("REFRESH_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Refresh token is invalid or expired")
)

const (
	audienceAccess  = "praxis-api"
	audienceRefresh = "praxis-refresh"
)

// Service issues and validates HS256 session tokens.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clockx.Clock
}

// NewService creates a JWT session service.
func NewService(secret, issuer string, accessTTL, refreshTTL time.Duration, clock clockx.Clock) *Service {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "praxis"
	}
	return &Service{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// IssueSession mints a fresh access/refresh pair for a verified identity.
func (s *Service) IssueSession(_ context.Context, identity string) (*trust.SessionGrant, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.accessTTL)

	access, err := s.sign(identity, audienceAccess, now, expiresAt)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenIssueFailed, err)
	}
	refresh, err := s.sign(identity, audienceRefresh, now, now.Add(s.refreshTTL))
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenIssueFailed, err)
	}

	return &trust.SessionGrant{
		AccessToken:  access,
		RefreshToken: refresh,
		Descriptor: trust.SessionDescriptor{
			Subject:      identity,
			ExpiresAt:    expiresAt,
			RefreshToken: refresh,
		},
	}, nil
}

// ParseDescriptor checks the token's signature and returns the descriptor it
// encodes. Expiry is deliberately not validated here: the session gate owns
// the expiry decision, including the grace-window refresh path.
func (s *Service) ParseDescriptor(token string) (*trust.SessionDescriptor, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenInvalid, err)
	}

	descriptor := &trust.SessionDescriptor{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		descriptor.ExpiresAt = claims.ExpiresAt.Time
	}
	return descriptor, nil
}

// Refresh validates the descriptor's refresh token and returns a descriptor
// with a fresh expiry. The refresh token's own expiry is enforced strictly.
func (s *Service) Refresh(_ context.Context, d trust.SessionDescriptor) (*trust.SessionDescriptor, error) {
	claims, err := s.parseRefresh(d.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &trust.SessionDescriptor{
		Subject:      claims.Subject,
		ExpiresAt:    s.clock.Now().Add(s.accessTTL),
		RefreshToken: d.RefreshToken,
	}, nil
}

// RefreshGrant rotates a refresh token into a full new session grant, for
// the explicit refresh endpoint.
func (s *Service) RefreshGrant(ctx context.Context, refreshToken string) (*trust.SessionGrant, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, claims.Subject)
}

func (s *Service) parseRefresh(refreshToken string) (*jwt.RegisteredClaims, error) {
	if refreshToken == "" {
		return nil, ErrRegistry.New(CodeRefreshInvalid)
	}
	claims, err := s.parse(refreshToken, jwt.WithAudience(audienceRefresh))
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeRefreshInvalid, err)
	}
	return claims, nil
}

func (s *Service) sign(identity, audience string, now, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   identity,
		Audience:  []string{audience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithTimeFunc(s.clock.Now), jwt.WithIssuer(s.issuer))

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
