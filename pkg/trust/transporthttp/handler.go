// Package transporthttp exposes the verification layer over HTTP: challenge
// issuance and verification, session refresh, and the signed webhook ingress.
package transporthttp

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
	"github.com/Abraxas-365/praxis/pkg/trust/otpsrv"
	"github.com/Abraxas-365/praxis/pkg/trust/sessiongate"
	"github.com/Abraxas-365/praxis/pkg/trust/sessionjwt"
	"github.com/Abraxas-365/praxis/pkg/trust/webhookx"
)

var ErrRegistry = errx.NewRegistry("AUTHAPI")

var CodeBadRequest = ErrRegistry.Register("BAD_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Malformed request body")

// Handler serves the /auth and /webhooks routes.
type Handler struct {
	otp      *otpsrv.Service
	sessions *sessionjwt.Service
	gate     *sessiongate.Middleware
	webhooks *webhookx.Middleware
}

// NewHandler wires the transport to the verification services.
func NewHandler(
	otp *otpsrv.Service,
	sessions *sessionjwt.Service,
	gate *sessiongate.Middleware,
	webhooks *webhookx.Middleware,
) *Handler {
	return &Handler{
		otp:      otp,
		sessions: sessions,
		gate:     gate,
		webhooks: webhooks,
	}
}

// RegisterRoutes mounts the verification endpoints on the app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/otp/request", h.requestCode)
	auth.Post("/otp/resend", h.resendCode)
	auth.Post("/otp/verify", h.verifyCode)
	auth.Post("/session/refresh", h.refreshSession)
	auth.Get("/me", h.gate.Protect(), h.me)

	app.Post("/webhooks/:integration", h.webhooks.Require(), h.receiveWebhook)
}

// ErrorHandler renders registered errors as structured JSON responses. Wire
// it into fiber.Config.ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error":      e.Message,
			"code":       "FIBER_ERROR",
			"status":     e.Code,
			"request_id": c.Get("X-Request-ID"),
		})
	}

	var e *errx.Error
	if errx.As(err, &e) {
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"status":     e.HTTPStatus,
			"request_id": c.Get("X-Request-ID"),
		}
		if len(e.Details) > 0 {
			response["details"] = e.Details
		}
		return c.Status(e.HTTPStatus).JSON(response)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      "Internal Server Error",
		"code":       "INTERNAL_ERROR",
		"type":       "INTERNAL",
		"request_id": c.Get("X-Request-ID"),
	})
}

type identityRequest struct {
	Identity string `json:"identity"`
}

type verifyRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Subject      string `json:"subject"`
}

func (h *Handler) requestCode(c *fiber.Ctx) error {
	var req identityRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrRegistry.NewWithCause(CodeBadRequest, err)
	}

	result, err := h.otp.IssueChallenge(c.UserContext(), req.Identity)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(result)
}

func (h *Handler) resendCode(c *fiber.Ctx) error {
	var req identityRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrRegistry.NewWithCause(CodeBadRequest, err)
	}

	result, err := h.otp.ResendChallenge(c.UserContext(), req.Identity)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(result)
}

func (h *Handler) verifyCode(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrRegistry.NewWithCause(CodeBadRequest, err)
	}

	grant, err := h.otp.VerifyChallenge(c.UserContext(), req.Identity, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(grantResponse(grant))
}

func (h *Handler) refreshSession(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrRegistry.NewWithCause(CodeBadRequest, err)
	}
	token := req.RefreshToken
	if token == "" {
		token = c.Get("X-Refresh-Token")
	}

	grant, err := h.sessions.RefreshGrant(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(grantResponse(grant))
}

func (h *Handler) me(c *fiber.Ctx) error {
	session := sessiongate.SessionFrom(c)
	if session == nil {
		return sessiongate.ErrSessionExpired()
	}
	return c.JSON(fiber.Map{
		"subject":    session.Subject,
		"expires_at": session.ExpiresAt.Unix(),
	})
}

// receiveWebhook runs after signature verification. Payload handling is the
// integrations' concern; the verification layer just acknowledges receipt.
func (h *Handler) receiveWebhook(c *fiber.Ctx) error {
	logx.WithFields(logx.Fields{
		"integration": c.Params("integration"),
		"bytes":       len(c.Body()),
	}).Info("transporthttp: webhook accepted")
	return c.SendStatus(fiber.StatusAccepted)
}

func grantResponse(grant *trust.SessionGrant) sessionResponse {
	return sessionResponse{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.Descriptor.ExpiresAt.Unix(),
		Subject:      grant.Descriptor.Subject,
	}
}
