package webhookx

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/praxis/pkg/logx"
)

// SignatureHeader carries the sender's hex-encoded HMAC-SHA256 digest.
const SignatureHeader = "X-Webhook-Signature"

// Middleware verifies the signature before any handler parses the body. The
// raw bytes are what was signed, so verification has to happen against
// c.Body() and never against a re-serialized form.
type Middleware struct {
	verifier *Verifier
}

// NewMiddleware creates the webhook ingress middleware.
func NewMiddleware(verifier *Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Require rejects the request with 401 unless the payload signature checks
// out for the :integration route parameter. Rejections never echo the body.
func (m *Middleware) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		integration := c.Params("integration")

		if err := m.verifier.Verify(integration, c.Body(), c.Get(SignatureHeader)); err != nil {
			logx.WithFields(logx.Fields{
				"integration": integration,
				"remote_ip":   c.IP(),
			}).Warn("webhookx: rejected inbound delivery")
			return err
		}
		return c.Next()
	}
}
