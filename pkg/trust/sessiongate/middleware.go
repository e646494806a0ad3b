package sessiongate

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/praxis/pkg/trust"
)

// SessionLocal is the fiber locals key holding the admitted descriptor.
const SessionLocal = "session"

// DescriptorParser turns a presented access token into a session descriptor.
// Signature validation happens here; expiry evaluation belongs to the gate.
type DescriptorParser interface {
	ParseDescriptor(token string) (*trust.SessionDescriptor, error)
}

// Middleware gates protected routes.
type Middleware struct {
	parser DescriptorParser
	gate   *Gate
}

// NewMiddleware creates the session gate middleware.
func NewMiddleware(parser DescriptorParser, gate *Gate) *Middleware {
	return &Middleware{parser: parser, gate: gate}
}

// Protect denies the request unless the gate admits the presented session.
func (m *Middleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			decision, err := m.gate.Evaluate(c.UserContext(), nil)
			_ = decision
			return err
		}

		descriptor, err := m.parser.ParseDescriptor(token)
		if err != nil {
			return err
		}

		if refresh := refreshToken(c); refresh != "" {
			descriptor.RefreshToken = refresh
		}

		decision, err := m.gate.Evaluate(c.UserContext(), descriptor)
		if err != nil {
			return err
		}

		c.Locals(SessionLocal, decision.Descriptor)
		if decision.Refreshed {
			// the session was admitted on borrowed time; the client should
			// rotate its tokens via /auth/session/refresh
			c.Set("X-Session-Refresh-Required", "true")
		}
		return c.Next()
	}
}

// SessionFrom returns the admitted descriptor set by Protect, if any.
func SessionFrom(c *fiber.Ctx) *trust.SessionDescriptor {
	d, _ := c.Locals(SessionLocal).(*trust.SessionDescriptor)
	return d
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies("access_token")
}

func refreshToken(c *fiber.Ctx) string {
	if token := c.Get("X-Refresh-Token"); token != "" {
		return token
	}
	return c.Cookies("refresh_token")
}
