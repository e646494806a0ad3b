// Package webhookx authenticates inbound webhook deliveries by checking the
// sender's HMAC-SHA256 signature over the raw request body.
package webhookx

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/logx"
)

var ErrRegistry = errx.NewRegistry("WEBHOOK")

var (
	CodeSignatureInvalid = ErrRegistry.Register("SIGNATURE_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Webhook signature verification failed")
	CodeSecretMissing    = ErrRegistry.Register("SECRET_MISSING", errx.TypeAuthorization, http.StatusUnauthorized, "No signing secret configured for this integration")
)

func ErrSignatureInvalid() *errx.Error { return ErrRegistry.New(CodeSignatureInvalid) }
func ErrSecretMissing() *errx.Error    { return ErrRegistry.New(CodeSecretMissing) }

// Verifier checks webhook payload signatures per integration. An integration
// without a configured secret fails closed unless allowUnsigned was set,
// which the config layer only permits outside production.
type Verifier struct {
	secrets       map[string]string
	allowUnsigned bool
}

// NewVerifier creates a verifier over the given per-integration secrets.
func NewVerifier(secrets map[string]string, allowUnsigned bool) *Verifier {
	normalized := make(map[string]string, len(secrets))
	for name, secret := range secrets {
		normalized[strings.ToLower(name)] = secret
	}
	return &Verifier{secrets: normalized, allowUnsigned: allowUnsigned}
}

// Verify checks the hex-encoded HMAC-SHA256 signature against the raw body
// for the named integration. A nil return means the payload is authentic.
func (v *Verifier) Verify(integration string, body []byte, signature string) error {
	secret, ok := v.secrets[strings.ToLower(integration)]
	if !ok || secret == "" {
		if v.allowUnsigned {
			logx.WithField("integration", integration).
				Warn("webhookx: accepting unsigned payload, no secret configured")
			return nil
		}
		return ErrSecretMissing().WithDetail("integration", integration)
	}

	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(provided) == 0 {
		return ErrSignatureInvalid().WithDetail("integration", integration)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	// hash both digests before comparing so a length mismatch does not
	// short-circuit the comparison
	expectedSum := sha256.Sum256(expected)
	providedSum := sha256.Sum256(provided)
	if subtle.ConstantTimeCompare(expectedSum[:], providedSum[:]) != 1 {
		return ErrSignatureInvalid().WithDetail("integration", integration)
	}
	return nil
}

// Sign computes the hex signature a sender would attach for the given secret.
// Exposed for outbound deliveries and tests.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
