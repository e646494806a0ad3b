package trust

import (
	"net/http"

	"github.com/Abraxas-365/praxis/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("TRUST")

var (
	CodeInvalidIdentity   = ErrRegistry.Register("INVALID_IDENTITY", errx.TypeValidation, http.StatusBadRequest, "Identity is malformed")
	CodeInvalidCodeShape  = ErrRegistry.Register("INVALID_CODE", errx.TypeValidation, http.StatusBadRequest, "Verification code is malformed")
	CodeCodeMismatch      = ErrRegistry.Register("CODE_MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Incorrect verification code")
	CodeChallengeNotFound = ErrRegistry.Register("CHALLENGE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "No active challenge for this identity")
	CodeChallengeExpired  = ErrRegistry.Register("CHALLENGE_EXPIRED", errx.TypeValidation, http.StatusBadRequest, "Verification code has expired")
	CodeChallengeLocked   = ErrRegistry.Register("CHALLENGE_LOCKED", errx.TypeBusiness, http.StatusTooManyRequests, "Too many failed attempts, request a new code")
	CodeResendCooldown    = ErrRegistry.Register("RESEND_COOLDOWN", errx.TypeBusiness, http.StatusTooManyRequests, "A code was sent recently, wait before requesting another")
	CodeDeliveryFailed    = ErrRegistry.Register("DELIVERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not deliver the verification code")
)

func ErrInvalidIdentity() *errx.Error   { return ErrRegistry.New(CodeInvalidIdentity) }
func ErrInvalidCodeShape() *errx.Error  { return ErrRegistry.New(CodeInvalidCodeShape) }
func ErrCodeMismatch() *errx.Error      { return ErrRegistry.New(CodeCodeMismatch) }
func ErrChallengeNotFound() *errx.Error { return ErrRegistry.New(CodeChallengeNotFound) }
func ErrChallengeExpired() *errx.Error  { return ErrRegistry.New(CodeChallengeExpired) }
func ErrChallengeLocked() *errx.Error   { return ErrRegistry.New(CodeChallengeLocked) }
func ErrResendCooldown() *errx.Error    { return ErrRegistry.New(CodeResendCooldown) }

func ErrDeliveryFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeDeliveryFailed, cause)
}
