package dispatchx

import (
	"net/http"

	"github.com/Abraxas-365/praxis/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("DISPATCH")

var (
	CodeSendFailed       = ErrRegistry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to deliver verification code")
	CodeInvalidRecipient = ErrRegistry.Register("INVALID_RECIPIENT", errx.TypeValidation, http.StatusBadRequest, "Invalid delivery recipient")
)

func ErrSendFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeSendFailed, cause)
}

func ErrInvalidRecipient() *errx.Error {
	return ErrRegistry.New(CodeInvalidRecipient)
}
