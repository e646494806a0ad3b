// Package dispatchx delivers one-time verification codes out-of-band. The
// verification engine only sees the CodeDispatcher port; providers decide the
// channel (SMS, email, terminal).
package dispatchx

import "context"

// CodeDispatcher sends a verification code to an identity. Implementations
// own their retry and formatting logic; callers bound the call with a
// context timeout.
type CodeDispatcher interface {
	DeliverCode(ctx context.Context, identity, code string) error
}
