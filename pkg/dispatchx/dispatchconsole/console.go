package dispatchconsole

import (
	"context"

	"github.com/Abraxas-365/praxis/pkg/logx"
)

// ConsoleDispatcher prints codes to the terminal via logx. This is the
// development delivery channel; it is the only place a code may appear in
// output, and it is never selected by default in production config.
type ConsoleDispatcher struct{}

// NewConsoleDispatcher creates a console code dispatcher.
func NewConsoleDispatcher() *ConsoleDispatcher {
	return &ConsoleDispatcher{}
}

// DeliverCode logs the code instead of sending it.
func (d *ConsoleDispatcher) DeliverCode(_ context.Context, identity, code string) error {
	logx.WithFields(logx.Fields{
		"identity": identity,
		"code":     code,
	}).Info("dispatch/console: verification code (dev mode)")
	return nil
}
