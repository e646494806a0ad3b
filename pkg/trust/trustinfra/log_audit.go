package trustinfra

import (
	"context"

	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

// LogAuditRecorder writes audit events to the structured log. It is the
// fallback recorder when no database is configured.
type LogAuditRecorder struct{}

// NewLogAuditRecorder creates the log-backed recorder.
func NewLogAuditRecorder() *LogAuditRecorder { return &LogAuditRecorder{} }

// Record emits the event as a structured log line.
func (r *LogAuditRecorder) Record(_ context.Context, event trust.AuditEvent) {
	logx.WithFields(logx.Fields{
		"identity":    event.Identity,
		"kind":        string(event.Kind),
		"occurred_at": event.At,
	}).Info("trust: audit event")
}
