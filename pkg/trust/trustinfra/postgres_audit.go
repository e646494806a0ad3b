// Package trustinfra provides the infrastructure adapters for the
// verification layer: the Postgres audit trail and its log-only fallback.
package trustinfra

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Abraxas-365/praxis/pkg/config"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

// PostgresAuditRecorder persists verification audit events. Recording is
// best-effort: a failed insert is logged and never propagated, so the
// verification flow itself cannot be broken by the audit trail.
type PostgresAuditRecorder struct {
	db *sqlx.DB
}

// NewPostgresConnection opens and pings the audit database.
func NewPostgresConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// NewPostgresAuditRecorder creates a recorder over an open connection.
func NewPostgresAuditRecorder(db *sqlx.DB) *PostgresAuditRecorder {
	return &PostgresAuditRecorder{db: db}
}

const auditSchema = `
	CREATE TABLE IF NOT EXISTS trust_audit_events (
		id          UUID PRIMARY KEY,
		identity    TEXT        NOT NULL,
		kind        TEXT        NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trust_audit_identity
		ON trust_audit_events (identity, occurred_at)`

// EnsureSchema creates the audit table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("ensuring audit schema: %w", err)
	}
	return nil
}

const insertAuditEvent = `
	INSERT INTO trust_audit_events (id, identity, kind, occurred_at)
	VALUES ($1, $2, $3, $4)`

// Record inserts the event. Identity and kind are the only payload; codes or
// digests never reach this table.
func (r *PostgresAuditRecorder) Record(ctx context.Context, event trust.AuditEvent) {
	_, err := r.db.ExecContext(ctx, insertAuditEvent,
		uuid.NewString(), event.Identity, string(event.Kind), event.At)
	if err != nil {
		logx.WithError(err).WithFields(logx.Fields{
			"kind":     string(event.Kind),
			"identity": event.Identity,
		}).Error("trustinfra: audit insert failed")
	}
}
