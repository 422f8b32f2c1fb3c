package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogLimit caps how many entries List returns.
const AuditLogLimit = 100

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	Entity      string         `json:"entity"`
	EntityID    string         `json:"entityId"`
	Details     string         `json:"details"`
	PerformedBy string         `json:"performedBy"`
	Meta        map[string]any `json:"meta,omitempty"`
	At          time.Time      `json:"timestamp"`
}

// AuditTrail is implemented by every audit sink.
type AuditTrail interface {
	Record(ctx context.Context, log AuditLog) error
	List(ctx context.Context) ([]AuditLog, error)
}

// Normalize fills defaults and checks required fields.
func (l *AuditLog) Normalize(now time.Time) error {
	if l.Action == "" || l.Entity == "" || l.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.PerformedBy == "" {
		l.PerformedBy = "System"
	}
	if l.At.IsZero() {
		l.At = now.UTC()
	}
	return nil
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if err := log.Normalize(time.Now()); err != nil {
		return err
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (id, action, entity, entity_id, details, performed_by, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.Action, log.Entity, log.EntityID, log.Details, log.PerformedBy, metaJSON, log.At)
	return err
}

// List returns the newest entries first.
func (l *AuditLogger) List(ctx context.Context) ([]AuditLog, error) {
	if l == nil {
		return nil, errors.New("audit logger not initialised")
	}
	rows, err := l.pool.Query(ctx, `SELECT id, action, entity, entity_id, details, performed_by, meta, occurred_at FROM audit_logs ORDER BY occurred_at DESC LIMIT $1`, AuditLogLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var (
			entry AuditLog
			meta  []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Entity, &entry.EntityID, &entry.Details, &entry.PerformedBy, &meta, &entry.At); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &entry.Meta); err != nil {
				return nil, err
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
