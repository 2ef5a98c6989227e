package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-connections"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditLogModel is the Bun model for provider-revocation audit entries.
// Rows are append-only: written once, never updated or deleted.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log_entries"`

	ID           uuid.UUID      `bun:"id,pk,nullzero,type:uuid"`
	EventType    string         `bun:"event_type,notnull"`
	Actor        string         `bun:"actor,notnull"`
	ResourceType string         `bun:"resource_type,notnull"`
	ResourceID   string         `bun:"resource_id,notnull"`
	Details      map[string]any `bun:"details,type:jsonb"`
	CreatedAt    time.Time      `bun:"created_at,default:current_timestamp"`
}

// AuditLogRepository implements connections.AuditSink using Bun.
type AuditLogRepository struct {
	repository.Repository[*AuditLogModel]
}

var _ connections.AuditSink = (*AuditLogRepository)(nil)

// NewAuditLogRepository creates a new repository.
func NewAuditLogRepository(db *bun.DB) *AuditLogRepository {
	repo := repository.NewRepository[*AuditLogModel](db, repository.ModelHandlers[*AuditLogModel]{
		NewRecord: func() *AuditLogModel { return &AuditLogModel{} },
		GetID: func(m *AuditLogModel) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *AuditLogModel, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &AuditLogRepository{Repository: repo}
}

// Record implements connections.AuditSink.
func (r *AuditLogRepository) Record(ctx context.Context, entry connections.AuditEntry) error {
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}

	_, err := r.Create(ctx, &AuditLogModel{
		ID:           uuid.New(),
		EventType:    string(entry.EventType),
		Actor:        entry.Actor,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      details,
		CreatedAt:    occurredAt,
	})
	return err
}
