package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-connections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateAuditLog = `CREATE TABLE audit_log_entries (
    id TEXT NOT NULL PRIMARY KEY,
    event_type TEXT NOT NULL,
    actor TEXT NOT NULL,
    resource_type TEXT NOT NULL,
    resource_id TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

func setupAuditRepo(t *testing.T) (*AuditLogRepository, *bun.DB, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateAuditLog)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return NewAuditLogRepository(bunDB), bunDB, cleanup
}

func TestAuditLogRepositoryRecord(t *testing.T) {
	repo, bunDB, cleanup := setupAuditRepo(t)
	defer cleanup()

	ctx := context.Background()
	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Record(ctx, connections.AuditEntry{
		EventType:    connections.AuditEventProviderRevocation,
		Actor:        "google",
		ResourceType: "social_account",
		ResourceID:   "google-user-1",
		OccurredAt:   occurredAt,
		Details: map[string]any{
			"count_deleted": int64(2),
		},
	})
	require.NoError(t, err)

	var model AuditLogModel
	err = bunDB.NewSelect().Model(&model).Limit(1).Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, string(connections.AuditEventProviderRevocation), model.EventType)
	assert.Equal(t, "google", model.Actor)
	assert.Equal(t, "social_account", model.ResourceType)
	assert.Equal(t, "google-user-1", model.ResourceID)
	assert.WithinDuration(t, occurredAt, model.CreatedAt, time.Second)
	assert.EqualValues(t, 2, model.Details["count_deleted"])
	assert.NotEmpty(t, model.ID)
}

func TestAuditLogRepositoryRecordDefaults(t *testing.T) {
	repo, bunDB, cleanup := setupAuditRepo(t)
	defer cleanup()

	ctx := context.Background()
	before := time.Now()

	err := repo.Record(ctx, connections.AuditEntry{
		EventType:    connections.AuditEventProviderRevocation,
		Actor:        "meta",
		ResourceType: "social_account",
		ResourceID:   "meta-user-1",
	})
	require.NoError(t, err)

	var model AuditLogModel
	err = bunDB.NewSelect().Model(&model).Limit(1).Scan(ctx)
	require.NoError(t, err)

	assert.NotNil(t, model.Details)
	assert.False(t, model.CreatedAt.Before(before.Add(-time.Second)))
}
