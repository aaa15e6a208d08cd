package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"skillscope/internal/domain/queue"
	"skillscope/internal/infrastructure/migration"
	"skillscope/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(migration.AutoMigrateModels()...)
	require.NoError(t, err)

	return db
}

func testDate() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func enqueueTestTicket(t *testing.T, repo queue.Repository, number string) *queue.Ticket {
	t.Helper()

	tk, err := queue.NewTicket(number, 1, 1, time.Now().UTC(), queue.SourceMeta{
		ClientName: "Acme Corp",
		Summary:    "Printer offline",
	})
	require.NoError(t, err)

	inserted, err := repo.Enqueue(context.Background(), tk)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotZero(t, tk.ID())

	return tk
}

func newTestQueueRepo(t *testing.T) (queue.Repository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewQueueRepository(db, logger.NewLogger()), db
}
