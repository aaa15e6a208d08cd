package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/source"
	"skillscope/internal/infrastructure/migration"
	"skillscope/internal/infrastructure/repository"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

type fakeSource struct {
	tickets []source.Ticket
}

func (f *fakeSource) FetchBatch(ctx context.Context, afterID int64, limit int) ([]source.Ticket, error) {
	var out []source.Ticket
	for _, t := range f.tickets {
		if t.TicketNumber > afterID && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) FetchByNumber(ctx context.Context, ticketNumber string) (*source.Ticket, error) {
	return nil, nil
}

func (f *fakeSource) FetchClosedSince(ctx context.Context, ts time.Time, limit int) ([]source.Ticket, error) {
	var out []source.Ticket
	for _, t := range f.tickets {
		if !t.DateClosed.Before(ts) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func sourceTicket(number int64, technician string) source.Ticket {
	return source.Ticket{
		TicketNumber:   number,
		Summary:        "printer offline",
		Status:         "Closed",
		ClientName:     "Acme Corp",
		TechnicianName: technician,
		DateClosed:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestController(t *testing.T, src source.TicketSource) (*Controller, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))

	ctrl := NewController(
		src,
		repository.NewQueueRepository(db, logger.NewLogger()),
		repository.NewTechnicianRepository(db),
		repository.NewCheckpointRepository(db),
		config.IngestionConfig{FetchLimit: 100},
		logger.NewLogger(),
	)
	return ctrl, db
}

func TestController_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues new tickets and advances the checkpoint", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{
			sourceTicket(1001, "Alice Smith"),
			sourceTicket(1002, "Bob Jones"),
		}}
		ctrl, db := newTestController(t, src)

		result, err := ctrl.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 2, result.Inserted)
		assert.Zero(t, result.Skipped)
		assert.Equal(t, int64(1002), result.NewCheckpoint)

		var queued int64
		require.NoError(t, db.Table("tickets").Count(&queued).Error)
		assert.Equal(t, int64(2), queued)
	})

	t.Run("blank technician maps to the unassigned sentinel", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{sourceTicket(1001, "   ")}}
		ctrl, db := newTestController(t, src)

		result, err := ctrl.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)

		var names []string
		require.NoError(t, db.Table("technicians").Pluck("name", &names).Error)
		assert.Equal(t, []string{"Unassigned"}, names)
	})

	t.Run("second pass fetches nothing below the checkpoint", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{
			sourceTicket(1001, "Alice Smith"),
			sourceTicket(1002, "Bob Jones"),
		}}
		ctrl, _ := newTestController(t, src)

		_, err := ctrl.Run(ctx)
		require.NoError(t, err)

		second, err := ctrl.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, second.Fetched)
		assert.Equal(t, int64(1002), second.NewCheckpoint)

		// New source tickets beyond the checkpoint are picked up next pass.
		src.tickets = append(src.tickets, sourceTicket(1003, "Alice Smith"))
		third, err := ctrl.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, third.Inserted)
		assert.Equal(t, int64(1003), third.NewCheckpoint)
	})

	t.Run("duplicates already in the queue are counted, not errors", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{sourceTicket(1001, "Alice Smith")}}
		ctrl, db := newTestController(t, src)

		_, err := ctrl.Run(ctx)
		require.NoError(t, err)

		// Roll the checkpoint back so the same ticket is fetched again.
		require.NoError(t, db.Exec("UPDATE processing_checkpoint SET last_processed_ticket_id = 0").Error)

		result, err := ctrl.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Duplicates)
		assert.Zero(t, result.Inserted)
		assert.Equal(t, int64(1001), result.NewCheckpoint)
	})

	t.Run("technician reuse across tickets", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{
			sourceTicket(1001, "Alice Smith"),
			sourceTicket(1002, "Alice Smith"),
		}}
		ctrl, db := newTestController(t, src)

		_, err := ctrl.Run(ctx)
		require.NoError(t, err)

		var technicians int64
		require.NoError(t, db.Table("technicians").Count(&technicians).Error)
		assert.Equal(t, int64(1), technicians)

		var ticketTechs []uint
		require.NoError(t, db.Table("tickets").Pluck("technician_id", &ticketTechs).Error)
		require.Len(t, ticketTechs, 2)
		assert.Equal(t, ticketTechs[0], ticketTechs[1])
	})

	t.Run("backfill by closed date ignores the checkpoint", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{
			sourceTicket(1001, "Alice Smith"),
			sourceTicket(1002, "Bob Jones"),
		}}
		ctrl, db := newTestController(t, src)

		_, err := ctrl.Run(ctx)
		require.NoError(t, err)

		// Normal passes see nothing new, but a backfill refetches by date
		// and tolerates the existing rows as duplicates.
		result, err := ctrl.Backfill(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 2, result.Duplicates)
		assert.Zero(t, result.Inserted)

		var queued int64
		require.NoError(t, db.Table("tickets").Count(&queued).Error)
		assert.Equal(t, int64(2), queued)

		// Nothing closed after a future cutoff.
		empty, err := ctrl.Backfill(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Zero(t, empty.Fetched)
	})

	t.Run("queue counters reflect fresh pending work", func(t *testing.T) {
		src := &fakeSource{tickets: []source.Ticket{sourceTicket(1001, "Alice Smith")}}
		ctrl, db := newTestController(t, src)

		_, err := ctrl.Run(ctx)
		require.NoError(t, err)

		pending, err := repository.NewQueueRepository(db, logger.NewLogger()).PendingCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), pending)

		var statuses []int
		require.NoError(t, db.Table("tickets").Pluck("processing_status_id", &statuses).Error)
		assert.Equal(t, []int{int(queue.StatusPending)}, statuses)
	})
}
