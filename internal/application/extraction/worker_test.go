package extraction

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"skillscope/internal/domain/analysis"
	"skillscope/internal/domain/queue"
	"skillscope/internal/domain/source"
	"skillscope/internal/infrastructure/migration"
	"skillscope/internal/infrastructure/repository"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

type fakeSource struct {
	tickets map[string]*source.Ticket
}

func (f *fakeSource) FetchBatch(ctx context.Context, afterID int64, limit int) ([]source.Ticket, error) {
	return nil, nil
}

func (f *fakeSource) FetchByNumber(ctx context.Context, ticketNumber string) (*source.Ticket, error) {
	return f.tickets[ticketNumber], nil
}

func (f *fakeSource) FetchClosedSince(ctx context.Context, ts time.Time, limit int) ([]source.Ticket, error) {
	return nil, nil
}

type fakeLLM struct {
	respond func(prompt string) (string, error)
	calls   int
}

func (f *fakeLLM) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.calls++
	return f.respond(prompt)
}

func setupWorkerTest(t *testing.T) (queue.Repository, analysis.RunRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))
	return repository.NewQueueRepository(db, logger.NewLogger()), repository.NewRunRepository(db), db
}

func enqueueWorkerTicket(t *testing.T, repo queue.Repository, number int64) {
	t.Helper()
	ticket, err := queue.NewTicket(strconv.FormatInt(number, 10), 1, 1,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), queue.SourceMeta{ClientName: "Acme Corp"})
	require.NoError(t, err)
	inserted, err := repo.Enqueue(context.Background(), ticket)
	require.NoError(t, err)
	require.True(t, inserted)
}

func workerConfig() config.ExtractionConfig {
	return config.ExtractionConfig{Model: "test-model", BatchSize: 2}
}

func TestWorker_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("drains the queue and records skills", func(t *testing.T) {
		queueRepo, runRepo, db := setupWorkerTest(t)

		src := &fakeSource{tickets: map[string]*source.Ticket{}}
		for i := int64(1); i <= 3; i++ {
			num := strconv.FormatInt(i, 10)
			enqueueWorkerTicket(t, queueRepo, i)
			src.tickets[num] = &source.Ticket{
				TicketNumber: i,
				Summary:      fmt.Sprintf("ticket %d summary", i),
				Description:  "user cannot resolve internal hostnames",
			}
		}

		llmClient := &fakeLLM{respond: func(prompt string) (string, error) {
			assert.Contains(t, prompt, "internal hostnames")
			return `{"skills": ["dns troubleshooting"]}`, nil
		}}

		w, err := NewWorker(queueRepo, src, llmClient, runRepo, workerConfig(), logger.NewLogger())
		require.NoError(t, err)
		require.NoError(t, w.Run(ctx))

		counts, err := queueRepo.StatusCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[queue.StatusCompleted])
		assert.Equal(t, 3, llmClient.calls)

		// The run audit records the drain.
		var runs []struct {
			Status           string
			TicketsProcessed int
		}
		require.NoError(t, db.Table("analysis_runs").Scan(&runs).Error)
		require.Len(t, runs, 1)
		assert.Equal(t, analysis.RunStatusCompleted, runs[0].Status)
		assert.Equal(t, 3, runs[0].TicketsProcessed)
	})

	t.Run("one bad ticket does not block its batch", func(t *testing.T) {
		queueRepo, runRepo, _ := setupWorkerTest(t)

		src := &fakeSource{tickets: map[string]*source.Ticket{}}
		for i := int64(1); i <= 5; i++ {
			enqueueWorkerTicket(t, queueRepo, i)
			src.tickets[strconv.FormatInt(i, 10)] = &source.Ticket{
				TicketNumber: i,
				Summary:      "summary",
			}
		}

		llmClient := &fakeLLM{respond: func(prompt string) (string, error) {
			return "", fmt.Errorf("model overloaded")
		}}
		failOnThird := 0
		llmClient.respond = func(prompt string) (string, error) {
			failOnThird++
			if failOnThird == 3 {
				return "", fmt.Errorf("model overloaded")
			}
			return `{"skills": []}`, nil
		}

		w, err := NewWorker(queueRepo, src, llmClient, runRepo, workerConfig(), logger.NewLogger())
		require.NoError(t, err)
		require.NoError(t, w.Run(ctx))

		counts, err := queueRepo.StatusCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), counts[queue.StatusCompleted])
		assert.Equal(t, int64(1), counts[queue.StatusError])
		assert.Zero(t, counts[queue.StatusPending])
	})

	t.Run("missing source ticket is marked errored", func(t *testing.T) {
		queueRepo, runRepo, _ := setupWorkerTest(t)
		enqueueWorkerTicket(t, queueRepo, 42)

		src := &fakeSource{tickets: map[string]*source.Ticket{}}
		llmClient := &fakeLLM{respond: func(prompt string) (string, error) {
			return `{"skills": []}`, nil
		}}

		w, err := NewWorker(queueRepo, src, llmClient, runRepo, workerConfig(), logger.NewLogger())
		require.NoError(t, err)
		require.NoError(t, w.Run(ctx))

		counts, err := queueRepo.StatusCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[queue.StatusError])
		assert.Zero(t, llmClient.calls)
	})

	t.Run("source ticket with no text is marked errored", func(t *testing.T) {
		queueRepo, runRepo, _ := setupWorkerTest(t)
		enqueueWorkerTicket(t, queueRepo, 7)

		src := &fakeSource{tickets: map[string]*source.Ticket{
			"7": {TicketNumber: 7},
		}}
		llmClient := &fakeLLM{respond: func(prompt string) (string, error) {
			return `{"skills": []}`, nil
		}}

		w, err := NewWorker(queueRepo, src, llmClient, runRepo, workerConfig(), logger.NewLogger())
		require.NoError(t, err)
		require.NoError(t, w.Run(ctx))

		counts, err := queueRepo.StatusCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[queue.StatusError])
		assert.Zero(t, counts[queue.StatusCompleted])
		assert.Zero(t, llmClient.calls)
	})

	t.Run("empty queue exits immediately", func(t *testing.T) {
		queueRepo, runRepo, _ := setupWorkerTest(t)

		llmClient := &fakeLLM{respond: func(prompt string) (string, error) {
			return "", nil
		}}
		w, err := NewWorker(queueRepo, &fakeSource{}, llmClient, runRepo, workerConfig(), logger.NewLogger())
		require.NoError(t, err)
		require.NoError(t, w.Run(ctx))
		assert.Zero(t, llmClient.calls)
	})
}
