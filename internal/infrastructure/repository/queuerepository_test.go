package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillscope/internal/domain/queue"
	"skillscope/internal/infrastructure/persistence/models"
	"skillscope/internal/shared/errors"
)

func TestQueueRepository_Enqueue(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	t.Run("inserts a pending ticket", func(t *testing.T) {
		tk := enqueueTestTicket(t, repo, "100001")

		pending, err := repo.PendingCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), pending)
		assert.Equal(t, queue.StatusPending, tk.Status())
	})

	t.Run("duplicate source ticket number is tolerated", func(t *testing.T) {
		enqueueTestTicket(t, repo, "100002")

		dup, err := queue.NewTicket("100002", 1, 1, testDate(), queue.SourceMeta{})
		require.NoError(t, err)

		inserted, err := repo.Enqueue(ctx, dup)
		require.NoError(t, err)
		assert.False(t, inserted)
	})
}

func TestQueueRepository_ClaimBatch(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		enqueueTestTicket(t, repo, fmt.Sprintf("2000%02d", i))
	}

	t.Run("two workers never receive overlapping tickets", func(t *testing.T) {
		first, err := repo.ClaimBatch(ctx, "worker-a", 3)
		require.NoError(t, err)
		require.Len(t, first, 3)

		second, err := repo.ClaimBatch(ctx, "worker-b", 3)
		require.NoError(t, err)
		require.Len(t, second, 2)

		seen := map[uint]bool{}
		for _, tk := range append(first, second...) {
			assert.False(t, seen[tk.ID()], "ticket %d claimed twice", tk.ID())
			seen[tk.ID()] = true
			assert.Equal(t, queue.StatusClaimed, tk.Status())
		}
	})

	t.Run("empty queue yields empty batch", func(t *testing.T) {
		batch, err := repo.ClaimBatch(ctx, "worker-c", 10)
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("oldest tickets are claimed first", func(t *testing.T) {
		repo, _ := newTestQueueRepo(t)
		old := enqueueTestTicket(t, repo, "300001")
		enqueueTestTicket(t, repo, "300002")

		batch, err := repo.ClaimBatch(ctx, "worker-d", 1)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, old.ID(), batch[0].ID())
	})

	t.Run("ticket left claimed from an earlier batch is not re-delivered", func(t *testing.T) {
		repo, _ := newTestQueueRepo(t)
		stale := enqueueTestTicket(t, repo, "310001")

		first, err := repo.ClaimBatch(ctx, "worker-e", 5)
		require.NoError(t, err)
		require.Len(t, first, 1)

		// The ticket stays Claimed, as after a failed terminal update.
		fresh := enqueueTestTicket(t, repo, "310002")

		second, err := repo.ClaimBatch(ctx, "worker-e", 5)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, fresh.ID(), second[0].ID())
		assert.NotEqual(t, stale.ID(), second[0].ID())
	})
}

func TestQueueRepository_UpdateStatus(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	claimOne := func(t *testing.T, number, worker string) *queue.Ticket {
		enqueueTestTicket(t, repo, number)
		batch, err := repo.ClaimBatch(ctx, worker, 1)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		return batch[0]
	}

	t.Run("claimed ticket completes", func(t *testing.T) {
		tk := claimOne(t, "400001", "w1")
		err := repo.UpdateStatus(ctx, tk.ID(), queue.StatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("repeating a terminal status is idempotent", func(t *testing.T) {
		tk := claimOne(t, "400002", "w2")
		require.NoError(t, repo.UpdateStatus(ctx, tk.ID(), queue.StatusError))
		assert.NoError(t, repo.UpdateStatus(ctx, tk.ID(), queue.StatusError))
	})

	t.Run("completed ticket cannot become errored", func(t *testing.T) {
		tk := claimOne(t, "400003", "w3")
		require.NoError(t, repo.UpdateStatus(ctx, tk.ID(), queue.StatusCompleted))

		err := repo.UpdateStatus(ctx, tk.ID(), queue.StatusError)
		require.Error(t, err)
		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	})

	t.Run("non-terminal target is rejected", func(t *testing.T) {
		tk := claimOne(t, "400004", "w4")
		err := repo.UpdateStatus(ctx, tk.ID(), queue.StatusPending)
		assert.Error(t, err)
	})

	t.Run("unknown ticket yields not found", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 99999, queue.StatusCompleted)
		require.Error(t, err)
		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
	})
}

func TestQueueRepository_CompleteWithSkills(t *testing.T) {
	repo, db := newTestQueueRepo(t)
	ctx := context.Background()

	enqueueTestTicket(t, repo, "500001")
	batch, err := repo.ClaimBatch(ctx, "w1", 1)
	require.NoError(t, err)
	tk := batch[0]

	t.Run("persists skills and completion atomically", func(t *testing.T) {
		err := repo.CompleteWithSkills(ctx, tk.ID(), []string{"DNS Troubleshooting", "Firewall Configuration"})
		require.NoError(t, err)

		var links int64
		require.NoError(t, db.Model(&models.TicketSkillModel{}).Where("ticket_id = ?", tk.ID()).Count(&links).Error)
		assert.Equal(t, int64(2), links)

		counts, err := repo.StatusCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[queue.StatusCompleted])
	})

	t.Run("reuses existing discovered skill rows", func(t *testing.T) {
		enqueueTestTicket(t, repo, "500002")
		batch, err := repo.ClaimBatch(ctx, "w2", 1)
		require.NoError(t, err)

		err = repo.CompleteWithSkills(ctx, batch[0].ID(), []string{"DNS Troubleshooting"})
		require.NoError(t, err)

		var skills int64
		require.NoError(t, db.Model(&models.DiscoveredSkillModel{}).Where("name = ?", "DNS Troubleshooting").Count(&skills).Error)
		assert.Equal(t, int64(1), skills)
	})

	t.Run("empty skill list still completes the ticket", func(t *testing.T) {
		enqueueTestTicket(t, repo, "500003")
		batch, err := repo.ClaimBatch(ctx, "w3", 1)
		require.NoError(t, err)

		err = repo.CompleteWithSkills(ctx, batch[0].ID(), nil)
		assert.NoError(t, err)
	})
}

func TestQueueRepository_ResetStuck(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		enqueueTestTicket(t, repo, fmt.Sprintf("6000%02d", i))
	}

	batch, err := repo.ClaimBatch(ctx, "crashed-worker", 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	t.Run("returns the number of recovered tickets", func(t *testing.T) {
		reset, err := repo.ResetStuck(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), reset)

		pending, err := repo.PendingCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), pending)
	})

	t.Run("reset tickets are claimable again", func(t *testing.T) {
		batch, err := repo.ClaimBatch(ctx, "fresh-worker", 10)
		require.NoError(t, err)
		assert.Len(t, batch, 4)
	})
}

func TestQueueRepository_RequeueErrors(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	enqueueTestTicket(t, repo, "700001")
	enqueueTestTicket(t, repo, "700002")

	batch, err := repo.ClaimBatch(ctx, "w1", 2)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, batch[0].ID(), queue.StatusError))
	require.NoError(t, repo.UpdateStatus(ctx, batch[1].ID(), queue.StatusCompleted))

	requeued, err := repo.RequeueErrors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), requeued)

	counts, err := repo.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[queue.StatusPending])
	assert.Equal(t, int64(1), counts[queue.StatusCompleted])
	assert.Zero(t, counts[queue.StatusError])
}

func TestQueueRepository_ActiveClaims(t *testing.T) {
	repo, _ := newTestQueueRepo(t)
	ctx := context.Background()

	enqueueTestTicket(t, repo, "800001")
	_, err := repo.ClaimBatch(ctx, "live-worker", 1)
	require.NoError(t, err)

	claims, err := repo.ActiveClaims(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "live-worker", claims[0].WorkerID)
	assert.Equal(t, "800001", claims[0].SourceTicketNumber)
}
