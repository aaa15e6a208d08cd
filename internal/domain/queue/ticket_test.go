package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingTicket(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket("12345", 1, 7, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), SourceMeta{
		ClientName: "Acme Corp",
	})
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ticket := newPendingTicket(t)
		assert.Equal(t, StatusPending, ticket.Status())
		assert.Equal(t, "12345", ticket.SourceTicketNumber())
		assert.Nil(t, ticket.WorkerID())
	})

	t.Run("blank ticket number", func(t *testing.T) {
		_, err := NewTicket("  ", 1, 7, time.Now(), SourceMeta{})
		assert.Error(t, err)
	})

	t.Run("missing technician", func(t *testing.T) {
		_, err := NewTicket("12345", 1, 0, time.Now(), SourceMeta{})
		assert.Error(t, err)
	})
}

func TestTicket_Claim(t *testing.T) {
	t.Run("pending ticket", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		assert.Equal(t, StatusClaimed, ticket.Status())
		require.NotNil(t, ticket.WorkerID())
		assert.Equal(t, "worker-a", *ticket.WorkerID())
	})

	t.Run("already claimed", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		assert.Error(t, ticket.Claim("worker-b"))
	})
}

func TestTicket_Complete(t *testing.T) {
	t.Run("claimed ticket", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		require.NoError(t, ticket.Complete())
		assert.Equal(t, StatusCompleted, ticket.Status())
	})

	t.Run("repeat completion is a no-op", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		require.NoError(t, ticket.Complete())
		require.NoError(t, ticket.Complete())
		assert.Equal(t, StatusCompleted, ticket.Status())
	})

	t.Run("pending ticket rejected", func(t *testing.T) {
		ticket := newPendingTicket(t)
		assert.Error(t, ticket.Complete())
	})

	t.Run("errored ticket rejected", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		require.NoError(t, ticket.Fail())
		assert.Error(t, ticket.Complete())
	})
}

func TestTicket_Fail(t *testing.T) {
	ticket := newPendingTicket(t)
	require.NoError(t, ticket.Claim("worker-a"))
	require.NoError(t, ticket.Fail())
	assert.Equal(t, StatusError, ticket.Status())

	// Terminal, but repeatable.
	require.NoError(t, ticket.Fail())
	assert.Error(t, ticket.Complete())
}

func TestTicket_ResetToPending(t *testing.T) {
	t.Run("claimed ticket releases its worker", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		require.NoError(t, ticket.ResetToPending())
		assert.Equal(t, StatusPending, ticket.Status())
		assert.Nil(t, ticket.WorkerID())
	})

	t.Run("completed ticket rejected", func(t *testing.T) {
		ticket := newPendingTicket(t)
		require.NoError(t, ticket.Claim("worker-a"))
		require.NoError(t, ticket.Complete())
		assert.Error(t, ticket.ResetToPending())
	})
}
