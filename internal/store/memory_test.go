package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/hotelops/internal/models"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s := NewMemoryStore()
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	r := newRequest("305", models.CategoryPlumbing, models.PriorityHigh, models.StatusPending, baseTime)
	require.NoError(t, s.CreateRequest(ctx, r))

	// Mutating the caller's copy must not leak into the store
	r.Status = models.StatusCancelled

	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	got.RoomNumber = "999"
	again, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "305", again.RoomNumber)
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	r := newRequest("1", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime)
	r.ID = "fixed"
	require.NoError(t, s.CreateRequest(ctx, r))

	dup := newRequest("2", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime)
	dup.ID = "fixed"
	assert.Error(t, s.CreateRequest(ctx, dup))
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.ListRequests(context.Background(), RequestFilter{})
	assert.ErrorIs(t, err, errClosed)
}

func TestMemoryStore_SameTimestampKeepsInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, room := range []string{"1", "2", "3"} {
		require.NoError(t, s.CreateRequest(ctx, newRequest(room, models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime)))
	}

	all, err := s.ListRequests(ctx, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].RoomNumber, all[1].RoomNumber, all[2].RoomNumber})
}
