package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/store"
)

func seed(t *testing.T, st store.Store, room string, cat models.Category, pri models.Priority, status models.Status) *models.MaintenanceRequest {
	t.Helper()
	now := time.Date(2025, 11, 27, 9, 30, 0, 0, time.UTC)
	r := &models.MaintenanceRequest{
		RoomNumber:  room,
		Category:    cat,
		Priority:    pri,
		Status:      status,
		Description: "seeded",
		CreatedBy:   "Front Desk",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.CreateRequest(context.Background(), r))
	return r
}

func TestSummarize_Empty(t *testing.T) {
	agg := New(store.NewMemoryStore())

	s, err := agg.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.ByPriority)
	assert.Empty(t, s.ByCategory)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"pending":0,"inProgress":0,"completed":0,"cancelled":0,"byPriority":{},"byCategory":{}}`, string(data))
}

func TestSummarize_Counts(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "101", models.CategoryPlumbing, models.PriorityHigh, models.StatusPending)
	seed(t, st, "102", models.CategoryHVAC, models.PriorityMedium, models.StatusInProgress)
	seed(t, st, "103", models.CategoryPlumbing, models.PriorityLow, models.StatusCompleted)
	seed(t, st, "104", models.CategoryElectrical, models.PriorityUrgent, models.StatusCancelled)
	seed(t, st, "105", models.CategoryHVAC, models.PriorityHigh, models.StatusPending)

	s, err := New(st).Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, map[string]int{"plumbing": 2, "hvac": 2, "electrical": 1}, s.ByCategory)
	assert.Equal(t, map[string]int{"high": 2, "medium": 1, "low": 1, "urgent": 1}, s.ByPriority)
}

func TestBreakdownByPriority_Sparse(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "201", models.CategoryFurniture, models.PriorityHigh, models.StatusPending)
	seed(t, st, "202", models.CategoryFurniture, models.PriorityHigh, models.StatusPending)
	seed(t, st, "203", models.CategoryCleaning, models.PriorityLow, models.StatusPending)

	got, err := New(st).BreakdownByPriority(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"high": 2, "low": 1}, got)
	assert.NotContains(t, got, "medium")
	assert.NotContains(t, got, "urgent")
}

func TestBreakdownByCategory(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "301", models.CategoryAppliances, models.PriorityLow, models.StatusPending)
	seed(t, st, "302", models.CategoryOther, models.PriorityLow, models.StatusCompleted)

	got, err := New(st).BreakdownByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"appliances": 1, "other": 1}, got)
}

func TestSummarize_TotalTracksCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	agg := New(st)

	var ids []string
	for i, room := range []string{"401", "402", "403", "404"} {
		r := seed(t, st, room, models.CategoryOther, models.PriorityLow, models.StatusPending)
		ids = append(ids, r.ID)

		s, err := agg.Summarize(ctx)
		require.NoError(t, err)
		assert.Equal(t, i+1, s.Total)
	}

	for i, id := range ids {
		require.NoError(t, st.DeleteRequest(ctx, id))
		s, err := agg.Summarize(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(ids)-i-1, s.Total)
	}
}

type brokenStore struct{ store.Store }

func (brokenStore) ListRequests(context.Context, store.RequestFilter) ([]*models.MaintenanceRequest, error) {
	return nil, errors.New("database is locked")
}

func TestSummarize_StoreFailure(t *testing.T) {
	agg := New(brokenStore{Store: store.NewMemoryStore()})

	_, err := agg.Summarize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	_, err = agg.BreakdownByCategory(context.Background())
	assert.Error(t, err)
}
