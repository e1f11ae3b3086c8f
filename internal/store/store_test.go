package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/hotelops/internal/models"
)

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CRUD", func(t *testing.T) { testRequestCRUD(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newStore(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, newStore(t)) })
	t.Run("NullableFields", func(t *testing.T) { testNullableFields(t, newStore(t)) })
}

var baseTime = time.Date(2025, 11, 27, 9, 30, 0, 0, time.UTC)

func newRequest(room string, cat models.Category, pri models.Priority, status models.Status, at time.Time) *models.MaintenanceRequest {
	return &models.MaintenanceRequest{
		RoomNumber:  room,
		Category:    cat,
		Priority:    pri,
		Status:      status,
		Description: "issue in room " + room,
		CreatedBy:   "Front Desk",
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func testRequestCRUD(t *testing.T, s Store) {
	ctx := context.Background()

	// Create
	r := newRequest("305", models.CategoryPlumbing, models.PriorityHigh, models.StatusPending, baseTime)
	require.NoError(t, s.CreateRequest(ctx, r))
	assert.NotEmpty(t, r.ID)

	// Get
	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "305", got.RoomNumber)
	assert.Equal(t, models.CategoryPlumbing, got.Category)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "Front Desk", got.CreatedBy)
	assert.True(t, got.CreatedAt.Equal(baseTime))
	assert.True(t, got.UpdatedAt.Equal(baseTime))
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.ResolvedAt)

	// Update
	later := baseTime.Add(2 * time.Hour)
	tech := "John Smith"
	got.Status = models.StatusCompleted
	got.AssignedTo = &tech
	got.ResolvedAt = &later
	got.UpdatedAt = later
	require.NoError(t, s.UpdateRequest(ctx, got))

	got2, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got2.Status)
	assert.Equal(t, "John Smith", got2.Assignee())
	require.NotNil(t, got2.ResolvedAt)
	assert.True(t, got2.ResolvedAt.Equal(later))
	assert.True(t, got2.UpdatedAt.Equal(later))
	assert.True(t, got2.CreatedAt.Equal(baseTime), "created_at must not change on update")

	// List
	all, err := s.ListRequests(ctx, RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Delete
	require.NoError(t, s.DeleteRequest(ctx, r.ID))
	_, err = s.GetRequest(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err = s.ListRequests(ctx, RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testNotFound(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.GetRequest(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.UpdateRequest(ctx, newRequest("1", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime))
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteRequest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testListFilters(t *testing.T, s Store) {
	ctx := context.Background()

	seed := []*models.MaintenanceRequest{
		newRequest("101", models.CategoryPlumbing, models.PriorityHigh, models.StatusPending, baseTime),
		newRequest("102", models.CategoryHVAC, models.PriorityHigh, models.StatusInProgress, baseTime.Add(time.Minute)),
		newRequest("103", models.CategoryPlumbing, models.PriorityLow, models.StatusPending, baseTime.Add(2*time.Minute)),
		newRequest("104", models.CategoryElectrical, models.PriorityUrgent, models.StatusCompleted, baseTime.Add(3*time.Minute)),
	}
	for _, r := range seed {
		require.NoError(t, s.CreateRequest(ctx, r))
	}

	pending, err := s.ListRequests(ctx, RequestFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	for _, r := range pending {
		assert.Equal(t, models.StatusPending, r.Status)
	}

	high, err := s.ListRequests(ctx, RequestFilter{Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, high, 2)

	both, err := s.ListRequests(ctx, RequestFilter{Status: models.StatusPending, Priority: models.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "101", both[0].RoomNumber)

	plumbing, err := s.ListRequests(ctx, RequestFilter{Category: models.CategoryPlumbing})
	require.NoError(t, err)
	assert.Len(t, plumbing, 2)

	none, err := s.ListRequests(ctx, RequestFilter{Status: models.StatusCancelled})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListNewestFirst(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateRequest(ctx, newRequest("1", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime)))
	require.NoError(t, s.CreateRequest(ctx, newRequest("2", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime.Add(time.Hour))))
	require.NoError(t, s.CreateRequest(ctx, newRequest("3", models.CategoryOther, models.PriorityLow, models.StatusPending, baseTime.Add(30*time.Minute))))

	all, err := s.ListRequests(ctx, RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[0].RoomNumber)
	assert.Equal(t, "3", all[1].RoomNumber)
	assert.Equal(t, "1", all[2].RoomNumber)
}

func testNullableFields(t *testing.T, s Store) {
	ctx := context.Background()

	notes := "guest checks out at noon"
	tech := "Maria Garcia"
	r := newRequest("412", models.CategoryHVAC, models.PriorityMedium, models.StatusPending, baseTime)
	r.Notes = &notes
	r.AssignedTo = &tech
	require.NoError(t, s.CreateRequest(ctx, r))

	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.NotesText())
	assert.Equal(t, tech, got.Assignee())

	// Clearing pointers must persist as NULL
	got.Notes = nil
	got.AssignedTo = nil
	got.UpdatedAt = baseTime.Add(time.Minute)
	require.NoError(t, s.UpdateRequest(ctx, got))

	got2, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got2.Notes)
	assert.Nil(t, got2.AssignedTo)
}
