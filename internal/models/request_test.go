package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	for _, p := range Priorities {
		assert.True(t, p.Valid(), p)
	}
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}

	assert.False(t, Status("open").Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Priority("critical").Valid())
	assert.False(t, Category("roof").Valid())
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, StatusInProgress, ParseStatus(" In Progress "))
	assert.Equal(t, StatusInProgress, ParseStatus("in_progress"))
	assert.Equal(t, StatusCompleted, ParseStatus("COMPLETED"))
	assert.Equal(t, PriorityUrgent, ParsePriority("Urgent"))
	assert.Equal(t, CategoryHVAC, ParseCategory("HVAC"))
	assert.False(t, ParseCategory("garden").Valid())
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"pending", "in-progress", "completed", "cancelled"}, StatusNames())
	assert.Equal(t, []string{"low", "medium", "high", "urgent"}, PriorityNames())
	assert.Len(t, CategoryNames(), 7)
}

func TestClone_DoesNotSharePointers(t *testing.T) {
	tech := "John Smith"
	notes := "bring washers"
	resolved := time.Now()
	r := &MaintenanceRequest{ID: "1", AssignedTo: &tech, Notes: &notes, ResolvedAt: &resolved}

	c := r.Clone()
	require.NotNil(t, c.AssignedTo)
	*c.AssignedTo = "Maria Garcia"
	*c.Notes = "changed"
	*c.ResolvedAt = resolved.Add(time.Hour)

	assert.Equal(t, "John Smith", r.Assignee())
	assert.Equal(t, "bring washers", r.NotesText())
	assert.True(t, r.ResolvedAt.Equal(resolved))
}

func TestAssignee_Unassigned(t *testing.T) {
	r := &MaintenanceRequest{}
	assert.Equal(t, "", r.Assignee())
	assert.Equal(t, "", r.NotesText())
}
