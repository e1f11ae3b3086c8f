package models

import (
	"strings"
	"time"
)

// Status represents where a maintenance request is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Priority represents how urgently a request needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Category represents the trade a request belongs to.
type Category string

const (
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryHVAC       Category = "hvac"
	CategoryFurniture  Category = "furniture"
	CategoryCleaning   Category = "cleaning"
	CategoryAppliances Category = "appliances"
	CategoryOther      Category = "other"
)

// Ordered value lists, used for help text, table rows and validation messages.
var (
	Statuses   = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
	Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	Categories = []Category{
		CategoryPlumbing, CategoryElectrical, CategoryHVAC, CategoryFurniture,
		CategoryCleaning, CategoryAppliances, CategoryOther,
	}
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseStatus normalizes user input ("In Progress", " COMPLETED ") into a Status.
// The result is not validated.
func ParseStatus(s string) Status {
	return Status(normalizeEnum(s))
}

// ParsePriority normalizes user input into a Priority. The result is not validated.
func ParsePriority(s string) Priority {
	return Priority(normalizeEnum(s))
}

// ParseCategory normalizes user input into a Category. The result is not validated.
func ParseCategory(s string) Category {
	return Category(normalizeEnum(s))
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(strings.ReplaceAll(s, "_", "-"), " ", "-")
}

// StatusNames returns the status values as strings, e.g. for flag help.
func StatusNames() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

// PriorityNames returns the priority values as strings.
func PriorityNames() []string {
	out := make([]string, len(Priorities))
	for i, p := range Priorities {
		out[i] = string(p)
	}
	return out
}

// CategoryNames returns the category values as strings.
func CategoryNames() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

// MaintenanceRequest is a single reported maintenance issue tied to a hotel room.
type MaintenanceRequest struct {
	ID          string     `json:"id"`
	RoomNumber  string     `json:"roomNumber"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  *string    `json:"assignedTo,omitempty"` // nil = unassigned
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"` // set while Status is completed
}

// Assignee returns the assigned technician, or "" when unassigned.
func (r *MaintenanceRequest) Assignee() string {
	if r.AssignedTo == nil {
		return ""
	}
	return *r.AssignedTo
}

// NotesText returns the notes, or "" when there are none.
func (r *MaintenanceRequest) NotesText() string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}

// Clone returns a deep copy, so stored records and caller snapshots never share pointers.
func (r *MaintenanceRequest) Clone() *MaintenanceRequest {
	c := *r
	if r.AssignedTo != nil {
		v := *r.AssignedTo
		c.AssignedTo = &v
	}
	if r.Notes != nil {
		v := *r.Notes
		c.Notes = &v
	}
	if r.ResolvedAt != nil {
		v := *r.ResolvedAt
		c.ResolvedAt = &v
	}
	return &c
}
