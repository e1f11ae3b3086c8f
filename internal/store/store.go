package store

import (
	"context"
	"errors"

	"github.com/joescharf/hotelops/internal/models"
)

// ErrNotFound is wrapped by every backend when a request id does not exist.
var ErrNotFound = errors.New("not found")

// RequestFilter specifies filters for listing requests. Zero values match everything.
type RequestFilter struct {
	Status   models.Status
	Priority models.Priority
	Category models.Category
}

// Store defines the persistence interface for maintenance requests.
//
// Timestamps are owned by the caller: backends persist CreatedAt, UpdatedAt
// and ResolvedAt exactly as given. ListRequests returns newest first.
type Store interface {
	CreateRequest(ctx context.Context, r *models.MaintenanceRequest) error
	GetRequest(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]*models.MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, r *models.MaintenanceRequest) error
	DeleteRequest(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
