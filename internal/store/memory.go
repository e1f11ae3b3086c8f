package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joescharf/hotelops/internal/models"
)

var errClosed = errors.New("store closed")

// MemoryStore implements Store in process memory. Nothing survives Close.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	seq     uint64
	closed  bool
}

type memoryRecord struct {
	seq uint64
	req *models.MaintenanceRequest
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Migrate is a no-op; the memory store has no schema.
func (m *MemoryStore) Migrate(_ context.Context) error {
	return nil
}

// Close drops all records. Further calls return an error.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.closed = true
	return nil
}

func (m *MemoryStore) CreateRequest(_ context.Context, r *models.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("create request: %w", errClosed)
	}

	if r.ID == "" {
		r.ID = newULID()
	}
	if _, exists := m.records[r.ID]; exists {
		return fmt.Errorf("create request: duplicate id %s", r.ID)
	}
	m.seq++
	m.records[r.ID] = memoryRecord{seq: m.seq, req: r.Clone()}
	return nil
}

func (m *MemoryStore) GetRequest(_ context.Context, id string) (*models.MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("get request: %w", errClosed)
	}

	rec, ok := m.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec.req.Clone(), nil
}

func (m *MemoryStore) ListRequests(_ context.Context, filter RequestFilter) ([]*models.MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("list requests: %w", errClosed)
	}

	matched := make([]memoryRecord, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Status != "" && rec.req.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && rec.req.Priority != filter.Priority {
			continue
		}
		if filter.Category != "" && rec.req.Category != filter.Category {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].req, matched[j].req
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	var requests []*models.MaintenanceRequest
	for _, rec := range matched {
		requests = append(requests, rec.req.Clone())
	}
	return requests, nil
}

func (m *MemoryStore) UpdateRequest(_ context.Context, r *models.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("update request: %w", errClosed)
	}

	rec, ok := m.records[r.ID]
	if !ok {
		return notFound(r.ID)
	}
	updated := r.Clone()
	updated.CreatedAt = rec.req.CreatedAt
	m.records[r.ID] = memoryRecord{seq: rec.seq, req: updated}
	return nil
}

func (m *MemoryStore) DeleteRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("delete request: %w", errClosed)
	}

	if _, ok := m.records[id]; !ok {
		return notFound(id)
	}
	delete(m.records, id)
	return nil
}
