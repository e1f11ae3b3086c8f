// Package stats derives dashboard counts from the request store.
package stats

import (
	"context"
	"fmt"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/store"
)

// Summary is the dashboard view of the request collection.
//
// ByPriority and ByCategory are sparse: an enum value with no requests has
// no key. Pending, InProgress, Completed and Cancelled add up to Total.
type Summary struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	InProgress int            `json:"inProgress"`
	Completed  int            `json:"completed"`
	Cancelled  int            `json:"cancelled"`
	ByPriority map[string]int `json:"byPriority"`
	ByCategory map[string]int `json:"byCategory"`
}

// Aggregator computes summaries from a store.
type Aggregator struct {
	store store.Store
}

// New returns an Aggregator reading from st.
func New(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Summarize reads the whole collection once and computes every count from
// that single result, so the numbers in one Summary always agree with each
// other. Mutations after the read show up in the next call.
func (a *Aggregator) Summarize(ctx context.Context) (*Summary, error) {
	requests, err := a.store.ListRequests(ctx, store.RequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return Compute(requests), nil
}

// BreakdownByPriority counts requests per priority. Missing keys mean zero.
func (a *Aggregator) BreakdownByPriority(ctx context.Context) (map[string]int, error) {
	s, err := a.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return s.ByPriority, nil
}

// BreakdownByCategory counts requests per category. Missing keys mean zero.
func (a *Aggregator) BreakdownByCategory(ctx context.Context) (map[string]int, error) {
	s, err := a.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return s.ByCategory, nil
}

// Compute builds a Summary from an already-fetched slice.
func Compute(requests []*models.MaintenanceRequest) *Summary {
	s := &Summary{
		Total:      len(requests),
		ByPriority: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, r := range requests {
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		}
		s.ByPriority[string(r.Priority)]++
		s.ByCategory[string(r.Category)]++
	}
	return s
}
