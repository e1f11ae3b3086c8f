// Package service implements the maintenance request lifecycle: validation,
// status transitions, assignment and timestamps on top of a store.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joescharf/hotelops/internal/metrics"
	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/store"
)

// DefaultReporter is used for CreatedBy when neither the caller nor the config supplies one.
const DefaultReporter = "Front Desk"

// filterAll is accepted by List as "no constraint", matching the front end's select boxes.
const filterAll = "all"

// Service enforces the request lifecycle. Each operation is one
// read-modify-write against the store; concurrent writers to the same
// request resolve as last write wins.
type Service struct {
	store           store.Store
	defaultReporter string
	now             func() time.Time
	log             *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultReporter sets the CreatedBy value used when a caller leaves it empty.
func WithDefaultReporter(name string) Option {
	return func(s *Service) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultReporter = name
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service over the given store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:           st,
		defaultReporter: DefaultReporter,
		now:             time.Now,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// storeErr translates a store failure into NotFoundError or StoreError.
func (s *Service) storeErr(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	s.log.ErrorContext(ctx, "store operation failed", "op", op, "id", id, "error", err)
	return &StoreError{Op: op, Err: err}
}

// Create validates the input and persists a new pending request.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.MaintenanceRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = s.defaultReporter
	}

	now := s.timestamp()
	r := &models.MaintenanceRequest{
		RoomNumber:  in.RoomNumber,
		Category:    models.Category(in.Category),
		Priority:    models.Priority(in.Priority),
		Status:      models.StatusPending,
		Description: in.Description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Notes != "" {
		notes := in.Notes
		r.Notes = &notes
	}

	if err := s.store.CreateRequest(ctx, r); err != nil {
		return nil, s.storeErr(ctx, "create request", r.ID, err)
	}

	metrics.RequestCreated(string(r.Category), string(r.Priority))
	s.log.DebugContext(ctx, "request created", "id", r.ID, "room", r.RoomNumber, "category", r.Category, "priority", r.Priority)
	return r, nil
}

// Get returns a single request.
func (s *Service) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, s.storeErr(ctx, "get request", id, err)
	}
	return r, nil
}

// Resolve finds a request by full id or by a unique, case-insensitive id prefix.
func (s *Service) Resolve(ctx context.Context, idOrPrefix string) (*models.MaintenanceRequest, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, &ValidationError{Field: "id", Message: "is required"}
	}

	r, err := s.store.GetRequest(ctx, idOrPrefix)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, s.storeErr(ctx, "get request", idOrPrefix, err)
	}

	all, err := s.store.ListRequests(ctx, store.RequestFilter{})
	if err != nil {
		return nil, s.storeErr(ctx, "list requests", "", err)
	}

	upper := strings.ToUpper(idOrPrefix)
	var matches []*models.MaintenanceRequest
	for _, req := range all {
		if strings.HasPrefix(req.ID, upper) {
			matches = append(matches, req)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{ID: idOrPrefix}
	case 1:
		return matches[0], nil
	default:
		return nil, &ValidationError{Field: "id", Message: fmt.Sprintf("ambiguous prefix %s matches %d requests", idOrPrefix, len(matches))}
	}
}

// Filter selects requests for List. Empty or "all" means no constraint.
type Filter struct {
	Status   string
	Priority string
	Category string
}

func (f Filter) toStore() (store.RequestFilter, error) {
	var out store.RequestFilter

	if v := strings.TrimSpace(f.Status); v != "" && !strings.EqualFold(v, filterAll) {
		out.Status = models.ParseStatus(v)
		if !out.Status.Valid() {
			return out, &ValidationError{Field: "status", Message: "must be all or one of: " + strings.Join(models.StatusNames(), ", ")}
		}
	}
	if v := strings.TrimSpace(f.Priority); v != "" && !strings.EqualFold(v, filterAll) {
		out.Priority = models.ParsePriority(v)
		if !out.Priority.Valid() {
			return out, &ValidationError{Field: "priority", Message: "must be all or one of: " + strings.Join(models.PriorityNames(), ", ")}
		}
	}
	if v := strings.TrimSpace(f.Category); v != "" && !strings.EqualFold(v, filterAll) {
		out.Category = models.ParseCategory(v)
		if !out.Category.Valid() {
			return out, &ValidationError{Field: "category", Message: "must be all or one of: " + strings.Join(models.CategoryNames(), ", ")}
		}
	}
	return out, nil
}

// List returns the requests matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*models.MaintenanceRequest, error) {
	sf, err := f.toStore()
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequests(ctx, sf)
	if err != nil {
		return nil, s.storeErr(ctx, "list requests", "", err)
	}
	return requests, nil
}

// Patch is a partial update. Nil fields are left unchanged; an empty
// AssignedTo unassigns and an empty Notes clears the notes.
type Patch struct {
	Status     *models.Status
	AssignedTo *string
	Notes      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.AssignedTo == nil && p.Notes == nil
}

// Update validates the whole patch, applies it, and writes the request once.
// A rejected patch leaves the stored request untouched.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*models.MaintenanceRequest, error) {
	if p.IsEmpty() {
		return nil, &ValidationError{Message: "no changes specified (status, assignedTo, notes)"}
	}
	if p.Status != nil {
		st := models.ParseStatus(string(*p.Status))
		if !st.Valid() {
			return nil, &ValidationError{Field: "status", Message: "must be one of: " + strings.Join(models.StatusNames(), ", ")}
		}
		p.Status = &st
	}

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, s.storeErr(ctx, "get request", id, err)
	}

	now := s.timestamp()
	prevStatus := r.Status
	prevAssignee := r.Assignee()

	if p.Status != nil {
		applyStatus(r, *p.Status, now)
	}
	if p.AssignedTo != nil {
		r.AssignedTo = optionalText(*p.AssignedTo)
	}
	if p.Notes != nil {
		r.Notes = optionalText(*p.Notes)
	}
	r.UpdatedAt = now

	if err := s.store.UpdateRequest(ctx, r); err != nil {
		return nil, s.storeErr(ctx, "update request", id, err)
	}

	if p.Status != nil {
		metrics.StatusChanged(string(prevStatus), string(r.Status))
	}
	if p.AssignedTo != nil && r.Assignee() != prevAssignee {
		metrics.AssignmentChanged(r.Assignee())
	}
	s.log.DebugContext(ctx, "request updated", "id", id, "status", r.Status, "assigned_to", r.Assignee())
	return r, nil
}

// UpdateStatus moves a request to newStatus. Every transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus models.Status) (*models.MaintenanceRequest, error) {
	return s.Update(ctx, id, Patch{Status: &newStatus})
}

// Assign sets the technician. An empty name unassigns.
func (s *Service) Assign(ctx context.Context, id, technician string) (*models.MaintenanceRequest, error) {
	return s.Update(ctx, id, Patch{AssignedTo: &technician})
}

// SetNotes replaces the free-form notes. Empty text clears them.
func (s *Service) SetNotes(ctx context.Context, id, notes string) (*models.MaintenanceRequest, error) {
	return s.Update(ctx, id, Patch{Notes: &notes})
}

// Delete removes a request permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRequest(ctx, id); err != nil {
		return s.storeErr(ctx, "delete request", id, err)
	}
	metrics.RequestDeleted()
	s.log.DebugContext(ctx, "request deleted", "id", id)
	return nil
}

// applyStatus sets the status and keeps ResolvedAt in step: set on entering
// completed, kept while staying completed, cleared otherwise.
func applyStatus(r *models.MaintenanceRequest, next models.Status, now time.Time) {
	if next == models.StatusCompleted {
		if r.Status != models.StatusCompleted || r.ResolvedAt == nil {
			resolved := now
			r.ResolvedAt = &resolved
		}
	} else {
		r.ResolvedAt = nil
	}
	r.Status = next
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
