package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/joescharf/hotelops/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access and avoids "database is locked" under HTTP load.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", strings.ToLower(pragma), err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies the embedded SQLite schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, goose.DialectSQLite3, s.db, "sqlite")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const requestColumns = `id, room_number, category, priority, status, description, created_by, assigned_to, notes, created_at, updated_at, resolved_at`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.MaintenanceRequest, error) {
	r := &models.MaintenanceRequest{}
	var category, priority, status string
	var assignedTo, notes sql.NullString
	var resolvedAt sql.NullTime

	if err := row.Scan(&r.ID, &r.RoomNumber, &category, &priority, &status, &r.Description, &r.CreatedBy,
		&assignedTo, &notes, &r.CreatedAt, &r.UpdatedAt, &resolvedAt); err != nil {
		return nil, err
	}

	r.Category = models.Category(category)
	r.Priority = models.Priority(priority)
	r.Status = models.Status(status)
	if assignedTo.Valid {
		r.AssignedTo = &assignedTo.String
	}
	if notes.Valid {
		r.Notes = &notes.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		r.ResolvedAt = &t
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (s *SQLiteStore) CreateRequest(ctx context.Context, r *models.MaintenanceRequest) error {
	if r.ID == "" {
		r.ID = newULID()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RoomNumber, string(r.Category), string(r.Priority), string(r.Status), r.Description, r.CreatedBy,
		r.AssignedTo, r.Notes, r.CreatedAt, r.UpdatedAt, r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRequest(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM maintenance_requests WHERE id = ?`, id)

	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListRequests(ctx context.Context, filter RequestFilter) ([]*models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests`
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(filter.Category))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var requests []*models.MaintenanceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *SQLiteStore) UpdateRequest(ctx context.Context, r *models.MaintenanceRequest) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE maintenance_requests SET room_number=?, category=?, priority=?, status=?, description=?, created_by=?,
		assigned_to=?, notes=?, updated_at=?, resolved_at=?
		WHERE id=?`,
		r.RoomNumber, string(r.Category), string(r.Priority), string(r.Status), r.Description, r.CreatedBy,
		r.AssignedTo, r.Notes, r.UpdatedAt, r.ResolvedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return notFound(r.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteRequest(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM maintenance_requests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return notFound(id)
	}
	return nil
}
