package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql (needed by goose)
	"github.com/pressly/goose/v3"

	"github.com/joescharf/hotelops/internal/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	dsn  string
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty (set postgres.dsn)")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool, dsn: dsn}, nil
}

// Migrate applies the embedded PostgreSQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	return runMigrations(ctx, goose.DialectPostgres, db, "postgres")
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPGRequest(row pgx.Row) (*models.MaintenanceRequest, error) {
	r := &models.MaintenanceRequest{}
	var category, priority, status string

	if err := row.Scan(&r.ID, &r.RoomNumber, &category, &priority, &status, &r.Description, &r.CreatedBy,
		&r.AssignedTo, &r.Notes, &r.CreatedAt, &r.UpdatedAt, &r.ResolvedAt); err != nil {
		return nil, err
	}

	r.Category = models.Category(category)
	r.Priority = models.Priority(priority)
	r.Status = models.Status(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	if r.ResolvedAt != nil {
		t := r.ResolvedAt.UTC()
		r.ResolvedAt = &t
	}
	return r, nil
}

func (s *PostgresStore) CreateRequest(ctx context.Context, r *models.MaintenanceRequest) error {
	if r.ID == "" {
		r.ID = newULID()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO maintenance_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.RoomNumber, string(r.Category), string(r.Priority), string(r.Status), r.Description, r.CreatedBy,
		r.AssignedTo, r.Notes, r.CreatedAt, r.UpdatedAt, r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM maintenance_requests WHERE id = $1`, id)

	r, err := scanPGRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListRequests(ctx context.Context, filter RequestFilter) ([]*models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests`
	var conditions []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MaintenanceRequest
	for rows.Next() {
		r, err := scanPGRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *PostgresStore) UpdateRequest(ctx context.Context, r *models.MaintenanceRequest) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE maintenance_requests SET room_number=$1, category=$2, priority=$3, status=$4, description=$5, created_by=$6,
		assigned_to=$7, notes=$8, updated_at=$9, resolved_at=$10
		WHERE id=$11`,
		r.RoomNumber, string(r.Category), string(r.Priority), string(r.Status), r.Description, r.CreatedBy,
		r.AssignedTo, r.Notes, r.UpdatedAt, r.ResolvedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteRequest(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM maintenance_requests WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}
