package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// newPostgresTestStore connects to the database named by HOTELOPS_TEST_POSTGRES_DSN,
// applies migrations and truncates the table. Tests skip when it is unset.
func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("HOTELOPS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("requires HOTELOPS_TEST_POSTGRES_DSN")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	_, err = s.pool.Exec(ctx, "TRUNCATE maintenance_requests")
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store { return newPostgresTestStore(t) })
}

func TestNewPostgresStore_EmptyDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "dsn is empty")
}
