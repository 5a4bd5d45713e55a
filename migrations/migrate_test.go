package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/testutil"
	"github.com/jesseadams/waterwaycleanups.org-sub003/migrations"
)

func TestApplyIsIdempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	require.NoError(t, migrations.Apply(ctx, pool))
	require.NoError(t, migrations.Apply(ctx, pool))

	var applied int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.Equal(t, 3, applied)

	for _, table := range []string{"events", "reservations", "minors"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s", table)
	}
}
