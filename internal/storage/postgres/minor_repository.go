package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/domain"
)

// MinorRepository reads the guardian/minor registry. The registry is owned
// by the volunteer-management system; this side never writes it.
type MinorRepository struct {
	pool *pgxpool.Pool
}

func NewMinorRepository(pool *pgxpool.Pool) *MinorRepository {
	return &MinorRepository{pool: pool}
}

func (r *MinorRepository) FindByIDs(ctx context.Context, minorIDs []string) (map[string]domain.Minor, error) {
	const query = `
SELECT id, guardian_email, first_name, last_name, age
FROM minors
WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, minorIDs)
	if err != nil {
		return nil, fmt.Errorf("find minors: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Minor, len(minorIDs))
	for rows.Next() {
		var m domain.Minor
		if err := rows.Scan(&m.ID, &m.GuardianEmail, &m.FirstName, &m.LastName, &m.Age); err != nil {
			return nil, fmt.Errorf("scan minor: %w", err)
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}
