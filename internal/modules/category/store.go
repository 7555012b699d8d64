// README: Category store backed by PostgreSQL.
package category

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// List returns every category ordered by display name.
func (s *Store) List(ctx context.Context) ([]Category, error) {
	rows, err := s.db.Query(ctx, `
        SELECT slug, display_name FROM place_categories
        ORDER BY display_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Slug, &c.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Upsert inserts c or updates the display name of an existing slug.
func (s *Store) Upsert(ctx context.Context, c Category) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO place_categories (id, slug, display_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET display_name = EXCLUDED.display_name`,
		uuid.NewString(), c.Slug, c.DisplayName,
	)
	return err
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM place_categories`).Scan(&n)
	return n, err
}
