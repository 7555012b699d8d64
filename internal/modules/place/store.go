// README: Place store backed by PostgreSQL (bounding box, filter, external id lookups, details JSONB).
package place

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"placemap/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const summaryColumns = `p.id, p.name, p.latitude, p.longitude, p.city, p.state, p.address, p.external_id`

// ListInBox returns active places of the category inside box.
func (s *Store) ListInBox(ctx context.Context, box types.BoundingBox, category string, limit int) ([]Summary, error) {
	return s.Search(ctx, Filter{Category: category, Box: &box, Limit: limit})
}

// Search returns active places matching every non-empty field of f, in
// insertion order.
func (s *Store) Search(ctx context.Context, f Filter) ([]Summary, error) {
	where := []string{"p.is_active"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		where = append(where, `EXISTS (
            SELECT 1 FROM place_category_links l
            JOIN place_categories c ON c.id = l.category_id
            WHERE l.place_id = p.id AND c.slug = `+arg(f.Category)+`)`)
	}
	if f.City != "" {
		where = append(where, "p.city ILIKE "+arg("%"+escapeLike(f.City)+"%"))
	}
	if f.CityExact != "" {
		where = append(where, "p.city = "+arg(f.CityExact))
	}
	if f.State != "" {
		where = append(where, "p.state = "+arg(f.State))
	}
	if f.Name != "" {
		where = append(where, "p.name ILIKE "+arg("%"+escapeLike(f.Name)+"%"))
	}
	if f.Box != nil {
		where = append(where,
			"p.latitude BETWEEN "+arg(f.Box.MinLat)+" AND "+arg(f.Box.MaxLat),
			"p.longitude BETWEEN "+arg(f.Box.MinLng)+" AND "+arg(f.Box.MaxLng),
		)
	}

	q := `SELECT ` + summaryColumns + `
        FROM places p
        WHERE ` + strings.Join(where, " AND ") + `
        ORDER BY p.created_at, p.id
        LIMIT ` + arg(clampLimit(f.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// FindByExternalIDs returns stored places keyed by external identifier.
func (s *Store) FindByExternalIDs(ctx context.Context, ids []string) (map[string]Summary, error) {
	out := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.Query(ctx, `
        SELECT `+summaryColumns+`
        FROM places p
        WHERE p.external_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ExternalID] = p
	}
	return out, nil
}

// Get loads a place and the slug of its first linked category ("" when none).
func (s *Store) Get(ctx context.Context, id types.ID) (*Place, string, error) {
	row := s.db.QueryRow(ctx, `
        SELECT p.id, p.name, p.latitude, p.longitude, p.address, p.city, p.state, p.country,
               p.source, p.external_id, p.is_active, p.details, p.created_at, p.updated_at,
               (SELECT c.slug FROM place_category_links l
                JOIN place_categories c ON c.id = l.category_id
                WHERE l.place_id = p.id
                ORDER BY l.created_at, c.slug
                LIMIT 1)
        FROM places p
        WHERE p.id = $1`, string(id),
	)

	var p Place
	var rawDetails []byte
	var category *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Location.Lat, &p.Location.Lng, &p.Address, &p.City, &p.State, &p.Country,
		&p.Source, &p.ExternalID, &p.Active, &rawDetails, &p.CreatedAt, &p.UpdatedAt,
		&category,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	p.Details, err = decodeDetails(rawDetails)
	if err != nil {
		return nil, "", fmt.Errorf("decode details of %s: %w", p.ID, err)
	}
	slug := ""
	if category != nil {
		slug = *category
	}
	return &p, slug, nil
}

// Create inserts p and links it to the category, in one transaction. A new
// UUID is assigned when p.ID is empty. An unknown category slug leaves the
// place unlinked.
func (s *Store) Create(ctx context.Context, p *Place, categorySlug string) error {
	if p.ID == "" {
		p.ID = types.ID(uuid.NewString())
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Source == "" {
		p.Source = SourceManual
	}

	details, err := encodeDetails(p.Details)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO places (
            id, name, latitude, longitude, address, city, state, country,
            source, external_id, is_active, details, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8,
            $9, $10, $11, $12, $13, $14
        )`,
		string(p.ID), p.Name, p.Location.Lat, p.Location.Lng, p.Address, p.City, p.State, p.Country,
		string(p.Source), p.ExternalID, p.Active, details, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "external_id") {
			return ErrDuplicateExternalID
		}
		return err
	}

	if categorySlug != "" {
		if _, err := tx.Exec(ctx, `
            INSERT INTO place_category_links (place_id, category_id)
            SELECT $1, c.id FROM place_categories c WHERE c.slug = $2
            ON CONFLICT DO NOTHING`, string(p.ID), categorySlug); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LinkCategory attaches an existing place to a category by slug.
func (s *Store) LinkCategory(ctx context.Context, id types.ID, categorySlug string) error {
	tag, err := s.db.Exec(ctx, `
        INSERT INTO place_category_links (place_id, category_id)
        SELECT p.id, c.id FROM places p, place_categories c
        WHERE p.id = $1 AND c.slug = $2
        ON CONFLICT DO NOTHING`, string(id), categorySlug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM places WHERE id = $1)`, string(id)).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// UpdateDetails replaces the stored details of a place.
func (s *Store) UpdateDetails(ctx context.Context, id types.ID, d Details) error {
	raw, err := encodeDetails(&d)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE places SET details = $2, updated_at = $3
        WHERE id = $1`, string(id), raw, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cities lists distinct non-null cities in ascending order.
func (s *Store) Cities(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `
        SELECT DISTINCT city FROM places
        WHERE city IS NOT NULL
        ORDER BY city ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM places`).Scan(&n)
	return n, err
}

func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func scanSummaries(rows pgx.Rows) ([]Summary, error) {
	out := []Summary{}
	for rows.Next() {
		var p Summary
		var externalID *string
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.City, &p.State, &p.Address, &externalID); err != nil {
			return nil, err
		}
		if externalID != nil {
			p.ExternalID = *externalID
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// decodeDetails validates the JSONB blob. A missing or null blob is nil.
func decodeDetails(raw []byte) (*Details, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d Details
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	d.Normalize()
	return &d, nil
}

func encodeDetails(d *Details) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	c := *d
	c.Normalize()
	return json.Marshal(c)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
