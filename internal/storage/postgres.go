package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"tourscan/internal/models"
)

// Store is the Postgres-backed tour store. The scan pipeline writes
// normalized tours through it and the discovery matcher reads candidates back.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to Postgres with pooled connections and verifies the link.
func Open(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the tables this service owns.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tours (
		id            TEXT PRIMARY KEY,
		tenant_id     TEXT NOT NULL,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		destination   TEXT NOT NULL,
		city          TEXT NOT NULL DEFAULT '',
		country       TEXT NOT NULL DEFAULT '',
		price         NUMERIC(12,2),
		currency      VARCHAR(8) NOT NULL DEFAULT 'USD',
		duration      TEXT NOT NULL DEFAULT '',
		duration_days INTEGER NOT NULL DEFAULT 0,
		categories    TEXT[] NOT NULL DEFAULT '{}',
		highlights    TEXT[] NOT NULL DEFAULT '{}',
		included      TEXT[] NOT NULL DEFAULT '{}',
		excluded      TEXT[] NOT NULL DEFAULT '{}',
		rating        NUMERIC(4,2) NOT NULL DEFAULT 0,
		review_count  INTEGER NOT NULL DEFAULT 0,
		booking_count INTEGER NOT NULL DEFAULT 0,
		featured      BOOLEAN NOT NULL DEFAULT FALSE,
		verified      BOOLEAN NOT NULL DEFAULT FALSE,
		status        TEXT NOT NULL DEFAULT 'published',
		source_url    TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, source_url, name)
	);

	CREATE INDEX IF NOT EXISTS idx_tours_destination ON tours (destination);
	CREATE INDEX IF NOT EXISTS idx_tours_tenant      ON tours (tenant_id);
	CREATE INDEX IF NOT EXISTS idx_tours_status      ON tours (status);

	CREATE TABLE IF NOT EXISTS legacy_content (
		id          SERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		destination TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(12,2),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveTour upserts a normalized tour. The (tenant_id, source_url, name) key
// makes re-scans of the same site idempotent: price and metadata refresh
// instead of accumulating duplicate rows.
func (s *Store) SaveTour(ctx context.Context, tenantID string, t models.ProcessedTour) error {
	var price sql.NullFloat64
	if t.Price != nil {
		price = sql.NullFloat64{Float64: *t.Price, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tours (
			id, tenant_id, name, description, destination,
			price, currency, duration, highlights, included, excluded,
			status, source_url, active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'published', $12, TRUE, NOW(), NOW())
		ON CONFLICT (tenant_id, source_url, name) DO UPDATE SET
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			duration    = EXCLUDED.duration,
			highlights  = EXCLUDED.highlights,
			included    = EXCLUDED.included,
			excluded    = EXCLUDED.excluded,
			updated_at  = NOW()
	`,
		t.ID, tenantID, t.Name, t.Description, t.Destination,
		price, t.Currency, t.Duration,
		pq.Array(t.Metadata.Highlights), pq.Array(t.Metadata.Included), pq.Array(t.Metadata.Excluded),
		t.Metadata.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save tour %q: %w", t.Name, err)
	}
	return nil
}

// TourFilter narrows discovery candidate queries.
type TourFilter struct {
	Destination string
	Interests   []string
	Category    string
	MaxPrice    float64
	Limit       int
}

const tourColumns = `id, tenant_id, name, description, destination, city, country,
	price, currency, duration, duration_days, categories, highlights, included, excluded,
	rating, review_count, booking_count, featured, verified, status, source_url, created_at`

// FindTours returns published tours loosely matching the filter, ordered by
// featured, rating, booking count and recency. This ordering is the primary
// relevance signal before scoring.
func (s *Store) FindTours(ctx context.Context, filter TourFilter) ([]models.Tour, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "status = 'published'")

	dest := arg("%" + filter.Destination + "%")
	locationMatch := fmt.Sprintf("(destination ILIKE %s OR city ILIKE %s OR country ILIKE %s", dest, dest, dest)
	for _, interest := range filter.Interests {
		term := arg("%" + interest + "%")
		locationMatch += fmt.Sprintf(" OR name ILIKE %s OR description ILIKE %s", term, term)
	}
	locationMatch += ")"
	conds = append(conds, locationMatch)

	if filter.MaxPrice > 0 {
		conds = append(conds, fmt.Sprintf("(price IS NULL OR price <= %s)", arg(filter.MaxPrice)))
	}
	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("%s = ANY(categories)", arg(filter.Category)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 30
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tours
		WHERE %s
		ORDER BY featured DESC, rating DESC, booking_count DESC, created_at DESC
		LIMIT %s`, tourColumns, strings.Join(conds, " AND "), arg(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer rows.Close()

	return scanTours(rows)
}

// ListRecent returns the most recently scanned tours for a tenant.
func (s *Store) ListRecent(ctx context.Context, tenantID string, limit int) ([]models.Tour, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM tours
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tourColumns), tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	defer rows.Close()

	return scanTours(rows)
}

// FindLegacyContent queries the secondary content table used as a discovery
// fallback, mapping rows to the tour shape with conservative defaults.
func (s *Store) FindLegacyContent(ctx context.Context, destination string, limit int) ([]models.Tour, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, destination, description, price, created_at
		FROM legacy_content
		WHERE destination ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2`, "%"+destination+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy content: %w", err)
	}
	defer rows.Close()

	var tours []models.Tour
	for rows.Next() {
		var (
			id        int
			t         models.Tour
			price     sql.NullFloat64
			createdAt time.Time
		)
		if err := rows.Scan(&id, &t.Name, &t.Destination, &t.Description, &price, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan legacy row: %w", err)
		}
		t.ID = fmt.Sprintf("legacy-%d", id)
		t.Price = price.Float64
		t.Currency = "USD"
		t.Rating = 4.0
		t.Verified = false
		t.Status = "published"
		t.CreatedAt = createdAt
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

func scanTours(rows *sql.Rows) ([]models.Tour, error) {
	var tours []models.Tour
	for rows.Next() {
		var (
			t     models.Tour
			price sql.NullFloat64
		)
		err := rows.Scan(
			&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Destination, &t.City, &t.Country,
			&price, &t.Currency, &t.Duration, &t.DurationDays,
			pq.Array(&t.Categories), pq.Array(&t.Highlights), pq.Array(&t.Included), pq.Array(&t.Excluded),
			&t.Rating, &t.ReviewCount, &t.BookingCount, &t.Featured, &t.Verified,
			&t.Status, &t.SourceURL, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tour row: %w", err)
		}
		t.Price = price.Float64
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
