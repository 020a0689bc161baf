package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tourscan/internal/models"
)

// ImportLegacyContent inserts legacy editorial records in a single
// transaction. All-or-nothing: one bad row rolls the batch back so a partial
// import never pollutes the fallback pool.
func (s *Store) ImportLegacyContent(ctx context.Context, items []models.LegacyItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO legacy_content (title, destination, description, price)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		var price sql.NullFloat64
		if item.Price != nil {
			price = sql.NullFloat64{Float64: *item.Price, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, item.Title, item.Destination, item.Description, price); err != nil {
			return 0, fmt.Errorf("failed to insert legacy item %q: %w", item.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit legacy import: %w", err)
	}
	return len(items), nil
}
