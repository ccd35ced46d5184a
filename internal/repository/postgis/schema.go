package postgis

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS retailers (
		id         text PRIMARY KEY,
		name       text NOT NULL UNIQUE,
		category   text NOT NULL,
		phone      text NOT NULL,
		address    text NOT NULL,
		location   geography(Point, 4326) NOT NULL,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS retailers_location_gix ON retailers USING GIST (location)`,
	`CREATE INDEX IF NOT EXISTS retailers_created_at_idx ON retailers (created_at DESC, id)`,
	`CREATE INDEX IF NOT EXISTS retailers_category_idx ON retailers (category)`,
}

// Migrate creates the retailers table and its indexes if missing.
func (r *Repo) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
