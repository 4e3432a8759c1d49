package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statements run one at a time: pgx's extended protocol rejects
// multi-statement strings.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL DEFAULT 'contributor',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cafes (
		id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		author_id      BIGINT NOT NULL REFERENCES users(id),
		name           TEXT NOT NULL UNIQUE,
		map_url        TEXT NOT NULL,
		img_url        TEXT NOT NULL,
		location       TEXT NOT NULL,
		has_sockets    BOOLEAN NOT NULL DEFAULT FALSE,
		has_toilet     BOOLEAN NOT NULL DEFAULT FALSE,
		has_wifi       BOOLEAN NOT NULL DEFAULT FALSE,
		can_take_calls BOOLEAN NOT NULL DEFAULT FALSE,
		seats          INTEGER NOT NULL,
		coffee_price   NUMERIC(6,2) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS cafes_name_idx ON cafes (name)`,
}

// EnsureSchema creates the tables on first boot. Idempotent, so safe to run
// on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
