package db

import (
	"context"
	"errors"

	"github.com/geocoder89/cafedir/internal/config"
	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/geocoder89/cafedir/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser inserts the admin account if it is missing. Runs right
// after EnsureSchema so the admin takes id 1 before anyone can register.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, name, type)
		VALUES ($1,$2,$3,$4)
		`,
		cfg.AdminEmail, hash, cfg.AdminName, user.TypeAdmin,
	)

	return err
}
