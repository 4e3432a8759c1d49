package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/cafedir/internal/domain/cafe"
	"github.com/geocoder89/cafedir/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CafesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCafesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CafesRepo {
	return &CafesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CafesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CafesRepo) Create(ctx context.Context, authorID int64, req cafe.CreateCafeRequest) (cafe.Cafe, error) {
	var c cafe.Cafe

	err := r.observe("cafes.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO cafes (author_id, name, map_url, img_url, location,
			                    has_sockets, has_toilet, has_wifi, can_take_calls,
			                    seats, coffee_price)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 RETURNING id, author_id, name, map_url, img_url, location,
			           has_sockets, has_toilet, has_wifi, can_take_calls,
			           seats, coffee_price, created_at`,
			authorID, req.Name, req.MapURL, req.ImgURL, req.Location,
			req.HasSockets, req.HasToilet, req.HasWifi, req.CanTakeCalls,
			req.Seats, req.CoffeePrice,
		).Scan(
			&c.ID, &c.AuthorID, &c.Name, &c.MapURL, &c.ImgURL, &c.Location,
			&c.HasSockets, &c.HasToilet, &c.HasWifi, &c.CanTakeCalls,
			&c.Seats, &c.CoffeePrice, &c.CreatedAt,
		)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return cafe.Cafe{}, cafe.ErrNameTaken
		}

		return cafe.Cafe{}, err
	}

	return c, nil
}

// List returns every cafe ordered by name ascending, with the author name
// joined explicitly rather than loaded per row.
func (r *CafesRepo) List(ctx context.Context) ([]cafe.Cafe, error) {
	var output []cafe.Cafe

	err := r.observe("cafes.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT c.id, c.author_id, u.name, c.name, c.map_url, c.img_url,
			        c.location, c.has_sockets, c.has_toilet, c.has_wifi,
			        c.can_take_calls, c.seats, c.coffee_price, c.created_at
			 FROM cafes c
			 JOIN users u ON u.id = c.author_id
			 ORDER BY c.name ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var c cafe.Cafe

			err = rows.Scan(
				&c.ID, &c.AuthorID, &c.AuthorName, &c.Name, &c.MapURL, &c.ImgURL,
				&c.Location, &c.HasSockets, &c.HasToilet, &c.HasWifi,
				&c.CanTakeCalls, &c.Seats, &c.CoffeePrice, &c.CreatedAt,
			)

			if err != nil {
				return err
			}

			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CafesRepo) GetByID(ctx context.Context, id int64) (cafe.Cafe, error) {
	var c cafe.Cafe

	err := r.observe("cafes.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT c.id, c.author_id, u.name, c.name, c.map_url, c.img_url,
			        c.location, c.has_sockets, c.has_toilet, c.has_wifi,
			        c.can_take_calls, c.seats, c.coffee_price, c.created_at
			 FROM cafes c
			 JOIN users u ON u.id = c.author_id
			 WHERE c.id = $1`,
			id,
		).Scan(
			&c.ID, &c.AuthorID, &c.AuthorName, &c.Name, &c.MapURL, &c.ImgURL,
			&c.Location, &c.HasSockets, &c.HasToilet, &c.HasWifi,
			&c.CanTakeCalls, &c.Seats, &c.CoffeePrice, &c.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cafe.Cafe{}, cafe.ErrNotFound
		}

		return cafe.Cafe{}, err
	}

	return c, nil
}
