package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Flash is a one-shot notice attached to the session and consumed on the
// next rendered page.
type Flash struct {
	Level   string `json:"level"` // info | error
	Message string `json:"message"`
}

// Data is the server-side session record. UserID 0 means anonymous (a
// session that only carries flashes).
type Data struct {
	UserID  int64   `json:"userId"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Store keeps session records in Redis under "session:<id>".
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return "session:" + id
}

func (s *Store) Create(ctx context.Context, id string, data Data) error {
	raw, err := json.Marshal(data)

	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, key(id), raw, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, id string) (Data, error) {
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrNotFound
		}
		return Data{}, err
	}

	var data Data

	err = json.Unmarshal(raw, &data)

	if err != nil {
		return Data{}, err
	}

	return data, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

// AddFlash appends a notice to the session without touching its TTL clock
// beyond a refresh.
func (s *Store) AddFlash(ctx context.Context, id string, flash Flash) error {
	data, err := s.Get(ctx, id)

	if err != nil {
		return err
	}

	data.Flashes = append(data.Flashes, flash)

	return s.Create(ctx, id, data)
}

// PopFlashes returns pending notices and clears them in one step.
func (s *Store) PopFlashes(ctx context.Context, id string) ([]Flash, error) {
	data, err := s.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	if len(data.Flashes) == 0 {
		return nil, nil
	}

	flashes := data.Flashes
	data.Flashes = nil

	err = s.Create(ctx, id, data)

	if err != nil {
		return nil, err
	}

	return flashes, nil
}
