package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/cafedir/internal/domain/cafe"
)

// CafesRepo is an in-memory stand-in for the postgres repo, mainly for
// tests and local hacking without a database.
type CafesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]cafe.Cafe
	byName map[string]int64
}

func NewCafesRepo() *CafesRepo {
	return &CafesRepo{
		nextID: 1,
		items:  make(map[int64]cafe.Cafe),
		byName: make(map[string]int64),
	}
}

func (r *CafesRepo) Create(ctx context.Context, authorID int64, req cafe.CreateCafeRequest) (cafe.Cafe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[req.Name]; exists {
		return cafe.Cafe{}, cafe.ErrNameTaken
	}

	c := cafe.Cafe{
		ID:           r.nextID,
		AuthorID:     authorID,
		Name:         req.Name,
		MapURL:       req.MapURL,
		ImgURL:       req.ImgURL,
		Location:     req.Location,
		HasSockets:   req.HasSockets,
		HasToilet:    req.HasToilet,
		HasWifi:      req.HasWifi,
		CanTakeCalls: req.CanTakeCalls,
		Seats:        req.Seats,
		CoffeePrice:  req.CoffeePrice,
		CreatedAt:    time.Now(),
	}

	r.nextID++
	r.items[c.ID] = c
	r.byName[c.Name] = c.ID

	return c, nil
}

func (r *CafesRepo) List(ctx context.Context) ([]cafe.Cafe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]cafe.Cafe, 0, len(r.items))

	for _, c := range r.items {
		output = append(output, c)
	}

	sort.Slice(output, func(i, j int) bool {
		return output[i].Name < output[j].Name
	})

	return output, nil
}

func (r *CafesRepo) GetByID(ctx context.Context, id int64) (cafe.Cafe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]

	if !ok {
		return cafe.Cafe{}, cafe.ErrNotFound
	}

	return c, nil
}
