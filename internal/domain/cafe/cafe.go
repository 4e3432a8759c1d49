package cafe

import (
	"errors"
	"time"
)

type Cafe struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"authorId"`
	AuthorName   string    `json:"authorName,omitempty"` // joined, not stored
	Name         string    `json:"name"`
	MapURL       string    `json:"mapUrl"`
	ImgURL       string    `json:"imgUrl"`
	Location     string    `json:"location"`
	HasSockets   bool      `json:"hasSockets"`
	HasToilet    bool      `json:"hasToilet"`
	HasWifi      bool      `json:"hasWifi"`
	CanTakeCalls bool      `json:"canTakeCalls"`
	Seats        int       `json:"seats"`
	CoffeePrice  float64   `json:"coffeePrice"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrNotFound  = errors.New("cafe not found")
	ErrNameTaken = errors.New("cafe name already exists")
)

// CreateCafeRequest binds the add-cafe form. The checkbox fields carry no
// binding rule: an unchecked box is simply absent from the submission.
type CreateCafeRequest struct {
	Name         string  `form:"name" binding:"required"`
	MapURL       string  `form:"map_url" binding:"required"`
	ImgURL       string  `form:"img_url" binding:"required"`
	Location     string  `form:"location" binding:"required"`
	HasSockets   bool    `form:"has_sockets"`
	HasToilet    bool    `form:"has_toilet"`
	HasWifi      bool    `form:"has_wifi"`
	CanTakeCalls bool    `form:"can_take_calls"`
	Seats        int     `form:"seats" binding:"required,min=1"`
	CoffeePrice  float64 `form:"coffee_price" binding:"required"`
}
