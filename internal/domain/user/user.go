package user

import (
	"errors"
	"time"
)

const (
	TypeContributor = "contributor"
	TypeAdmin       = "admin"
)

// AdminID is the single identity allowed through the admin gate.
const AdminID int64 = 1

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.ID == AdminID
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)
