// Package store holds the persistence layer. Handlers depend on the
// interfaces; the sqlx-backed implementations live alongside.
package store

import (
	"errors"
	"time"

	"github.com/preetk/blogapi/internal/models"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrEmailTaken = errors.New("store: email already exists")
)

type UserStore interface {
	// Create inserts a new user. The password must already be hashed.
	Create(email, name, passwordHash string) (*models.User, error)
	ByEmail(email string) (*models.User, error)
	ByID(id int64) (*models.User, error)
	List(limit, offset int) ([]models.User, error)
	Count() (int64, error)
	// CreatedSince returns users registered at or after the cutoff,
	// newest first.
	CreatedSince(cutoff time.Time) ([]models.User, error)
	// PostIDs returns the ids of the user's posts, oldest first.
	PostIDs(userID int64) ([]int64, error)
}

type PostStore interface {
	Create(userID int64, title, content string) (*models.Post, error)
	ByID(id int64) (*models.Post, error)
	List(limit, offset int) ([]models.Post, error)
	Count() (int64, error)
	Update(id int64, title, content string) (*models.Post, error)
	Delete(id int64) error
}
