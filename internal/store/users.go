package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/preetk/blogapi/internal/models"
)

type SQLUserStore struct {
	DB *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *SQLUserStore {
	return &SQLUserStore{DB: db}
}

func (s *SQLUserStore) Create(email, name, passwordHash string) (*models.User, error) {
	var exists bool
	err := s.DB.Get(&exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, email)
	if err != nil {
		return nil, fmt.Errorf("store: check existing email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	u := models.User{Email: email, Name: name, Password: passwordHash}
	err = s.DB.QueryRowx(`
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, name, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		// Lost the race against a concurrent registration with the
		// same email; the unique index still holds.
		return nil, ErrEmailTaken
	}
	return &u, nil
}

func (s *SQLUserStore) ByEmail(email string) (*models.User, error) {
	var u models.User
	err := s.DB.Get(&u, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email=$1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by email: %w", err)
	}
	return &u, nil
}

func (s *SQLUserStore) ByID(id int64) (*models.User, error) {
	var u models.User
	err := s.DB.Get(&u, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE id=$1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by id: %w", err)
	}
	return &u, nil
}

func (s *SQLUserStore) List(limit, offset int) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.Select(&users, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	return users, nil
}

func (s *SQLUserStore) Count() (int64, error) {
	var n int64
	if err := s.DB.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

func (s *SQLUserStore) CreatedSince(cutoff time.Time) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.Select(&users, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: users created since: %w", err)
	}
	return users, nil
}

func (s *SQLUserStore) PostIDs(userID int64) ([]int64, error) {
	ids := []int64{}
	err := s.DB.Select(&ids, `SELECT id FROM posts WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: post ids for user: %w", err)
	}
	return ids, nil
}
