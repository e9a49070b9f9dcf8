package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/preetk/blogapi/internal/models"
)

type SQLPostStore struct {
	DB *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *SQLPostStore {
	return &SQLPostStore{DB: db}
}

// postColumns joins the owner's name in so a post serializes with its
// author rather than a foreign key.
const postColumns = `
	p.id, p.user_id, p.title, p.content, p.post_date,
	u.name AS user_name
`

func (s *SQLPostStore) Create(userID int64, title, content string) (*models.Post, error) {
	p := models.Post{UserID: userID, Title: title, Content: content}
	err := s.DB.QueryRowx(`
		INSERT INTO posts (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_date
	`, userID, title, content).Scan(&p.ID, &p.PostDate)
	if err != nil {
		return nil, fmt.Errorf("store: create post: %w", err)
	}

	if err := s.DB.Get(&p.UserName, `SELECT name FROM users WHERE id=$1`, userID); err != nil {
		return nil, fmt.Errorf("store: owner name: %w", err)
	}
	return &p, nil
}

func (s *SQLPostStore) ByID(id int64) (*models.Post, error) {
	var p models.Post
	err := s.DB.Get(&p, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id=$1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: post by id: %w", err)
	}
	return &p, nil
}

func (s *SQLPostStore) List(limit, offset int) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.DB.Select(&posts, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		ORDER BY p.post_date DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list posts: %w", err)
	}
	return posts, nil
}

func (s *SQLPostStore) Count() (int64, error) {
	var n int64
	if err := s.DB.Get(&n, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, fmt.Errorf("store: count posts: %w", err)
	}
	return n, nil
}

func (s *SQLPostStore) Update(id int64, title, content string) (*models.Post, error) {
	res, err := s.DB.Exec(`
		UPDATE posts SET title=$1, content=$2 WHERE id=$3
	`, title, content, id)
	if err != nil {
		return nil, fmt.Errorf("store: update post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.ByID(id)
}

func (s *SQLPostStore) Delete(id int64) error {
	res, err := s.DB.Exec(`DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
