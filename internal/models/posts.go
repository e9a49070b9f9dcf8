package models

import "time"

type Post struct {
	ID       int64     `db:"id" json:"id"`
	UserID   int64     `db:"user_id" json:"-"`
	Title    string    `db:"title" json:"title"`
	Content  string    `db:"content" json:"content"`
	PostDate time.Time `db:"post_date" json:"post_date"`

	// Owner display name, joined in by the store. Serialized as "user"
	// so clients see the author, not a numeric foreign key.
	UserName string `db:"user_name" json:"user"`
}
