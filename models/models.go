package models

import (
	"time"

	"github.com/mejova/bloggy/internal/auth"
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	AuthorID  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EditableBy reports whether the user may modify the post. Only the author
// may edit; the admin flag gives no edit rights.
func (p *Post) EditableBy(user *auth.User) bool {
	if user == nil {
		return false
	}
	return p.AuthorID == user.ID
}

// DeletableBy reports whether the user may delete the post.
func (p *Post) DeletableBy(user *auth.User) bool {
	if user == nil {
		return false
	}
	return p.AuthorID == user.ID || user.IsAdmin
}

type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipientId"`
	PostID      int64     `json:"postId"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSummary is the public slice of a user record used in directory
// listings and follow lists.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
