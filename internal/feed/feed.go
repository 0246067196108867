// Package feed implements the post and status operations: each one is a
// short chain of store and image steps that stops at the first failure.
//
// The user's back-reference list is updated after the post itself and the
// two writes are not atomic. A failure between them leaves an orphaned post
// (create) or a dangling reference (delete); neither is rolled back.
package feed

import (
	"context"

	"github.com/petermazzocco/go-feed-api/internal/images"
	"github.com/petermazzocco/go-feed-api/models"
)

// PostsPerPage is the fixed page size of ListPosts.
const PostsPerPage = 3

// EventPosts is the notification event emitted for every post change.
const EventPosts = "posts"

// Post change actions carried in EventPosts payloads.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// UserStore is the user persistence the service needs.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// PostStore is the post persistence the service needs.
type PostStore interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Count(ctx context.Context) (int64, error)
	FindPage(ctx context.Context, offset, limit int) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// Publisher pushes an event to connected clients.
type Publisher interface {
	Publish(event string, payload any) error
}

// ImageProcessor validates an image payload and may rewrite it before storage.
type ImageProcessor interface {
	Prepare(data []byte) ([]byte, string, error)
}

// Page is one page of posts plus the total number of posts.
type Page struct {
	Posts      []models.Post
	TotalItems int64
}

// CreatePostInput carries a new post. Image is nil when nothing was uploaded.
type CreatePostInput struct {
	UserID  string
	Title   string
	Content string
	Image   *images.Upload
}

// CreatedPost is the result of CreatePost.
type CreatedPost struct {
	Post    *models.Post
	Creator models.Creator
}

// UpdatePostInput carries an edit. The new image is Image when a file was
// uploaded, otherwise the ImageURL the client kept.
type UpdatePostInput struct {
	PostID   string
	UserID   string
	Title    string
	Content  string
	Image    *images.Upload
	ImageURL string
}

// PostEvent is the payload of EventPosts.
type PostEvent struct {
	Action  string          `json:"action"`
	Post    any             `json:"post"`
	Creator *models.Creator `json:"creator,omitempty"`
}
