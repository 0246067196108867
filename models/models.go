package models

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultStatus is the status every new user starts with.
const DefaultStatus = "I am new!"

// ErrNotFound is returned by the stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;not null;unique" json:"email"`
	Password  string         `gorm:"size:255" json:"-"`
	Status    string         `gorm:"size:255;not null" json:"status"`
	// Posts holds the ids of the posts this user created, in creation order.
	Posts pq.StringArray `gorm:"type:text[]" json:"posts"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = DefaultStatus
	}
	if u.Posts == nil {
		u.Posts = pq.StringArray{}
	}
	return nil
}

// AddPost appends postID to the back-reference list unless it is already there.
func (u *User) AddPost(postID string) {
	if slices.Contains(u.Posts, postID) {
		return
	}
	u.Posts = append(u.Posts, postID)
}

// RemovePost drops every occurrence of postID from the back-reference list.
func (u *User) RemovePost(postID string) {
	u.Posts = slices.DeleteFunc(u.Posts, func(id string) bool { return id == postID })
}

type Post struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Title     string         `gorm:"type:text;not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	ImageURL  string         `gorm:"not null" json:"imageUrl"`
	CreatorID string         `gorm:"type:uuid;not null;index" json:"creator"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Creator is the short form of a user returned next to a created post.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
