package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestUser_BeforeCreate(t *testing.T) {
	u := &User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, u.BeforeCreate(nil))

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, DefaultStatus, u.Status)
	assert.NotNil(t, u.Posts)
	assert.Empty(t, u.Posts)
}

func TestUser_BeforeCreateKeepsID(t *testing.T) {
	u := &User{ID: "fixed", Status: "busy"}
	require.NoError(t, u.BeforeCreate(nil))

	assert.Equal(t, "fixed", u.ID)
	assert.Equal(t, "busy", u.Status)
}

func TestUser_AddPost(t *testing.T) {
	u := &User{}
	u.AddPost("p1")
	u.AddPost("p2")
	u.AddPost("p1")

	assert.Equal(t, []string{"p1", "p2"}, []string(u.Posts))
}

func TestUser_RemovePost(t *testing.T) {
	u := &User{Posts: []string{"p1", "p2", "p1", "p3"}}
	u.RemovePost("p1")
	assert.Equal(t, []string{"p2", "p3"}, []string(u.Posts))

	u.RemovePost("missing")
	assert.Equal(t, []string{"p2", "p3"}, []string(u.Posts))
}

func TestPost_BeforeCreate(t *testing.T) {
	p := &Post{Title: "Title"}
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEmpty(t, p.ID)

	fixed := &Post{ID: "abc"}
	require.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, "abc", fixed.ID)
}

func TestPost_TextColumnsAreUnbounded(t *testing.T) {
	s, err := schema.Parse(&Post{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	for _, name := range []string{"Title", "Content"} {
		field := s.LookUpField(name)
		require.NotNil(t, field, name)
		assert.Equal(t, schema.DataType("text"), field.DataType, name)
		assert.Zero(t, field.Size, name)
	}
}
