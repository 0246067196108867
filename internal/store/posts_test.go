package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/go-feed-api/models"
)

var postColumns = []string{"id", "created_at", "updated_at", "deleted_at", "title", "content", "image_url", "creator_id"}

func TestPostRepository_FindByID(t *testing.T) {
	postID := uuid.NewString()
	creatorID := uuid.NewString()
	now := time.Now()

	tests := []struct {
		name    string
		id      string
		setup   func(mock sqlmock.Sqlmock)
		want    *models.Post
		wantErr error
	}{
		{
			name: "found",
			id:   postID,
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(postColumns).
					AddRow(postID, now, now, nil, "First post", "Some content", "images/a.png", creatorID)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).WillReturnRows(rows)
			},
			want: &models.Post{
				ID:        postID,
				Title:     "First post",
				Content:   "Some content",
				ImageURL:  "images/a.png",
				CreatorID: creatorID,
			},
		},
		{
			name: "missing row",
			id:   postID,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).
					WillReturnRows(sqlmock.NewRows(postColumns))
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:    "malformed id never reaches the database",
			id:      "not-a-uuid",
			setup:   func(sqlmock.Sqlmock) {},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			got, err := NewPostRepository(db).FindByID(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.Equal(t, tt.want.Content, got.Content)
			assert.Equal(t, tt.want.ImageURL, got.ImageURL)
			assert.Equal(t, tt.want.CreatorID, got.CreatorID)
		})
	}
}

func TestPostRepository_FindByIDQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts"`)).WillReturnError(errors.New("connection reset"))

	_, err := NewPostRepository(db).FindByID(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to find post by id")
}

func TestPostRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := NewPostRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestPostRepository_FindPage(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	rows := sqlmock.NewRows(postColumns).
		AddRow(uuid.NewString(), now, now, nil, "seventh", "content", "images/7.png", uuid.NewString())
	mock.ExpectQuery(`SELECT \* FROM "posts" .*ORDER BY created_at ASC,id ASC LIMIT .* OFFSET .*`).
		WillReturnRows(rows)

	posts, err := NewPostRepository(db).FindPage(context.Background(), 6, 3)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "seventh", posts[0].Title)
}

func TestPostRepository_FindPageEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "posts"`).WillReturnRows(sqlmock.NewRows(postColumns))

	posts, err := NewPostRepository(db).FindPage(context.Background(), 300, 3)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "posts"`)).WillReturnResult(sqlmock.NewResult(0, 1))

	post := &models.Post{Title: "Title", Content: "Content", ImageURL: "images/a.png", CreatorID: uuid.NewString()}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))

	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestPostRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))

	post := &models.Post{ID: uuid.NewString(), Title: "New title", Content: "Content", ImageURL: "images/b.png", CreatorID: uuid.NewString()}
	require.NoError(t, NewPostRepository(db).Save(context.Background(), post))
}

func TestPostRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "nothing matched", affected: 0, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "deleted_at"=`)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := NewPostRepository(db).Delete(context.Background(), uuid.NewString())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
