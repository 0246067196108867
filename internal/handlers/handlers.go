// Package handlers exposes the feed and account operations over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/go-feed-api/internal/auth"
	"github.com/petermazzocco/go-feed-api/internal/feed"
	"github.com/petermazzocco/go-feed-api/internal/logger"
	"github.com/petermazzocco/go-feed-api/models"
)

const defaultMaxUploadBytes = 10 << 20

// FeedService is implemented by feed.Service.
type FeedService interface {
	GetStatus(ctx context.Context, userID string) (string, error)
	SetStatus(ctx context.Context, userID, status string) error
	ListPosts(ctx context.Context, page int) (*feed.Page, error)
	CreatePost(ctx context.Context, in feed.CreatePostInput) (*feed.CreatedPost, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	UpdatePost(ctx context.Context, in feed.UpdatePostInput) (*models.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error
}

// AccountService is implemented by auth.Service.
type AccountService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	LoginExternal(ctx context.Context, email, name string) (*models.User, error)
}

// Handler serves every API endpoint.
type Handler struct {
	feed           FeedService
	accounts       AccountService
	logger         *logger.Logger
	maxUploadBytes int64

	sessions     sessions.Store
	completeAuth func(http.ResponseWriter, *http.Request) (goth.User, error)
	beginAuth    func(http.ResponseWriter, *http.Request)
	logout       func(http.ResponseWriter, *http.Request) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxUploadBytes limits the size of post submissions.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithSessionStore sets the cookie store used by the OAuth login.
func WithSessionStore(store sessions.Store) Option {
	return func(h *Handler) {
		h.sessions = store
	}
}

func New(feedService FeedService, accounts AccountService, logger *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		feed:           feedService,
		accounts:       accounts,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
		completeAuth:   gothic.CompleteUserAuth,
		beginAuth:      gothic.BeginAuthHandler,
		logout:         gothic.Logout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sessions == nil {
		h.sessions = gothic.Store
	}
	return h
}

// userID returns the caller set by auth.UserMiddleware.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized", "Not authenticated.")
	}
	return id, ok
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
