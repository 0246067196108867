package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions holds the collaborators and limits of the router.
type RouterOptions struct {
	// Authenticate resolves the caller of /feed routes.
	Authenticate func(http.Handler) http.Handler
	// Socket serves the notification websocket.
	Socket http.Handler
	// Images serves stored images under /images/. Nil when images live in
	// object storage.
	Images         http.Handler
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

// NewRouter mounts every route.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimit > 0 {
		limit = httprate.Limit(
			opts.RateLimit,
			opts.RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)
	}

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Put("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Get("/auth/{provider}", h.BeginOAuth)
		r.Get("/auth/{provider}/callback", h.OAuthCallback)
		r.Post("/logout/{provider}", h.Logout)
	})

	r.Route("/feed", func(r chi.Router) {
		r.Use(opts.Authenticate)
		r.Use(limit)
		r.Get("/status", h.GetStatus)
		r.Patch("/status", h.SetStatus)
		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/{postId}", h.GetPost)
		r.Put("/posts/{postId}", h.UpdatePost)
		r.Delete("/posts/{postId}", h.DeletePost)
	})

	if opts.Socket != nil {
		r.Handle("/socket", opts.Socket)
	}
	if opts.Images != nil {
		r.Handle("/images/*", opts.Images)
	}

	return r
}
