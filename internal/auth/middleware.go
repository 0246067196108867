package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/go-feed-api/internal/logger"
)

// SessionName is the cookie session shared with gothic.
const SessionName = gothic.SessionName

// SessionUserKey is the session value holding the logged in user id.
const SessionUserKey = "user_id"

// Authenticator resolves the calling user from a bearer token or, failing
// that, from the OAuth cookie session.
type Authenticator struct {
	tokens   *Tokens
	sessions sessions.Store
	logger   *logger.Logger
}

func NewAuthenticator(tokens *Tokens, store sessions.Store, logger *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: store, logger: logger}
}

// UserMiddleware rejects requests without an authenticated user and stores
// the user id in the request context.
func (a *Authenticator) UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.authenticate(r)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		claims, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			a.logger.Debug("rejected bearer token", "error", err)
			return "", false
		}
		return claims.UserID, true
	}

	if a.sessions == nil {
		return "", false
	}
	session, err := a.sessions.Get(r, SessionName)
	if err != nil {
		a.logger.Debug("unreadable session", "error", err)
		return "", false
	}
	userID, _ := session.Values[SessionUserKey].(string)
	return userID, userID != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "Unauthorized",
		"message": "Not authenticated.",
	})
}
