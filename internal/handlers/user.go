package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
	"github.com/petermazzocco/go-feed-api/internal/auth"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errMalformedJSON = apperr.New(apperr.InvalidInput, "Malformed request body.")

// Signup handles PUT /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.InvalidInput, errMalformedJSON.Message, err))
		return
	}

	user, err := h.accounts.Signup(r.Context(), auth.SignupInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created!",
		"userId":  user.ID,
	})
}

// Login handles POST /auth/login and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.InvalidInput, errMalformedJSON.Message, err))
		return
	}

	token, user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"userId": user.ID,
	})
}

// BeginOAuth handles GET /auth/{provider}.
func (h *Handler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	if gothUser, err := h.completeAuth(w, r); err == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"message": "User already authenticated: " + gothUser.Name,
		})
		return
	}
	h.beginAuth(w, r)
}

// OAuthCallback handles GET /auth/{provider}/callback. The provider's user
// is matched to an account by email, created if new, and remembered in the
// cookie session.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	gothUser, err := h.completeAuth(w, r)
	if err != nil {
		h.logger.Warn("oauth login failed", "error", err)
		h.writeError(w, http.StatusUnauthorized, "Unauthorized", "Login with provider failed.")
		return
	}

	user, err := h.accounts.LoginExternal(r.Context(), gothUser.Email, gothUser.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	session, err := h.sessions.Get(r, auth.SessionName)
	if session == nil {
		h.respondError(w, r, err)
		return
	}
	if err != nil {
		h.logger.Warn("replacing unreadable session", "error", err)
	}
	session.Values[auth.SessionUserKey] = user.ID
	if err := session.Save(r, w); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged in!",
		"userId":  user.ID,
	})
}

// Logout handles POST /logout/{provider}.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	if err := h.logout(w, r); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out!"})
}
