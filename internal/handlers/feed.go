package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
	"github.com/petermazzocco/go-feed-api/internal/feed"
	"github.com/petermazzocco/go-feed-api/models"
)

type statusRequest struct {
	Status *string `json:"status"`
}

type postResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

// GetStatus handles GET /feed/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	status, err := h.feed.GetStatus(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Fetched status",
		"status":  status,
	})
}

// SetStatus handles PATCH /feed/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == nil {
		h.respondError(w, r, apperr.New(apperr.InvalidInput, "Status is required."))
		return
	}

	if err := h.feed.SetStatus(r.Context(), userID, *req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "Status updated!"})
}

// ListPosts handles GET /feed/posts?page=N. A missing or non-numeric page is
// the first page.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	result, err := h.feed.ListPosts(r.Context(), page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	posts := result.Posts
	if posts == nil {
		posts = []models.Post{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Fetched posts successfully!",
		"posts":      posts,
		"totalItems": result.TotalItems,
	})
}

// CreatePost handles POST /feed/posts with a multipart body.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	form, err := h.readPostForm(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer form.Close()

	created, err := h.feed.CreatePost(r.Context(), feed.CreatePostInput{
		UserID:  userID,
		Title:   form.Title,
		Content: form.Content,
		Image:   form.upload,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully.",
		"post":    created.Post,
		"creator": created.Creator,
	})
}

// GetPost handles GET /feed/posts/{postId}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.GetPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postResponse{Message: "Post fetched!", Post: post})
}

// UpdatePost handles PUT /feed/posts/{postId}. The body is multipart when a
// new image is uploaded and JSON otherwise.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var form *postForm
	if isMultipart(r) {
		f, err := h.readPostForm(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer f.Close()
		form = f
	} else {
		form = &postForm{}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(form); err != nil {
			h.respondError(w, r, apperr.Wrap(apperr.InvalidInput, errMalformedForm.Message, err))
			return
		}
	}

	post, err := h.feed.UpdatePost(r.Context(), feed.UpdatePostInput{
		PostID:   chi.URLParam(r, "postId"),
		UserID:   userID,
		Title:    form.Title,
		Content:  form.Content,
		Image:    form.upload,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, postResponse{Message: "Post updated", Post: post})
}

// DeletePost handles DELETE /feed/posts/{postId}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.feed.DeletePost(r.Context(), chi.URLParam(r, "postId"), userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted post!"})
}
