package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/preetk/blogapi/internal/middleware"
	"github.com/preetk/blogapi/internal/models"
	"github.com/preetk/blogapi/internal/permissions"
	"github.com/preetk/blogapi/internal/store"
)

type PostHandler struct {
	Posts    store.PostStore
	PageSize int
}

func NewPostHandler(posts store.PostStore, pageSize int) *PostHandler {
	return &PostHandler{Posts: posts, PageSize: pageSize}
}

// ownerOnly is the object-level chain for unsafe methods on a post.
var ownerOnly = []permissions.ObjectPermission{permissions.IsOwnerOrReadOnly{}}

// ---------------------- LIST ----------------------

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		Detail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	count, err := h.Posts.Count()
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	limit, offset, err := pageWindow(page, h.PageSize, count)
	if err != nil {
		Detail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	posts, err := h.Posts.List(limit, offset)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, envelope(r, count, page, h.PageSize, posts))
}

// ---------------------- CREATE ----------------------

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		return
	}

	fieldErrs := map[string][]string{}
	if body.Title == "" {
		fieldErrs["title"] = append(fieldErrs["title"], "This field is required.")
	}
	if body.Content == "" {
		fieldErrs["content"] = append(fieldErrs["content"], "This field is required.")
	}
	if len(fieldErrs) > 0 {
		FieldErrors(w, http.StatusBadRequest, fieldErrs)
		return
	}

	// Owner is always the caller. Any owner field in the body was
	// dropped during decoding.
	ident := middleware.GetIdentity(r.Context())
	post, err := h.Posts.Create(ident.UserID, body.Title, body.Content)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusCreated, post)
}

// ---------------------- RETRIEVE ----------------------

func (h *PostHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, post)
}

// ---------------------- UPDATE ----------------------

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	if !h.objectAllowed(w, r, post) {
		return
	}

	var body struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		return
	}

	// PUT replaces the whole resource; PATCH is partial.
	if r.Method == http.MethodPut {
		fieldErrs := map[string][]string{}
		if body.Title == nil || *body.Title == "" {
			fieldErrs["title"] = append(fieldErrs["title"], "This field is required.")
		}
		if body.Content == nil || *body.Content == "" {
			fieldErrs["content"] = append(fieldErrs["content"], "This field is required.")
		}
		if len(fieldErrs) > 0 {
			FieldErrors(w, http.StatusBadRequest, fieldErrs)
			return
		}
	}

	title, content := post.Title, post.Content
	if body.Title != nil {
		title = *body.Title
	}
	if body.Content != nil {
		content = *body.Content
	}

	updated, err := h.Posts.Update(post.ID, title, content)
	if errors.Is(err, store.ErrNotFound) {
		Detail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, updated)
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	if !h.objectAllowed(w, r, post) {
		return
	}

	if err := h.Posts.Delete(post.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetch loads the post named by the URL, writing 404 on failure.
func (h *PostHandler) fetch(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Detail(w, http.StatusNotFound, "Not found.")
		return nil, false
	}

	post, err := h.Posts.ByID(id)
	if errors.Is(err, store.ErrNotFound) {
		Detail(w, http.StatusNotFound, "Not found.")
		return nil, false
	}
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return nil, false
	}
	return post, true
}

// objectAllowed runs the ownership chain against the loaded post.
func (h *PostHandler) objectAllowed(w http.ResponseWriter, r *http.Request, post *models.Post) bool {
	ident := middleware.GetIdentity(r.Context())
	switch permissions.EvaluateObject(r, ident, post.UserID, ownerOnly...) {
	case permissions.Unauthorized:
		Detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return false
	case permissions.Forbidden:
		Detail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return false
	}
	return true
}
