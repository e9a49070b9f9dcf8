package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thejerf/abtime"

	"github.com/preetk/blogapi/internal/models"
	"github.com/preetk/blogapi/internal/store"
)

type UserHandler struct {
	Users    store.UserStore
	Clock    abtime.AbstractTime
	PageSize int
}

func NewUserHandler(users store.UserStore, clock abtime.AbstractTime, pageSize int) *UserHandler {
	return &UserHandler{Users: users, Clock: clock, PageSize: pageSize}
}

// userResource is the hyperlinked read shape: the user's own URL plus the
// URLs of their posts. Email and password never leave the store.
type userResource struct {
	URL   string   `json:"url"`
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Posts []string `json:"posts"`
}

func (h *UserHandler) resource(r *http.Request, u *models.User) (userResource, error) {
	ids, err := h.Users.PostIDs(u.ID)
	if err != nil {
		return userResource{}, err
	}

	posts := make([]string, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, absoluteURL(r, fmt.Sprintf("/api/posts/%d/", id)))
	}

	return userResource{
		URL:   absoluteURL(r, fmt.Sprintf("/api/users/%d/", u.ID)),
		ID:    u.ID,
		Name:  u.Name,
		Posts: posts,
	}, nil
}

func (h *UserHandler) resources(r *http.Request, users []models.User) ([]userResource, error) {
	out := make([]userResource, 0, len(users))
	for i := range users {
		res, err := h.resource(r, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ---------------------- LIST ----------------------

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		Detail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	count, err := h.Users.Count()
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	limit, offset, err := pageWindow(page, h.PageSize, count)
	if err != nil {
		Detail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	users, err := h.Users.List(limit, offset)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	results, err := h.resources(r, users)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, envelope(r, count, page, h.PageSize, results))
}

// ---------------------- RETRIEVE ----------------------

func (h *UserHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Detail(w, http.StatusNotFound, "Not found.")
		return
	}

	user, err := h.Users.ByID(id)
	if errors.Is(err, store.ErrNotFound) {
		Detail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	res, err := h.resource(r, user)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, res)
}

// ---------------------- LATEST ----------------------

// Latest returns users registered within the trailing 24 hours. The route
// is restricted to authenticated staff-domain callers; the list is not
// paginated.
func (h *UserHandler) Latest(w http.ResponseWriter, r *http.Request) {
	cutoff := h.Clock.Now().Add(-24 * time.Hour)

	users, err := h.Users.CreatedSince(cutoff)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	results, err := h.resources(r, users)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, results)
}
