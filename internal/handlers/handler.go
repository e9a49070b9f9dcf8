package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/thejerf/abtime"

	"github.com/preetk/blogapi/internal/auth"
	"github.com/preetk/blogapi/internal/config"
	"github.com/preetk/blogapi/internal/middleware"
	"github.com/preetk/blogapi/internal/permissions"
	"github.com/preetk/blogapi/internal/store"
)

type Handler struct {
	Auth  *AuthHandler
	Posts *PostHandler
	Users *UserHandler

	Issuer      *auth.Issuer
	StaffDomain string
}

func New(cfg *config.Config, users store.UserStore, posts store.PostStore, issuer *auth.Issuer, clock abtime.AbstractTime) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(users, issuer),
		Posts:       NewPostHandler(posts, cfg.PageSize),
		Users:       NewUserHandler(users, clock, cfg.PageSize),
		Issuer:      issuer,
		StaffDomain: cfg.StaffDomain,
	}
}

// Routes builds the full route table. Tests mount this too, so what they
// exercise is exactly what the server runs.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.BearerIdentity(h.Issuer))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register/", h.Auth.Register)
		r.Post("/login/", h.Auth.Login)
		r.Post("/token/refresh/", h.Auth.Refresh)
		r.Post("/token/verify/", h.Auth.VerifyToken)

		r.Get("/posts/", h.Posts.List)
		r.Post("/posts/", h.require(h.Posts.Create, permissions.IsAuthenticated{}))
		r.Get("/posts/{id}/", h.Posts.Retrieve)
		r.Put("/posts/{id}/", h.require(h.Posts.Update, permissions.IsAuthenticatedOrReadOnly{}))
		r.Patch("/posts/{id}/", h.require(h.Posts.Update, permissions.IsAuthenticatedOrReadOnly{}))
		r.Delete("/posts/{id}/", h.require(h.Posts.Delete, permissions.IsAuthenticatedOrReadOnly{}))

		r.Get("/users/", h.Users.List)
		r.Get("/users/{id}/", h.Users.Retrieve)
		r.Get("/latestusers/", h.require(h.Users.Latest,
			permissions.IsStaffDomain{Domain: h.StaffDomain},
			permissions.IsAuthenticated{},
		))
	})

	return r
}

// require gates a handler behind a request-level permission chain.
func (h *Handler) require(next http.HandlerFunc, perms ...permissions.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := middleware.GetIdentity(r.Context())
		switch permissions.Evaluate(r, ident, perms...) {
		case permissions.Unauthorized:
			Detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		case permissions.Forbidden:
			Detail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		default:
			next(w, r)
		}
	}
}
