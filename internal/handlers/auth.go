package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/preetk/blogapi/internal/auth"
	"github.com/preetk/blogapi/internal/store"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthHandler struct {
	Users  store.UserStore
	Issuer *auth.Issuer
}

func NewAuthHandler(users store.UserStore, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{Users: users, Issuer: issuer}
}

type registerReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

type verifyReq struct {
	Token string `json:"token"`
}

// tokenMessage is the success envelope for register and login.
type tokenMessage struct {
	Token   auth.TokenPair `json:"token"`
	Message string         `json:"message"`
}

// ---------------- REGISTER ----------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	fieldErrs := map[string][]string{}
	if req.Email == "" {
		fieldErrs["email"] = append(fieldErrs["email"], "This field is required.")
	} else if len(req.Email) > 100 || !emailRegex.MatchString(req.Email) {
		fieldErrs["email"] = append(fieldErrs["email"], "Enter a valid email address.")
	}
	if req.Name == "" {
		fieldErrs["name"] = append(fieldErrs["name"], "This field is required.")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "This field is required.")
	} else if len(req.Password) < 6 {
		fieldErrs["password"] = append(fieldErrs["password"], "Ensure this field has at least 6 characters.")
	}
	if len(fieldErrs) > 0 {
		WrappedErrors(w, http.StatusBadRequest, fieldErrs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	user, err := h.Users.Create(req.Email, req.Name, string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		WrappedErrors(w, http.StatusBadRequest, map[string][]string{
			"email": {"user with this email already exists."},
		})
		return
	}
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	pair, err := h.Issuer.Pair(user.ID, user.Email)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusCreated, tokenMessage{Token: pair, Message: "Registration Successful"})
}

// ---------------- LOGIN ----------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	fieldErrs := map[string][]string{}
	if req.Email == "" {
		fieldErrs["email"] = append(fieldErrs["email"], "This field is required.")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "This field is required.")
	}
	if len(fieldErrs) > 0 {
		WrappedErrors(w, http.StatusBadRequest, fieldErrs)
		return
	}

	user, err := h.Users.ByEmail(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.loginFailed(w)
		return
	}
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		h.loginFailed(w)
		return
	}

	pair, err := h.Issuer.Pair(user.ID, user.Email)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, tokenMessage{Token: pair, Message: "Login Success"})
}

// loginFailed is deliberately identical for unknown email and wrong
// password, so the endpoint gives no account-enumeration signal. The 404
// status is historical wire behavior and callers depend on it.
func (h *AuthHandler) loginFailed(w http.ResponseWriter) {
	WrappedErrors(w, http.StatusNotFound, map[string][]string{
		"field_errors": {"Email or Password is not Valid"},
	})
}

// ---------------- TOKEN REFRESH ----------------

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Refresh == "" {
		FieldErrors(w, http.StatusBadRequest, map[string][]string{
			"refresh": {"This field is required."},
		})
		return
	}

	claims, err := h.Issuer.Verify(req.Refresh, auth.TypeRefresh)
	if err != nil {
		TokenInvalid(w)
		return
	}

	access, err := h.Issuer.Access(claims.UserID, claims.Email)
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Internal error.")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"access": access})
}

// ---------------- TOKEN VERIFY ----------------

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Token == "" {
		FieldErrors(w, http.StatusBadRequest, map[string][]string{
			"token": {"This field is required."},
		})
		return
	}

	if _, err := h.Issuer.VerifyAny(req.Token); err != nil {
		TokenInvalid(w)
		return
	}

	JSON(w, http.StatusOK, struct{}{})
}
