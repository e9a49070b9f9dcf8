package handlers

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Detail writes {"detail": "..."}, the shape used for auth, permission and
// not-found failures.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"detail": msg})
}

// TokenInvalid is the refresh/verify failure response. The bearer
// middleware has its own wording for a bad Authorization header.
func TokenInvalid(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, map[string]string{
		"detail": "Token is invalid or expired",
		"code":   "token_not_valid",
	})
}

// FieldErrors writes a bare per-field error map, e.g.
// {"title": ["This field is required."]}.
func FieldErrors(w http.ResponseWriter, status int, errs map[string][]string) {
	JSON(w, status, errs)
}

// WrappedErrors writes {"errors": {...}} — the envelope the registration
// and login endpoints use for their failures.
func WrappedErrors(w http.ResponseWriter, status int, errs map[string][]string) {
	JSON(w, status, map[string]interface{}{"errors": errs})
}

// DecodeJSON parses the JSON body into v. Unknown fields are ignored so a
// client-supplied owner field can never leak into a write.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		Detail(w, http.StatusBadRequest, "Empty request body.")
		return http.ErrBodyNotAllowed
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Detail(w, http.StatusBadRequest, "Invalid JSON.")
		return err
	}
	return nil
}
