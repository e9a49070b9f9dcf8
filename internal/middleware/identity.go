package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/preetk/blogapi/internal/auth"
	"github.com/preetk/blogapi/internal/permissions"
)

type ctxKey string

const identityKey ctxKey = "identity"

// GetIdentity returns the authenticated caller, or nil for an anonymous
// request.
func GetIdentity(ctx context.Context) *permissions.Identity {
	ident, _ := ctx.Value(identityKey).(*permissions.Identity)
	return ident
}

// BearerIdentity establishes the caller's identity from an Authorization
// header. A missing header is not an error — read endpoints are public and
// the permission chain decides what anonymous callers may do. A header
// that is present but malformed or carries an invalid token is rejected
// here with 401.
func BearerIdentity(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				tokenInvalid(w)
				return
			}

			claims, err := issuer.Verify(strings.TrimSpace(parts[1]), auth.TypeAccess)
			if err != nil {
				tokenInvalid(w)
				return
			}

			ident := &permissions.Identity{UserID: claims.UserID, Email: claims.Email}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenInvalid(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"detail": "Given token not valid for any token type",
		"code":   "token_not_valid",
	})
}
