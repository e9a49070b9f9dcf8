// Package permissions implements the per-endpoint authorization checks.
// Each endpoint declares an ordered chain; a request passes only if every
// check in the chain allows it.
package permissions

import (
	"net/http"
	"strings"
)

// Identity is the authenticated caller, established by the bearer-token
// middleware. A nil *Identity means the request is anonymous.
type Identity struct {
	UserID int64
	Email  string
}

type Decision int

const (
	Allowed Decision = iota
	// Unauthorized: a check failed and no identity was established (401).
	Unauthorized
	// Forbidden: a check failed for an authenticated caller (403).
	Forbidden
)

// Permission is a request-level check.
type Permission interface {
	Allow(r *http.Request, ident *Identity) bool
}

// ObjectPermission additionally sees the target object's owner.
type ObjectPermission interface {
	AllowObject(r *http.Request, ident *Identity, ownerID int64) bool
}

// SafeMethod reports whether the method is read-only. Read access is
// always permitted regardless of ownership.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// IsAuthenticated allows any caller with an established identity.
type IsAuthenticated struct{}

func (IsAuthenticated) Allow(_ *http.Request, ident *Identity) bool {
	return ident != nil
}

// IsAuthenticatedOrReadOnly allows read methods for anyone and write
// methods only for authenticated callers.
type IsAuthenticatedOrReadOnly struct{}

func (IsAuthenticatedOrReadOnly) Allow(r *http.Request, ident *Identity) bool {
	return SafeMethod(r.Method) || ident != nil
}

// IsOwnerOrReadOnly allows write methods only when the caller owns the
// target object.
type IsOwnerOrReadOnly struct{}

func (IsOwnerOrReadOnly) AllowObject(r *http.Request, ident *Identity, ownerID int64) bool {
	if SafeMethod(r.Method) {
		return true
	}
	return ident != nil && ident.UserID == ownerID
}

// IsStaffDomain allows only callers whose email is under the configured
// privileged domain.
type IsStaffDomain struct {
	Domain string
}

func (p IsStaffDomain) Allow(_ *http.Request, ident *Identity) bool {
	if ident == nil {
		return false
	}
	at := strings.LastIndexByte(ident.Email, '@')
	if at < 0 {
		return false
	}
	return strings.EqualFold(ident.Email[at+1:], p.Domain)
}

// Evaluate runs the chain in order; the first failing check decides the
// outcome. There is no partial pass.
func Evaluate(r *http.Request, ident *Identity, perms ...Permission) Decision {
	for _, p := range perms {
		if !p.Allow(r, ident) {
			return deny(ident)
		}
	}
	return Allowed
}

// EvaluateObject is Evaluate for object-level checks, run after the target
// has been loaded.
func EvaluateObject(r *http.Request, ident *Identity, ownerID int64, perms ...ObjectPermission) Decision {
	for _, p := range perms {
		if !p.AllowObject(r, ident, ownerID) {
			return deny(ident)
		}
	}
	return Allowed
}

func deny(ident *Identity) Decision {
	if ident == nil {
		return Unauthorized
	}
	return Forbidden
}
