// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Role names recognized by the platform.
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID      int64
	Login       string
	Role        string
	ApartmentID int64 // set for residents only
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or zero when anonymous.
func GetUserID(ctx context.Context) int64 {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return 0
}

// GetRole returns the role from context or empty string.
func GetRole(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Role
	}
	return ""
}

// IsAdmin reports whether the context user carries the admin role.
func IsAdmin(ctx context.Context) bool {
	return GetRole(ctx) == RoleAdmin
}

// HasApartmentAccess checks whether the context user may read data scoped to
// the given apartment. Admins see everything; residents only their own.
func HasApartmentAccess(ctx context.Context, apartmentID int64) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	return u.Role == RoleResident && u.ApartmentID == apartmentID
}
