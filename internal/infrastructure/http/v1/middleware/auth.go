package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth validates the bearer token and populates the user context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", user.UserID)
		c.Set("role", user.Role)

		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if user.Role != appctx.RoleAdmin {
			_ = c.Error(apperror.NewForbidden("wymagane uprawnienia administratora"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireApartmentAccess allows admins through and residents only when the
// apartment id in the named path parameter matches their token claim.
func RequireApartmentAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if user.Role == appctx.RoleAdmin {
			c.Next()
			return
		}

		apartmentID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || !appctx.HasApartmentAccess(c.Request.Context(), apartmentID) {
			_ = c.Error(
				apperror.NewForbidden("brak dostępu do tego mieszkania").
					WithDetail("apartment_id", c.Param(param)),
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireResident rejects anonymous requests; any authenticated role passes.
// Apartment scoping happens in the handler for body-carried ids.
func RequireResident() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetUser(c.Request.Context()) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
