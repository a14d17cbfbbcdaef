package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/access"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/auth"
)

// PrincipalKey is the gin context key holding the resolved caller.
const PrincipalKey = "principal"

// Principal returns the caller resolved by the auth middleware. Routes
// without auth middleware get the anonymous principal.
func Principal(c *gin.Context) access.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Anonymous
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func resolvePrincipal(c *gin.Context, jwtSecret string) (access.Principal, bool) {
	token := bearerToken(c)
	if token == "" {
		return access.Anonymous, false
	}
	claims, err := auth.ValidateJWT(token, jwtSecret)
	if err != nil {
		return access.Anonymous, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return access.Anonymous, false
	}
	return access.NewPrincipal(userID, claims.IsAdmin), true
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := resolvePrincipal(c, jwtSecret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// OptionalAuth resolves a principal when a valid token is present and
// falls through to anonymous otherwise. A malformed token is treated as
// anonymous rather than rejected.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := resolvePrincipal(c, jwtSecret); ok {
			c.Set(PrincipalKey, principal)
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}
