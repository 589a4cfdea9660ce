package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenFromRequest extracts the session token from the cookie or the
// Authorization header. The cookie takes precedence when both are present.
func TokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
		return tok
	}
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

// Required enforces an authenticated principal of either role.
func Required(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := TokenFromRequest(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		claims, err := Parse(tok, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(principalKey, claims)
		c.Next()
	}
}

// AdminOnly rejects any principal whose role is not admin. It must run after
// Required.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Principal(c)
		if !ok || claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// Principal returns the decoded claims set by Required.
func Principal(c *gin.Context) (Claims, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return Claims{}, false
	}
	claims, ok := val.(Claims)
	return claims, ok
}
