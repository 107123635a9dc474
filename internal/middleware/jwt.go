package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unifecaf/checkin-api/internal/auth"
	"github.com/unifecaf/checkin-api/pkg/response"
)

const (
	// ContextSubject is the key for the token subject in gin context.
	ContextSubject = "subject"
	// ContextRole is the key for the token role in gin context.
	ContextRole = "role"
)

// JWT returns a middleware that validates JWT and sets claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// Bearer shares one path between an authenticated handler and a public one.
// Requests without a Bearer credential (no header, or any other scheme) go to public.
// A Bearer token that is invalid or carries another role goes to public when
// looksPublic reports the request as a public one; otherwise it is rejected.
func Bearer(jwtService *auth.JWTService, role string, authed, public gin.HandlerFunc, looksPublic func(*gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			public(c)
			return
		}
		claims, err := jwtService.Validate(token)
		if err == nil && claims.Role == role {
			setClaims(c, claims)
			authed(c)
			return
		}
		if looksPublic != nil && looksPublic(c) {
			public(c)
			return
		}
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
		} else {
			response.Forbidden(c, "insufficient permissions")
		}
		c.Abort()
	}
}

// bearerToken extracts the token of a "Bearer <token>" header, scheme case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextSubject, claims.Subject)
	c.Set(ContextRole, claims.Role)
}
