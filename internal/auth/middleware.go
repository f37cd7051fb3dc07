package auth

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// TokenVerifier is the part of the Firebase Auth client the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxFirebaseUID, decodedToken.UID)
		c.Set(CtxAdmin, decodedToken.UID)
		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set(CtxEmail, email)
			c.Set(CtxAdmin, email)
		}

		c.Next()
	}
}

// PlaceholderAuthMiddleware guards admin routes with HTTP Basic using the
// configured placeholder credentials.
func PlaceholderAuthMiddleware(creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok || !creds.Check(email, password) {
			c.Header("WWW-Authenticate", `Basic realm="content-admin"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}
		c.Set(CtxAdmin, email)
		c.Set(CtxEmail, email)
		c.Next()
	}
}

// OpenAccess marks every request as coming from a development admin.
// Use this ONLY for development/testing.
func OpenAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if admin == "" {
			admin = "dev-admin"
		}
		c.Set(CtxAdmin, admin)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
