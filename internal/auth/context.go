package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	// CtxAdmin holds whoever the active auth mode authenticated.
	CtxAdmin = "admin"
)

// Admin returns the authenticated administrator for the request.
func Admin(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxAdmin))
}
