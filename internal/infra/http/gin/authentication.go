package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"kase/internal/infra/auth"
)

const principalContextKey = "kase.principal"

// IdentityMiddleware resolves the upstream session token into the current
// user. Resolution is best-effort: no token or a bad one means an anonymous
// shopper, and guest checkout stays available.
type IdentityMiddleware struct {
	Resolver auth.TokenResolver
	Logger   *slog.Logger
}

func (m IdentityMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.Next()
		return
	}
	userID, err := m.Resolver.Resolve(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("session token rejected", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, userID)
	c.Next()
}

// currentUserID returns the authenticated user id, empty for anonymous.
func currentUserID(c *gin.Context) string {
	return c.GetString(principalContextKey)
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
