package ventrestserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

const identityKey = "ventrest.identity"

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the caller on the request context.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			respondUnauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		if authenticator == nil {
			respondUnauthorized(c, "authentication is not configured")
			c.Abort()
			return
		}
		identity, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func callerFrom(c *gin.Context) auth.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(auth.Identity); ok {
			return identity
		}
	}
	identity, _ := auth.FromContext(c.Request.Context())
	return identity
}
