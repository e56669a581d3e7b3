package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fittogether/server/pkg/jwt"
	"github.com/fittogether/server/pkg/log"
	"github.com/fittogether/server/pkg/response"
)

const (
	UserIDKey     = "user_id"
	NicknameKey   = "nickname"
	EmailKey      = "email"
	TokenKey      = "token"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenDecoder is the part of the token service the middleware needs.
type TokenDecoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens issued by the token service.
type AuthMiddleware struct {
	tokens TokenDecoder
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens TokenDecoder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := m.tokens.Decode(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(NicknameKey, claims.Nickname)
		c.Set(EmailKey, claims.Email)
		c.Set(TokenKey, token)

		ctx := log.WithStr(c.Request.Context(), log.FieldUserID, claims.UserID)
		c.Request = c.Request.WithContext(log.WithStr(ctx, log.FieldNickname, claims.Nickname))

		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// GetToken returns the raw bearer token accepted by RequireAuth.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
