package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/cafedir/internal/auth"
	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/geocoder89/cafedir/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "cafedir_session"

// Small interfaces so tests can fake the collaborators easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type SessionReader interface {
	Get(ctx context.Context, id string) (session.Data, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	tokens   TokenVerifier
	sessions SessionReader
	users    UserGetter
}

func NewAuthMiddleware(tokens TokenVerifier, sessions SessionReader, users UserGetter) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users}
}

const (
	ctxUserKey      = "auth.user"
	ctxSessionIDKey = "auth.sessionID"
)

// LoadCurrentUser resolves the session cookie on every request. A missing,
// invalid or expired session leaves the request anonymous; it never aborts.
func (m *AuthMiddleware) LoadCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := m.tokens.VerifySessionToken(raw)
		if err != nil {
			c.Next()
			return
		}

		data, err := m.sessions.Get(c.Request.Context(), claims.JTI)
		if err != nil {
			c.Next()
			return
		}

		// Anonymous sessions only carry flashes.
		c.Set(ctxSessionIDKey, claims.JTI)

		if data.UserID == 0 {
			c.Next()
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), data.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireAuth gates a route to logged-in users; anonymous callers are sent
// to the login form.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := CurrentUser(c)

		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxSessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// SetCurrentUser stashes the identity on the context. Exposed for handler
// tests that bypass the middleware.
func SetCurrentUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

func SetSessionID(c *gin.Context, id string) {
	c.Set(ctxSessionIDKey, id)
}
