package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/cafedir/internal/auth"
	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/geocoder89/cafedir/internal/http/middlewares"
	"github.com/geocoder89/cafedir/internal/session"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) VerifySessionToken(token string) (*auth.Claims, error) {
	return f.claims, f.err
}

type fakeSessionReader struct {
	data session.Data
	err  error
}

func (f *fakeSessionReader) Get(ctx context.Context, id string) (session.Data, error) {
	return f.data, f.err
}

type fakeUserGetter struct {
	user user.User
	err  error
}

func (f *fakeUserGetter) GetByID(ctx context.Context, id int64) (user.User, error) {
	return f.user, f.err
}

func request(r *gin.Engine, withCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	if withCookie {
		req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: "some-token"})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func protectedRouter(m *middlewares.AuthMiddleware, gate gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/protected", m.LoadCurrentUser(), gate, func(c *gin.Context) {
		u, _ := middlewares.CurrentUser(c)
		c.String(http.StatusOK, "hello %d", u.ID)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		verifier       *fakeVerifier
		sessions       *fakeSessionReader
		users          *fakeUserGetter
		withCookie     bool
		wantStatusCode int
		wantLocation   string
	}{
		{
			name:           "no cookie redirects to login",
			verifier:       &fakeVerifier{},
			sessions:       &fakeSessionReader{},
			users:          &fakeUserGetter{},
			withCookie:     false,
			wantStatusCode: http.StatusSeeOther,
			wantLocation:   "/login",
		},
		{
			name:           "bad token is anonymous",
			verifier:       &fakeVerifier{err: errors.New("invalid token")},
			sessions:       &fakeSessionReader{},
			users:          &fakeUserGetter{},
			withCookie:     true,
			wantStatusCode: http.StatusSeeOther,
			wantLocation:   "/login",
		},
		{
			name:           "missing server session is anonymous",
			verifier:       &fakeVerifier{claims: &auth.Claims{UserID: 9, JTI: "sid"}},
			sessions:       &fakeSessionReader{err: session.ErrNotFound},
			users:          &fakeUserGetter{},
			withCookie:     true,
			wantStatusCode: http.StatusSeeOther,
			wantLocation:   "/login",
		},
		{
			name:           "valid session proceeds",
			verifier:       &fakeVerifier{claims: &auth.Claims{UserID: 9, JTI: "sid"}},
			sessions:       &fakeSessionReader{data: session.Data{UserID: 9}},
			users:          &fakeUserGetter{user: user.User{ID: 9, Name: "A"}},
			withCookie:     true,
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(tc.verifier, tc.sessions, tc.users)
			r := protectedRouter(m, m.RequireAuth())

			w := request(r, tc.withCookie)

			if w.Code != tc.wantStatusCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatusCode)
			}

			if tc.wantLocation != "" && w.Header().Get("Location") != tc.wantLocation {
				t.Fatalf("location = %q, want %q", w.Header().Get("Location"), tc.wantLocation)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		userID         int64
		wantStatusCode int
	}{
		{"admin id 1 allowed", 1, http.StatusOK},
		{"other users forbidden", 2, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(
				&fakeVerifier{claims: &auth.Claims{UserID: tc.userID, JTI: "sid"}},
				&fakeSessionReader{data: session.Data{UserID: tc.userID}},
				&fakeUserGetter{user: user.User{ID: tc.userID}},
			)
			r := protectedRouter(m, m.RequireAdmin())

			w := request(r, true)

			if w.Code != tc.wantStatusCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatusCode)
			}
		})
	}
}

func TestRequireAdminAnonymousRedirects(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeVerifier{}, &fakeSessionReader{}, &fakeUserGetter{})
	r := protectedRouter(m, m.RequireAdmin())

	w := request(r, false)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	if w.Header().Get("Location") != "/login" {
		t.Fatalf("location = %q, want /login", w.Header().Get("Location"))
	}
}
