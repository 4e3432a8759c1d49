package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geocoder89/cafedir/internal/config"
	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/geocoder89/cafedir/internal/http/middlewares"
	"github.com/geocoder89/cafedir/internal/observability"
	"github.com/geocoder89/cafedir/internal/session"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name, userType string) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, id string, data session.Data) error
	Delete(ctx context.Context, id string) error
	AddFlash(ctx context.Context, id string, flash session.Flash) error
}

type TokenMinter interface {
	GenerateSessionToken(userID int64) (raw string, jti string, expiresAt time.Time, err error)
}

type PasswordHasher func(plain string) (string, error)

type PasswordChecker func(hash, plain string) error

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	sessions   SessionStore
	tokens     TokenMinter
	hash       PasswordHasher
	check      PasswordChecker
	render     *PageRenderer
	prom       *observability.Prom
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, sessions SessionStore, tokens TokenMinter, hash PasswordHasher, check PasswordChecker, render *PageRenderer, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		sessions:   sessions,
		tokens:     tokens,
		hash:       hash,
		check:      check,
		render:     render,
		prom:       prom,
		cfg:        cfg,
	}
}

type RegisterForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) ShowRegister(ctx *gin.Context) {
	h.render.HTML(ctx, http.StatusOK, "register.html", gin.H{
		"Form": RegisterForm{},
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var form RegisterForm

	fieldErrors, ok := BindForm(ctx, &form)

	if !ok {
		h.render.HTML(ctx, http.StatusBadRequest, "register.html", gin.H{
			"Errors": fieldErrors,
			"Form":   form,
		})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// duplicate check before insert: an existing account means "log in
	// instead", not a validation error
	_, err := h.users.GetByEmail(cctx, form.Email)

	if err == nil {
		h.flashAndRedirect(ctx, session.Flash{
			Level:   "error",
			Message: fmt.Sprintf("You've already signed up with %s, log in instead.", form.Email),
		}, "/login")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := h.hash(form.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, form.Email, hash, form.Name, user.TypeContributor)

	if err != nil {
		// lost a race with a concurrent registration for the same email
		if errors.Is(err, user.ErrEmailTaken) {
			h.flashAndRedirect(ctx, session.Flash{
				Level:   "error",
				Message: fmt.Sprintf("You've already signed up with %s, log in instead.", form.Email),
			}, "/login")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	err = h.establishSession(ctx, u.ID, session.Flash{
		Level:   "info",
		Message: fmt.Sprintf("Welcome, %s!", u.Name),
	})

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) ShowLogin(ctx *gin.Context) {
	h.render.HTML(ctx, http.StatusOK, "login.html", gin.H{
		"Form": LoginForm{},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	fieldErrors, ok := BindForm(ctx, &form)

	if !ok {
		h.render.HTML(ctx, http.StatusBadRequest, "login.html", gin.H{
			"Errors": fieldErrors,
			"Form":   form,
		})
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, form.Email)
	if err != nil {
		h.render.HTML(ctx, http.StatusUnauthorized, "login.html", gin.H{
			"Message": "That email does not exist, please try again.",
			"Form":    form,
		})
		return
	}

	err = h.check(foundUser.PasswordHash, form.Password)

	if err != nil {
		h.render.HTML(ctx, http.StatusUnauthorized, "login.html", gin.H{
			"Message": "Password incorrect, please try again.",
			"Form":    form,
		})
		return
	}

	err = h.establishSession(ctx, foundUser.ID, session.Flash{
		Level:   "info",
		Message: "Logged in successfully.",
	})

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

// Logout runs behind RequireAuth, so a session is always present here.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	sid, ok := middlewares.SessionID(ctx)

	if ok {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		_ = h.sessions.Delete(cctx, sid)

		if h.prom != nil {
			h.prom.SessionsCleared.Inc()
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusSeeOther, "/")
}

// Helper functions

// establishSession mints a fresh session for the user and sets the cookie.
func (h *AuthHandler) establishSession(ctx *gin.Context, userID int64, flash session.Flash) error {
	raw, jti, expiresAt, err := h.tokens.GenerateSessionToken(userID)

	if err != nil {
		return err
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	data := session.Data{
		UserID:  userID,
		Flashes: []session.Flash{flash},
	}

	err = h.sessions.Create(cctx, jti, data)

	if err != nil {
		return err
	}

	if h.prom != nil {
		h.prom.SessionsCreated.Inc()
	}

	h.setSessionCookie(ctx, raw, expiresAt)

	return nil
}

// flashAndRedirect queues a one-shot message for the next page. Anonymous
// visitors without a session yet get one created just to carry the flash.
func (h *AuthHandler) flashAndRedirect(ctx *gin.Context, flash session.Flash, location string) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	sid, ok := middlewares.SessionID(ctx)

	if ok {
		_ = h.sessions.AddFlash(cctx, sid, flash)
		ctx.Redirect(http.StatusSeeOther, location)
		return
	}

	raw, jti, expiresAt, err := h.tokens.GenerateSessionToken(0)

	if err == nil {
		err = h.sessions.Create(cctx, jti, session.Data{Flashes: []session.Flash{flash}})
	}

	// losing the flash is not worth failing the redirect
	if err == nil {
		h.setSessionCookie(ctx, raw, expiresAt)
	}

	ctx.Redirect(http.StatusSeeOther, location)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookie,
		raw,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
