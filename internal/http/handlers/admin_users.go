package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/cafedir/internal/config"
	"github.com/geocoder89/cafedir/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

// AdminUsersHandler serves the admin-only account listing. The route is
// gated by RequireAdmin, so only user id 1 ever reaches it.
type AdminUsersHandler struct {
	users  UserLister
	render *PageRenderer
}

func NewAdminUsersHandler(users UserLister, render *PageRenderer) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, render: render}
}

func (h *AdminUsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	h.render.HTML(ctx, http.StatusOK, "admin_users.html", gin.H{
		"Users": users,
	})
}
