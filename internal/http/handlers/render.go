package handlers

import (
	"context"

	"github.com/geocoder89/cafedir/internal/http/middlewares"
	"github.com/geocoder89/cafedir/internal/session"
	"github.com/gin-gonic/gin"
)

type FlashPopper interface {
	PopFlashes(ctx context.Context, id string) ([]session.Flash, error)
}

// PageRenderer decorates template data with the bits every page needs:
// the current user, their avatar and any pending flash messages.
type PageRenderer struct {
	sessions FlashPopper
}

func NewPageRenderer(sessions FlashPopper) *PageRenderer {
	return &PageRenderer{sessions: sessions}
}

func (r *PageRenderer) HTML(ctx *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u, ok := middlewares.CurrentUser(ctx); ok {
		data["CurrentUser"] = u
		data["IsAdmin"] = u.IsAdmin()
		data["Avatar"] = GravatarURL(u.Email, 32)
	}

	if sid, ok := middlewares.SessionID(ctx); ok && r.sessions != nil {
		flashes, err := r.sessions.PopFlashes(ctx.Request.Context(), sid)

		// A dead session just renders without flashes.
		if err == nil && len(flashes) > 0 {
			data["Flashes"] = flashes
		}
	}

	ctx.HTML(status, tmpl, data)
}
