package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/cafedir/internal/config"
	"github.com/geocoder89/cafedir/internal/domain/cafe"
	"github.com/geocoder89/cafedir/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CafesRepo interface {
	Create(ctx context.Context, authorID int64, req cafe.CreateCafeRequest) (cafe.Cafe, error)
	List(ctx context.Context) ([]cafe.Cafe, error)
	GetByID(ctx context.Context, id int64) (cafe.Cafe, error)
}

type CafesHandler struct {
	repo   CafesRepo
	render *PageRenderer
}

func NewCafesHandler(repo CafesRepo, render *PageRenderer) *CafesHandler {
	return &CafesHandler{repo: repo, render: render}
}

// Home renders the cafe listing, ordered by name.
func (h *CafesHandler) Home(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	cafes, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list cafes")
		return
	}

	h.render.HTML(ctx, http.StatusOK, "index.html", gin.H{
		"Cafes": cafes,
	})
}

// ListCafes is the JSON listing, same order as the home page.
func (h *CafesHandler) ListCafes(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	cafes, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list cafes")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"cafes": cafes,
	})
}

// GetCafe is the JSON detail view for a single cafe.
func (h *CafesHandler) GetCafe(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "Invalid cafe id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, cafe.ErrNotFound) {
			RespondNotFound(ctx, "Cafe not found")
			return
		}

		RespondInternal(ctx, "Could not load cafe")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"cafe": c,
	})
}

func (h *CafesHandler) ShowAddCafe(ctx *gin.Context) {
	h.render.HTML(ctx, http.StatusOK, "add_cafe.html", gin.H{
		"Form": cafe.CreateCafeRequest{},
	})
}

// AddCafe runs behind RequireAuth; the new cafe is attributed to the
// session's user.
func (h *CafesHandler) AddCafe(ctx *gin.Context) {
	var req cafe.CreateCafeRequest

	fieldErrors, ok := BindForm(ctx, &req)

	if !ok {
		h.render.HTML(ctx, http.StatusBadRequest, "add_cafe.html", gin.H{
			"Errors": fieldErrors,
			"Form":   req,
		})
		return
	}

	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_, err := h.repo.Create(cctx, u.ID, req)

	if err != nil {
		if errors.Is(err, cafe.ErrNameTaken) {
			RespondConflict(ctx, "cannot_add_record", "Error adding cafe")
			return
		}

		RespondInternal(ctx, "Could not create cafe")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}
