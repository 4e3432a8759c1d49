package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PagesHandler struct {
	render *PageRenderer
}

func NewPagesHandler(render *PageRenderer) *PagesHandler {
	return &PagesHandler{render: render}
}

func (h *PagesHandler) About(ctx *gin.Context) {
	h.render.HTML(ctx, http.StatusOK, "about.html", gin.H{})
}

func (h *PagesHandler) Blog(ctx *gin.Context) {
	h.render.HTML(ctx, http.StatusOK, "blog.html", gin.H{})
}
