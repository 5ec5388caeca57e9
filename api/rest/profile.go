package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the caller's progression profile.
type ProfileHandler struct {
	engine *progression.Engine
}

func NewProfileHandler(e *progression.Engine) *ProfileHandler {
	return &ProfileHandler{engine: e}
}

// Me handles GET /api/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	p, err := h.engine.Profile(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
