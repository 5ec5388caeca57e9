package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// AchievementHandler lists and claims achievements.
type AchievementHandler struct {
	engine *progression.Engine
}

func NewAchievementHandler(e *progression.Engine) *AchievementHandler {
	return &AchievementHandler{engine: e}
}

// List handles GET /api/achievements.
func (h *AchievementHandler) List(c *gin.Context) {
	awards, err := h.engine.Awards.List(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": awards})
}

// Claim handles POST /api/achievements/:id/claim.
// 409 if the award is not in completed state, 404 if the achievement does
// not exist.
func (h *AchievementHandler) Claim(c *gin.Context) {
	achID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.OnClaimRequested(c.Request.Context(), mw.GetUserID(c), achID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
