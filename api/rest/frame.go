package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// FrameHandler lists and equips avatar frames.
type FrameHandler struct {
	engine *progression.Engine
}

func NewFrameHandler(e *progression.Engine) *FrameHandler {
	return &FrameHandler{engine: e}
}

// List handles GET /api/frames.
func (h *FrameHandler) List(c *gin.Context) {
	frames, err := h.engine.Frames.List(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"frames": frames})
}

type setFrameRequest struct {
	FrameID int64 `json:"frame_id" binding:"required,min=1"`
}

// SetActive handles PUT /api/frames/active. 403 if the frame is not unlocked.
func (h *FrameHandler) SetActive(c *gin.Context) {
	var req setFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.Frames.SetActive(c.Request.Context(), mw.GetUserID(c), req.FrameID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_frame": req.FrameID})
}
