package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// QuestHandler handles quest catalog, take and submit endpoints.
type QuestHandler struct {
	engine *progression.Engine
}

func NewQuestHandler(e *progression.Engine) *QuestHandler {
	return &QuestHandler{engine: e}
}

// List handles GET /api/quests.
func (h *QuestHandler) List(c *gin.Context) {
	quests, err := h.engine.Quests.List(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

// Take handles POST /api/quests/:id/take.
func (h *QuestHandler) Take(c *gin.Context) {
	questID, ok := paramID(c, "id")
	if !ok {
		return
	}
	created, err := h.engine.Quests.Take(c.Request.Context(), mw.GetUserID(c), questID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"quest_id": questID, "taken": true})
}

type submitRequest struct {
	Images []string `json:"images" binding:"required,min=1,max=10,dive,required,max=255"`
}

// Submit handles POST /api/quests/:id/submit. The images are references to
// files already stored by the upload service.
func (h *QuestHandler) Submit(c *gin.Context) {
	questID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.engine.Quests.Submit(c.Request.Context(), mw.GetUserID(c), questID, req.Images)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
