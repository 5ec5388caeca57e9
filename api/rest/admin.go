package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/Regyyyy/gamify-oss-app-sub000/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by the AdminAuth middleware.
type AdminHandler struct {
	engine *progression.Engine
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(e *progression.Engine, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{engine: e, sched: sched, logger: logger}
}

// actor returns the acting admin's user id, or nil when the request was
// admitted by admin key.
func actor(c *gin.Context) *int64 {
	if id := mw.GetUserID(c); id != 0 {
		return &id
	}
	return nil
}

// Metrics returns progression totals and scheduler state.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	totals, err := h.engine.Store.Totals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":           totals.Users,
		"ranked_users":    totals.Ranked,
		"total_xp":        totals.TotalXP,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// GrantBadge awards a badge to a user.
// POST /api/admin/users/:id/badges/:badge
func (h *AdminHandler) GrantBadge(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	badgeID, ok := paramID(c, "badge")
	if !ok {
		return
	}
	b, err := h.engine.Badges.Grant(c.Request.Context(), userID, badgeID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": userID, "badge": b})
}

type adjustXPRequest struct {
	Amount *int64 `json:"amount" binding:"required,min=0"`
}

// AdjustXP grants a non-negative XP amount to a user through the ledger.
// POST /api/admin/users/:id/xp
func (h *AdminHandler) AdjustXP(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req adjustXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var actorID int64
	if a := actor(c); a != nil {
		actorID = *a
	}
	res, err := h.engine.GrantXP(c.Request.Context(), userID, *req.Amount, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("admin xp adjustment",
		zap.Int64("user_id", userID),
		zap.Int64("amount", *req.Amount),
		zap.Int64("actor_id", actorID))
	c.JSON(http.StatusOK, res)
}

// RefreshLeaderboard rebuilds the cached leaderboard and reruns the podium
// check.
// POST /api/admin/leaderboard/refresh
func (h *AdminHandler) RefreshLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.engine.Board.Refresh(ctx); err != nil {
		respondError(c, err)
		return
	}
	if err := h.engine.Board.PodiumCheck(ctx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListSchedulerTasks returns all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}
