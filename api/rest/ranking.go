package rest

import (
	"net/http"
	"strconv"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/gin-gonic/gin"
)

// RankingHandler handles leaderboard REST endpoints.
type RankingHandler struct {
	engine *progression.Engine
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(e *progression.Engine) *RankingHandler {
	return &RankingHandler{engine: e}
}

const defaultRankingLimit = 20

// Top returns the highest-XP users.
// GET /api/leaderboard?limit=20
func (h *RankingHandler) Top(c *gin.Context) {
	limit := defaultRankingLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	board, err := h.engine.Board.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": board})
}

// Me returns the caller's live rank.
// GET /api/leaderboard/me
func (h *RankingHandler) Me(c *gin.Context) {
	rank, err := h.engine.Board.RankOf(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank})
}
