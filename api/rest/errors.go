package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/achievement"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/badge"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/frame"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/leaderboard"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/quest"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/gin-gonic/gin"
)

// respondError maps a progression error to its HTTP status. Unknown
// errors become 500 and are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, achievement.ErrNotEligible):
		c.JSON(http.StatusConflict, gin.H{"error": "achievement not claimable"})
	case errors.Is(err, badge.ErrAlreadyGranted):
		c.JSON(http.StatusConflict, gin.H{"error": "badge already granted"})
	case errors.Is(err, frame.ErrNotUnlocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "frame not unlocked"})
	case errors.Is(err, leaderboard.ErrUnranked):
		c.JSON(http.StatusNotFound, gin.H{"error": "unranked"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, quest.ErrEmptySubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// paramID parses a positive integer path parameter, writing 400 if it is
// not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
