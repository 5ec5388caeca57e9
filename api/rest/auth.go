package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthHandler handles authentication REST endpoints.
type AuthHandler struct {
	store  *store.Store
	cache  cache.Cache
	sec    config.SecurityConfig
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st *store.Store, c cache.Cache, sec config.SecurityConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: st, cache: c, sec: sec, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Password string `json:"password" binding:"required,min=4,max=64"`
	Name     string `json:"name" binding:"max=64"`
}

// Login handles POST /api/auth/login.
// Auto-registers a member on first login if the username does not exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	u, err := h.store.GetUserByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		name := req.Name
		if name == "" {
			name = req.Username
		}
		u = &model.User{
			Username:     req.Username,
			Name:         name,
			PasswordHash: string(hash),
			Role:         model.RoleMember,
			Level:        1,
		}
		if createErr := h.store.CreateUser(ctx, u); createErr != nil {
			// Unique constraint violation: another request registered same name.
			if isUniqueViolation(createErr) {
				c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			}
			return
		}
		h.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
	}

	token, err := h.issue(c.Request.Context(), u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": u.ID,
		"role":    u.Role,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenStr, ok := mw.BearerToken(c)
	if !ok || tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, mw.SessionKey(tokenStr))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID := mw.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Invalidate old token
	if old, ok := mw.BearerToken(c); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		_ = h.cache.Del(ctx, mw.SessionKey(old))
		cancel()
	}

	newToken, err := h.issue(c.Request.Context(), userID, mw.GetRole(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": newToken})
}

// issue signs a token and stores its session so Auth accepts it.
func (h *AuthHandler) issue(ctx context.Context, userID int64, role string) (string, error) {
	token, err := mw.GenerateToken(userID, role, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, mw.SessionKey(token), strconv.FormatInt(userID, 10), h.sec.JWTTTLH); err != nil {
		return "", err
	}
	return token, nil
}
