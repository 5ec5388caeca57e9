package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey      = "user_id"
	RoleKey        = "role"
	AdminKeyHeader = "X-Admin-Key"
)

// SessionKey is the cache key marking a token as logged in.
func SessionKey(token string) string { return "session:" + token }

// BearerToken extracts the token from an Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// Auth validates the Bearer JWT token and checks the session cache.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if status, msg := authenticate(ctx, sec, c); status != 0 {
			ctx.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		ctx.Next()
	}
}

// AdminAuth admits requests carrying the configured admin key, or a valid
// session whose user has the admin role.
func AdminAuth(adminKey string, sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if key := ctx.GetHeader(AdminKeyHeader); adminKey != "" && key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin key"})
				return
			}
			ctx.Set(RoleKey, model.RoleAdmin)
			ctx.Next()
			return
		}
		if status, msg := authenticate(ctx, sec, c); status != 0 {
			ctx.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		if GetRole(ctx) != model.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, sec config.SecurityConfig, c cache.Cache) (int, string) {
	tokenStr, ok := BearerToken(ctx)
	if !ok {
		return http.StatusUnauthorized, "missing token"
	}
	claims, err := ParseToken(tokenStr, sec.JWTSecret)
	if err != nil {
		return http.StatusUnauthorized, "invalid token"
	}

	// Check session still valid in cache.
	cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	exists, err := c.Exists(cacheCtx, SessionKey(tokenStr))
	if err != nil || !exists {
		return http.StatusUnauthorized, "session expired"
	}

	ctx.Set(UserIDKey, claims.UserID)
	ctx.Set(RoleKey, claims.Role)
	return 0, ""
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(int64)
	}
	return 0
}

// GetRole retrieves the authenticated role from the Gin context.
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(RoleKey); exists {
		return v.(string)
	}
	return ""
}
