package rest

import (
	"net/http"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/Regyyyy/gamify-oss-app-sub000/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterDeps bundles what the HTTP surface needs.
type RouterDeps struct {
	Engine    *progression.Engine
	Cache     cache.Cache
	Scheduler *scheduler.Scheduler
	Server    config.ServerConfig
	Security  config.SecurityConfig
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))

	// One limiter for every route. It runs after auth on signed-in routes so
	// a user keeps one bucket whatever address they come from.
	limit := func(c *gin.Context) { c.Next() }
	if d.Security.RateLimitRPS > 0 {
		limit = mw.RateLimit(rate.Limit(d.Security.RateLimitRPS), d.Security.RateLimitBurst)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(d.Engine.Store, d.Cache, d.Security, d.Logger)
	profileH := NewProfileHandler(d.Engine)
	questH := NewQuestHandler(d.Engine)
	achH := NewAchievementHandler(d.Engine)
	frameH := NewFrameHandler(d.Engine)
	rankH := NewRankingHandler(d.Engine)
	adminH := NewAdminHandler(d.Engine, d.Scheduler, d.Logger)

	auth := mw.Auth(d.Security, d.Cache)
	admin := mw.AdminAuth(d.Server.AdminKey, d.Security, d.Cache)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", limit, authH.Login)
		authG.POST("/logout", auth, limit, authH.Logout)
		authG.POST("/refresh", auth, limit, authH.Refresh)

		api.GET("/me", auth, limit, profileH.Me)

		questG := api.Group("/quests", auth, limit)
		questG.GET("", questH.List)
		questG.POST("/:id/take", questH.Take)
		questG.POST("/:id/submit", questH.Submit)

		achG := api.Group("/achievements", auth, limit)
		achG.GET("", achH.List)
		achG.POST("/:id/claim", achH.Claim)

		frameG := api.Group("/frames", auth, limit)
		frameG.GET("", frameH.List)
		frameG.PUT("/active", frameH.SetActive)

		rankG := api.Group("/leaderboard")
		rankG.GET("", limit, rankH.Top)
		rankG.GET("/me", auth, limit, rankH.Me)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(d.Security.AdminIPs), admin, limit)
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/users/:id/badges/:badge", adminH.GrantBadge)
		adminG.POST("/users/:id/xp", adminH.AdjustXP)
		adminG.POST("/leaderboard/refresh", adminH.RefreshLeaderboard)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}
	return r
}
