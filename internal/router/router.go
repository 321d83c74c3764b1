package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pillarlog/internal/db"
	"github.com/pillarlog/internal/handler"
)

// requestID 为每个请求分配 X-Request-ID，客户端已带则透传
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Setup 配置 Gin 引擎和路由
func Setup(sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("pillarlog_session", store))
	r.Use(requestID())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	a := handler.NewAPI(db.DB)

	api := r.Group("/api")
	{
		api.POST("/progress/:id", a.LogProgress)
		api.GET("/progress/:id", a.ListProgress)
		api.GET("/progress/:id/summary", a.GetProgressSummary)
		api.GET("/progress/:id/streaks", a.GetStreaks)
		api.DELETE("/progress/entries/:id", a.DeleteProgressEntry)

		api.GET("/trackables", a.ListTrackables)
		api.POST("/trackables", a.CreateTrackable)
		api.GET("/trackables/:id", a.GetTrackable)
		api.PUT("/trackables/:id", a.UpdateTrackable)
		api.DELETE("/trackables/:id", a.HardDeleteTrackable)
		api.POST("/trackables/:id/archive", a.ArchiveTrackable)
		api.POST("/trackables/:id/restore", a.RestoreTrackable)

		api.GET("/active-set", a.GetActiveSet)
		api.POST("/active-set/resolve/:id", a.ResolveActiveSetMember)

		api.GET("/pillars", a.ListPillars)
		api.POST("/pillars", a.CreatePillar)
		api.GET("/categories", a.ListCategories)
		api.POST("/categories", a.CreateCategory)

		api.GET("/settings", a.GetSettings)
		api.PUT("/settings", a.UpdateSettings)
	}

	return r
}
