package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/handler"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

type RouterConfig struct {
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, services *service.Services, stores *store.Stores, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		taskHandler := handler.NewTaskHandler(services.Tasks)
		TaskRouter(v1.Group("/tasks"), taskHandler)

		issueHandler := handler.NewIssueHandler(services.Issues, services.Recommend, stores.Timeline(), stores.Reports())
		IssueRouter(v1.Group("/issues"), issueHandler)

		notificationHandler := handler.NewNotificationHandler(stores.Notifications())
		NotificationRouter(v1.Group("/users/:userID/notifications"), notificationHandler)
	}

	adminHandler := handler.NewAdminHandler(services.Escalation, services.Priority, services.Reopen)
	admin := router.Group("/admin", adminKeyAuth(cfg.AdminAPIKey))
	AdminRouter(admin, adminHandler)
}

// adminKeyAuth guards the admin routes with a shared API key. Auth proper
// lives at the platform edge; this only keeps sweep triggers off the open
// internet.
func adminKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || c.GetHeader("X-Admin-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
