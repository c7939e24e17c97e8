package router

import (
	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/handler"
)

func AdminRouter(router *gin.RouterGroup, handler *handler.AdminHandler) {
	router.POST("/sweeps/escalation", handler.RunEscalation)
	router.POST("/sweeps/priority", handler.RunPriority)
	router.POST("/sweeps/reopen", handler.RunReopen)
}
