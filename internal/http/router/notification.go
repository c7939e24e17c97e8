package router

import (
	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/handler"
)

func NotificationRouter(router *gin.RouterGroup, handler *handler.NotificationHandler) {
	router.GET("", handler.List)
	router.POST("/:id/read", handler.MarkRead)
}
