package router

import (
	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/handler"
)

func IssueRouter(router *gin.RouterGroup, handler *handler.IssueHandler) {
	router.POST("/:id/take-up", handler.TakeUp)
	router.POST("/:id/staff", handler.AssignStaff)
	router.POST("/:id/resolve", handler.Resolve)
	router.GET("/:id/recommendations", handler.Recommendations)
	router.GET("/:id/timeline", handler.Timeline)
	router.GET("/:id/report", handler.Report)
}
