package router

import (
	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/handler"
)

func TaskRouter(router *gin.RouterGroup, handler *handler.TaskHandler) {
	router.POST("", handler.Assign)
	router.POST("/:id/updates", handler.SubmitUpdate)
	router.POST("/:id/proof", handler.SubmitProof)
	router.POST("/:id/review", handler.Review)
	router.POST("/:id/reassign", handler.Reassign)
	router.POST("/:id/complete", handler.Complete)
}
