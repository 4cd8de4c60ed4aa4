package probation

import (
	"go-hrflow/internal/middleware"
	"go-hrflow/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	canRead := middleware.RBACAuthorize(rbacService, rbac.ResourceProbation, rbac.ActionRead)

	probation := r.Group("/probation")
	probation.Use(middleware.AuthMiddleware())
	{
		probation.GET("/windows", canRead, handler.ListWindows)
		probation.GET("/window", canRead, handler.Window)
	}
}
