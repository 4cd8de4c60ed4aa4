package approval

import (
	"go-hrflow/internal/middleware"
	"go-hrflow/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	transitionLimit := middleware.RateLimitByUser(rate.Limit(5), 10)
	canRead := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionRead)
	canCreate := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionCreate)
	canTransition := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionTransition)
	canEdit := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionEdit)

	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		approvals.GET("/chain-preview", canRead, handler.ChainPreview)
		approvals.GET("", canRead, handler.GetAll)
		approvals.GET("/:id", canRead, handler.GetByID)
		approvals.GET("/:id/events", canRead, handler.GetTrail)
		approvals.POST("", canCreate, middleware.Idempotency(rdb), handler.Create)

		approvals.POST("/:id/submit", canTransition, transitionLimit, handler.Submit)
		approvals.POST("/:id/approve", canTransition, transitionLimit, handler.Approve)
		approvals.POST("/:id/reject", canTransition, transitionLimit, handler.Reject)
		approvals.POST("/:id/clarify", canTransition, transitionLimit, handler.RequestClarification)
		approvals.POST("/:id/resubmit", canTransition, transitionLimit, handler.Resubmit)
		approvals.POST("/:id/cancel", canTransition, transitionLimit, handler.Cancel)

		approvals.PUT("/:id", canEdit, transitionLimit, handler.Edit)
		approvals.PUT("/:id/schedule", canEdit, transitionLimit, handler.Edit)
	}

	records := r.Group("/records")
	records.Use(middleware.AuthMiddleware())
	{
		records.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceRecord, rbac.ActionRead), handler.Records)
	}
}
