package controller

import (
	"stem_dashboard/internal/service"
	"stem_dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Tree *service.CourseTree
	Hub  *service.ViewHub
}

func NewHealthController(tree *service.CourseTree, hub *service.ViewHub) *HealthController {
	return &HealthController{Tree: tree, Hub: hub}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	catalog := "up"
	if !c.Tree.Loaded() {
		catalog = "down"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"catalog": catalog,
		},
		"subscribers": c.Hub.Count(),
	})
}
