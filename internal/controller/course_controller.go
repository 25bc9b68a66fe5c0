package controller

import (
	"errors"
	"net/http"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/service"
	"stem_dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Tree *service.CourseTree
}

func NewCourseController(tree *service.CourseTree) *CourseController {
	return &CourseController{Tree: tree}
}

type courseNodeResponse struct {
	model.CourseNode
	Arrow string `json:"arrow"`
}

func toNodeResponse(n model.CourseNode) courseNodeResponse {
	return courseNodeResponse{CourseNode: n, Arrow: n.Arrow()}
}

// @Summary 课程选择树
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) GetTree(ctx *gin.Context) {
	if !c.Tree.Loaded() {
		util.ServiceUnavailable(ctx, util.ErrCatalogNotLoaded.Error())
		return
	}
	nodes := c.Tree.Nodes()
	resp := make([]courseNodeResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = toNodeResponse(n)
	}
	util.Success(ctx, resp)
}

type clickRequest struct {
	Subject string            `json:"subject" binding:"required"`
	Course  string            `json:"course"`
	Target  model.ClickTarget `json:"target" binding:"required,oneof=row checkbox"`
}

// @Summary 点击课程树
// @Description target=row 切换展开；target=checkbox 只切换勾选。带 course 时切换课程勾选。
// @Tags 课程
// @Accept json
// @Produce json
// @Param body body clickRequest true "点击目标"
// @Success 200 {object} util.Response
// @Router /api/courses/click [post]
func (c *CourseController) Click(ctx *gin.Context) {
	var req clickRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Course != "" {
		leaf, err := c.Tree.ClickCourse(req.Subject, req.Course)
		if err != nil {
			respondTreeError(ctx, err)
			return
		}
		util.Success(ctx, leaf)
		return
	}

	node, err := c.Tree.Click(req.Subject, req.Target)
	if err != nil {
		respondTreeError(ctx, err)
		return
	}
	util.Success(ctx, toNodeResponse(node))
}

func respondTreeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSubjectNotFound), errors.Is(err, util.ErrCourseNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrUnknownClickTarget):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
