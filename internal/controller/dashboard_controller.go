package controller

import (
	"bytes"
	"errors"
	"net/http"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/service"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	ExportService    *service.ExportService
	Hub              *service.ViewHub
}

func NewDashboardController(dashboardService *service.DashboardService, exportService *service.ExportService, hub *service.ViewHub) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		ExportService:    exportService,
		Hub:              hub,
	}
}

type pageData struct {
	View  model.ViewState
	Nodes []model.CourseNode
}

// Index 渲染仪表盘页面
func (c *DashboardController) Index(ctx *gin.Context) {
	data := pageData{
		View:  c.DashboardService.View(),
		Nodes: c.DashboardService.Tree.Nodes(),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// @Summary 获取当前视图
// @Description 当前选择的时间范围、两个图表的数据、错误提示与热力图尺寸
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/view [get]
func (c *DashboardController) GetView(ctx *gin.Context) {
	util.Success(ctx, c.DashboardService.View())
}

// selectRangeRequest value 不做校验，空字符串也原样转发给统计接口
type selectRangeRequest struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// @Summary 切换时间范围
// @Description 选择 day/week/quarter 并异步请求统计数据，结果通过 /api/ws 推送
// @Tags 仪表盘
// @Accept json
// @Produce json
// @Param kind path string true "时间范围" Enums(day, week, quarter)
// @Param body body selectRangeRequest true "取值与显示标签"
// @Success 202 {object} util.Response
// @Router /api/range/{kind} [post]
func (c *DashboardController) SelectRange(ctx *gin.Context) {
	kind, err := model.ParseRangeKind(ctx.Param("kind"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var req selectRangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sel, token := c.DashboardService.Select(ctx.Request.Context(), kind, req.Value, req.Label)
	util.Accepted(ctx, gin.H{
		"selection": sel,
		"token":     token,
	})
}

type layoutRequest struct {
	ParentWidth int `json:"parent_width" binding:"required,gt=0"`
}

// @Summary 上报热力图父容器宽度
// @Tags 仪表盘
// @Accept json
// @Produce json
// @Param body body layoutRequest true "父容器宽度(px)"
// @Success 200 {object} util.Response
// @Router /api/layout [post]
func (c *DashboardController) Resize(ctx *gin.Context) {
	var req layoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.DashboardService.Resize(req.ParentWidth))
}

// @Summary 图表 SVG
// @Tags 仪表盘
// @Produce image/svg+xml
// @Param name path string true "图表名" Enums(demand.svg, wait_time.svg)
// @Success 200
// @Router /api/charts/{name} [get]
func (c *DashboardController) GetChart(ctx *gin.Context) {
	name := strings.TrimSuffix(ctx.Param("name"), ".svg")
	view := c.DashboardService.View()

	var buf bytes.Buffer
	if err := c.DashboardService.Charts.RenderSVG(&buf, name, view.Interval); err != nil {
		if errors.Is(err, util.ErrUnknownChart) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, util.MimeSVG, buf.Bytes())
}

// @Summary 导出当前图表数据
// @Tags 仪表盘
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /api/export.xlsx [get]
func (c *DashboardController) Export(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.ExportService.WriteWorkbook(&buf); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+c.ExportService.Filename()+`"`)
	ctx.Data(http.StatusOK, util.MimeXLSX, buf.Bytes())
}

// Subscribe 视图变更推送
func (c *DashboardController) Subscribe(ctx *gin.Context) {
	if err := c.Hub.Serve(ctx.Writer, ctx.Request, c.DashboardService.View()); err != nil {
		logger.Log.Warn("View websocket upgrade failed", zap.Error(err))
	}
}
