package service

import (
	"context"
	"math"
	"stem_dashboard/internal/config"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/logger"
	"stem_dashboard/pkg/monitoring"
	"sync"

	"go.uber.org/zap"
)

// HeatmapLayout 热力图容器尺寸 = 父容器宽度 × 比例
type HeatmapLayout struct {
	WidthRatio  float64
	HeightRatio float64
}

func (l HeatmapLayout) Size(parentWidth int) model.HeatmapSize {
	if parentWidth < 0 {
		parentWidth = 0
	}
	w := float64(parentWidth)
	return model.HeatmapSize{
		Width:  int(math.Round(w * l.WidthRatio)),
		Height: int(math.Round(w * l.HeightRatio)),
	}
}

// DashboardService 把选择器、统计请求、图表、提示条串起来。
// 每次选择分配递增的 token，请求完成时 token 不是最新的结果直接丢弃。
type DashboardService struct {
	Selector *RangeSelector
	Fetcher  StatsSource
	Charts   *ChartRenderer
	Banner   *Banner
	Tree     *CourseTree

	publisher ViewPublisher
	layout    HeatmapLayout

	mu          sync.Mutex
	latest      uint64
	applied     uint64
	parentWidth int
	heatmap     model.HeatmapSize

	selectMu sync.Mutex
	inflight sync.WaitGroup

	// 快照与入队必须原子，否则并发时旧快照可能晚于新快照推送
	publishMu sync.Mutex
}

func NewDashboardService(
	cfg *config.Config,
	fetcher StatsSource,
	charts *ChartRenderer,
	banner *Banner,
	tree *CourseTree,
	publisher ViewPublisher,
) *DashboardService {
	d := &DashboardService{
		Fetcher:   fetcher,
		Charts:    charts,
		Banner:    banner,
		Tree:      tree,
		publisher: publisher,
		layout: HeatmapLayout{
			WidthRatio:  cfg.Heatmap.WidthRatio,
			HeightRatio: cfg.Heatmap.HeightRatio,
		},
		parentWidth: cfg.Heatmap.DefaultParentWidth,
	}
	d.heatmap = d.layout.Size(d.parentWidth)
	d.Selector = NewRangeSelector(cfg.Stats.DefaultQuarter, d.refresh)
	return d
}

// Start 以默认学期发起首次请求
func (d *DashboardService) Start(ctx context.Context) {
	sel := d.Selector.Current()
	if sel.Value == "" {
		logger.Log.Info("No default quarter configured, waiting for a selection")
		return
	}
	d.Select(ctx, sel.Kind, sel.Value, sel.Label)
}

// Select 切换时间范围并异步请求数据，返回本次请求的 token
func (d *DashboardService) Select(ctx context.Context, kind model.RangeKind, value, display string) (model.RangeSelection, uint64) {
	d.selectMu.Lock()
	defer d.selectMu.Unlock()

	sel := d.Selector.Select(ctx, kind, value, display)

	d.mu.Lock()
	token := d.latest
	d.mu.Unlock()
	return sel, token
}

// refresh 是 RangeSelector 的回调
func (d *DashboardService) refresh(ctx context.Context, sel model.RangeSelection) {
	d.mu.Lock()
	d.latest++
	token := d.latest
	// 每次请求都重新计算热力图尺寸，与请求结果无关
	d.heatmap = d.layout.Size(d.parentWidth)
	d.mu.Unlock()

	logger.Log.Debug("Range selected",
		zap.String("range", string(sel.Kind)),
		zap.String("value", sel.Value),
		zap.Uint64("token", token))

	d.publish()

	// 请求不随 HTTP 请求结束而取消
	fetchCtx := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		outcome := d.Fetcher.Fetch(fetchCtx, sel.Kind, sel.Value)
		d.complete(token, sel, outcome)
	}()
}

func (d *DashboardService) complete(token uint64, sel model.RangeSelection, outcome model.FetchOutcome) {
	d.mu.Lock()
	if token != d.latest {
		latest := d.latest
		d.mu.Unlock()
		monitoring.StaleResultCounter.Inc()
		logger.Log.Debug("Discarding superseded stats result",
			zap.String("range", string(sel.Kind)),
			zap.String("value", sel.Value),
			zap.Uint64("token", token),
			zap.Uint64("latest", latest))
		return
	}

	if outcome.OK() {
		d.Charts.Apply(outcome.Demand, outcome.WaitTime)
		d.Banner.Hide()
	} else {
		d.Banner.Show(outcome.Err.Error())
	}
	d.applied = token
	d.mu.Unlock()

	d.publish()
}

// Resize 父容器宽度变化时重新计算热力图尺寸
func (d *DashboardService) Resize(parentWidth int) model.HeatmapSize {
	d.mu.Lock()
	d.parentWidth = parentWidth
	d.heatmap = d.layout.Size(parentWidth)
	size := d.heatmap
	d.mu.Unlock()

	d.publish()
	return size
}

// Wait 等待所有进行中的请求完成
func (d *DashboardService) Wait() {
	d.inflight.Wait()
}

func (d *DashboardService) View() model.ViewState {
	sel := d.Selector.Current()

	d.mu.Lock()
	token, applied, heatmap := d.latest, d.applied, d.heatmap
	demand, _ := d.Charts.Dataset(ChartDemand)
	waitTime, _ := d.Charts.Dataset(ChartWaitTime)
	revision := d.Charts.Revision()
	d.mu.Unlock()

	return model.ViewState{
		Title:     PageTitle(sel),
		Selection: sel,
		Interval:  sel.Kind.Interval(),
		Pickers:   model.VisibilityFor(sel.Kind),
		Demand:    demand,
		WaitTime:  waitTime,
		Revision:  revision,
		Banner:    d.Banner.State(),
		Heatmap:   heatmap,
		Token:     token,
		Pending:   applied != token,
	}
}

func (d *DashboardService) publish() {
	if d.publisher == nil {
		return
	}
	d.publishMu.Lock()
	defer d.publishMu.Unlock()
	d.publisher.PublishView(d.View())
}

func PageTitle(sel model.RangeSelection) string {
	if sel.Label == "" {
		return util.PageTitlePrefix
	}
	return util.PageTitlePrefix + " | " + sel.Label
}
