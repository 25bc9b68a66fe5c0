package service

import (
	"fmt"
	"io"
	"math"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	ChartDemand   = "demand"
	ChartWaitTime = "wait_time"

	defaultChartWidth  = 720
	defaultChartHeight = 360
)

type chartSurface struct {
	title string
	yName string
	color drawing.Color
	data  model.ChartDataset
}

// ChartRenderer 持有两个常驻图表（需求量、等待时间），启动时创建，之后只通过 Apply 替换数据。
type ChartRenderer struct {
	mu       sync.RWMutex
	surfaces map[string]*chartSurface
	revision uint64
	width    int
	height   int
}

func NewChartRenderer(width, height int) *ChartRenderer {
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	return &ChartRenderer{
		surfaces: map[string]*chartSurface{
			ChartDemand: {
				title: "Tutoring Requests",
				yName: "Requests",
				color: drawing.ColorFromHex("3b82f6"),
				data:  model.NewChartDataset(),
			},
			ChartWaitTime: {
				title: "Average Wait Time",
				yName: "Minutes",
				color: drawing.ColorFromHex("f59e0b"),
				data:  model.NewChartDataset(),
			},
		},
		width:  width,
		height: height,
	}
}

// Apply 整体替换两个图表的数据（不合并），并递增修订号触发重绘
func (r *ChartRenderer) Apply(demand, waitTime model.ChartDataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[ChartDemand].data = demand.Clone()
	r.surfaces[ChartWaitTime].data = waitTime.Clone()
	r.revision++
}

func (r *ChartRenderer) Dataset(name string) (model.ChartDataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[name]
	if !ok {
		return model.ChartDataset{}, fmt.Errorf("%w: %q", util.ErrUnknownChart, name)
	}
	return s.data.Clone(), nil
}

func (r *ChartRenderer) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// RenderSVG 将图表当前数据画成柱状图，interval 用作 X 轴名称
func (r *ChartRenderer) RenderSVG(w io.Writer, name, interval string) error {
	r.mu.RLock()
	s, ok := r.surfaces[name]
	if !ok {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %q", util.ErrUnknownChart, name)
	}
	title, yName, color := s.title, s.yName, s.color
	data := s.data.Clone()
	width, height := r.width, r.height
	r.mu.RUnlock()

	if data.Len() == 0 {
		return writeEmptyChart(w, title, width, height)
	}

	bars := make([]chart.Value, data.Len())
	maxValue, minValue := 1.0, 0.0
	for i, label := range data.Labels {
		v := data.Values[i]
		bars[i] = chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
		maxValue = math.Max(maxValue, v)
		minValue = math.Min(minValue, v)
	}

	barWidth := (width - 120) / (2 * data.Len())
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 60 {
		barWidth = 60
	}

	if interval != "" {
		title = fmt.Sprintf("%s per %s", title, interval)
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: minValue, Max: maxValue * 1.1},
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

func writeEmptyChart(w io.Writer, title string, width, height int) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="50%%" y="50%%" text-anchor="middle" fill="#8b949e" font-family="sans-serif" font-size="14">%s: no data</text></svg>`,
		width, height, title)
	return err
}
