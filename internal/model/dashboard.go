package model

import (
	"fmt"
	"stem_dashboard/internal/util"
	"strings"
)

// RangeKind 统计时间范围
type RangeKind string

const (
	RangeDay     RangeKind = "day"
	RangeWeek    RangeKind = "week"
	RangeQuarter RangeKind = "quarter"
)

// 三个时间选择控件的 DOM id
const (
	DayPickerID     = "day-picker"
	WeekPickerID    = "week-picker"
	QuarterPickerID = "quarter-picker"
)

var rangeIntervals = map[RangeKind]string{
	RangeDay:     "hour",
	RangeWeek:    "day",
	RangeQuarter: "week",
}

func ParseRangeKind(s string) (RangeKind, error) {
	switch k := RangeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RangeDay, RangeWeek, RangeQuarter:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", util.ErrUnknownRange, s)
}

// Interval 返回该范围下统计桶的粒度（day 按小时，week 按天，quarter 按周）
func (k RangeKind) Interval() string {
	return rangeIntervals[k]
}

func (k RangeKind) PickerID() string {
	switch k {
	case RangeDay:
		return DayPickerID
	case RangeWeek:
		return WeekPickerID
	default:
		return QuarterPickerID
	}
}

type RangeSelection struct {
	Kind  RangeKind `json:"kind"`
	Value string    `json:"value"`
	Label string    `json:"label"`
}

// PickerVisibility 三个控件中只有一个可见
type PickerVisibility struct {
	Day     bool `json:"day"`
	Week    bool `json:"week"`
	Quarter bool `json:"quarter"`
}

func VisibilityFor(kind RangeKind) PickerVisibility {
	return PickerVisibility{
		Day:     kind == RangeDay,
		Week:    kind == RangeWeek,
		Quarter: kind == RangeQuarter,
	}
}

func (v PickerVisibility) VisibleCount() int {
	n := 0
	for _, b := range []bool{v.Day, v.Week, v.Quarter} {
		if b {
			n++
		}
	}
	return n
}

// ChartDataset Labels 与 Values 一一对应
type ChartDataset struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func NewChartDataset() ChartDataset {
	return ChartDataset{Labels: []string{}, Values: []float64{}}
}

func (d ChartDataset) Len() int {
	return len(d.Labels)
}

func (d *ChartDataset) Append(label string, value float64) {
	d.Labels = append(d.Labels, label)
	d.Values = append(d.Values, value)
}

func (d ChartDataset) Clone() ChartDataset {
	c := ChartDataset{
		Labels: make([]string, len(d.Labels)),
		Values: make([]float64, len(d.Values)),
	}
	copy(c.Labels, d.Labels)
	copy(c.Values, d.Values)
	return c
}

// FetchOutcome 一次统计请求的结果，Err 非空时 Demand/WaitTime 无意义
type FetchOutcome struct {
	Demand   ChartDataset
	WaitTime ChartDataset
	Err      error
}

func (o FetchOutcome) OK() bool {
	return o.Err == nil
}

type HeatmapSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type BannerState struct {
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// ViewState 页面当前状态快照
type ViewState struct {
	Title     string           `json:"title"`
	Selection RangeSelection   `json:"selection"`
	Interval  string           `json:"interval"`
	Pickers   PickerVisibility `json:"pickers"`
	Demand    ChartDataset     `json:"demand"`
	WaitTime  ChartDataset     `json:"waitTime"`
	Revision  uint64           `json:"revision"`
	Banner    BannerState      `json:"banner"`
	Heatmap   HeatmapSize      `json:"heatmap"`
	Token     uint64           `json:"token"`
	Pending   bool             `json:"pending"`
}
