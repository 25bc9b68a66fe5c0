package service

import (
	"context"
	"stem_dashboard/internal/model"
	"sync"
)

// RangeSelector 维护 day/week/quarter 三选一的状态，每次选择后回调 onSelect 发起请求
type RangeSelector struct {
	mu        sync.RWMutex
	selection model.RangeSelection
	onSelect  func(context.Context, model.RangeSelection)
}

// NewRangeSelector 初始为 Quarter 模式
func NewRangeSelector(defaultQuarter string, onSelect func(context.Context, model.RangeSelection)) *RangeSelector {
	return &RangeSelector{
		selection: model.RangeSelection{
			Kind:  model.RangeQuarter,
			Value: defaultQuarter,
			Label: defaultQuarter,
		},
		onSelect: onSelect,
	}
}

func (s *RangeSelector) SelectDay(ctx context.Context, value, display string) model.RangeSelection {
	return s.apply(ctx, model.RangeDay, value, labelOr(display, value))
}

func (s *RangeSelector) SelectWeek(ctx context.Context, value, display string) model.RangeSelection {
	return s.apply(ctx, model.RangeWeek, value, labelOr(display, value))
}

// SelectQuarter quarter 的标签就是值本身
func (s *RangeSelector) SelectQuarter(ctx context.Context, value string) model.RangeSelection {
	return s.apply(ctx, model.RangeQuarter, value, value)
}

func (s *RangeSelector) Select(ctx context.Context, kind model.RangeKind, value, display string) model.RangeSelection {
	switch kind {
	case model.RangeDay:
		return s.SelectDay(ctx, value, display)
	case model.RangeWeek:
		return s.SelectWeek(ctx, value, display)
	default:
		return s.SelectQuarter(ctx, value)
	}
}

func (s *RangeSelector) apply(ctx context.Context, kind model.RangeKind, value, label string) model.RangeSelection {
	sel := model.RangeSelection{Kind: kind, Value: value, Label: label}

	s.mu.Lock()
	s.selection = sel
	s.mu.Unlock()

	if s.onSelect != nil {
		s.onSelect(ctx, sel)
	}
	return sel
}

func (s *RangeSelector) Current() model.RangeSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *RangeSelector) Pickers() model.PickerVisibility {
	return model.VisibilityFor(s.Current().Kind)
}

func labelOr(display, value string) string {
	if display != "" {
		return display
	}
	return value
}
