package service

import (
	"stem_dashboard/internal/model"
	"sync"
)

// Banner 页面顶部的错误提示
type Banner struct {
	mu    sync.RWMutex
	state model.BannerState
}

func NewBanner() *Banner {
	return &Banner{}
}

func (b *Banner) Show(diagnostic string) {
	b.mu.Lock()
	b.state = model.BannerState{Text: diagnostic, Visible: true}
	b.mu.Unlock()
}

// Hide 只清除可见标记，文本保留
func (b *Banner) Hide() {
	b.mu.Lock()
	b.state.Visible = false
	b.mu.Unlock()
}

func (b *Banner) State() model.BannerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}
