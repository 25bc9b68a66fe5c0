package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stem_dashboard/internal/config"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfigRunsCallbacksInOrder(t *testing.T) {
	a := &App{Config: &config.Config{}}

	var calls []string
	a.RegisterConfigCallback(func(cfg *config.Config) { calls = append(calls, "first:"+cfg.Stats.BaseURL) })
	a.RegisterConfigCallback(func(cfg *config.Config) { calls = append(calls, "second:"+cfg.Stats.BaseURL) })

	next := &config.Config{Stats: config.StatsConfig{BaseURL: "http://new/"}}
	a.applyConfig(next)

	assert.Equal(t, []string{"first:http://new/", "second:http://new/"}, calls)
	assert.Same(t, next, a.Config)
}

func TestStatsEndpointReloaderRetargetsFetcher(t *testing.T) {
	hits := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- r.URL.Query().Get("courses")
		w.Write([]byte(`{"num_requests": {"Week 1": 1}, "wait_time": {"Week 1": 2}}`))
	}))
	defer server.Close()

	fetcher := service.NewStatsFetcher(&config.StatsConfig{BaseURL: "http://127.0.0.1:1/", Courses: "all"})
	a := &App{Config: &config.Config{}}
	a.RegisterConfigCallback(statsEndpointReloader(fetcher))

	a.applyConfig(&config.Config{Stats: config.StatsConfig{BaseURL: server.URL + "/", Courses: "all"}})

	outcome := fetcher.Fetch(context.Background(), model.RangeQuarter, "Fall 2013")
	require.True(t, outcome.OK(), "%v", outcome.Err)
	assert.Equal(t, "all", <-hits)
	assert.Equal(t, []string{"Week 1"}, outcome.Demand.Labels)
}
