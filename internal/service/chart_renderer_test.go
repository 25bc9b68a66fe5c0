package service

import (
	"bytes"
	"errors"
	"testing"

	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRendererApplyReplacesData(t *testing.T) {
	r := NewChartRenderer(0, 0)
	assert.Equal(t, uint64(0), r.Revision())

	r.Apply(dataset("Week 1", 1.0, "Week 2", 2.0), dataset("Week 1", 3.0, "Week 2", 4.0))
	r.Apply(dataset("9", 5.0), dataset("9", 6.0))

	demand, err := r.Dataset(ChartDemand)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, demand.Labels)
	assert.Equal(t, []float64{5}, demand.Values)

	waitTime, err := r.Dataset(ChartWaitTime)
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, waitTime.Values)
	assert.Equal(t, uint64(2), r.Revision())
}

func TestChartRendererApplyCopiesInput(t *testing.T) {
	r := NewChartRenderer(0, 0)
	in := dataset("a", 1.0)
	r.Apply(in, in)
	in.Values[0] = 42

	demand, _ := r.Dataset(ChartDemand)
	assert.Equal(t, []float64{1}, demand.Values)
}

func TestChartRendererUnknownChart(t *testing.T) {
	r := NewChartRenderer(0, 0)
	_, err := r.Dataset("heatmap")
	assert.True(t, errors.Is(err, util.ErrUnknownChart))

	var buf bytes.Buffer
	err = r.RenderSVG(&buf, "heatmap", "week")
	assert.True(t, errors.Is(err, util.ErrUnknownChart))
	assert.Zero(t, buf.Len())
}

func TestChartRendererRenderSVG(t *testing.T) {
	r := NewChartRenderer(640, 320)

	var empty bytes.Buffer
	require.NoError(t, r.RenderSVG(&empty, ChartDemand, "week"))
	assert.Contains(t, empty.String(), "<svg")
	assert.Contains(t, empty.String(), "no data")

	r.Apply(dataset("Week 1", 12.0, "Week 2", 30.0, "Week 3", 41.0), dataset("Week 1", 2.0, "Week 2", 6.25, "Week 3", 9.5))

	for _, name := range []string{ChartDemand, ChartWaitTime} {
		var buf bytes.Buffer
		require.NoError(t, r.RenderSVG(&buf, name, "week"), name)
		assert.Contains(t, buf.String(), "<svg", name)
		assert.Contains(t, buf.String(), "Week 2", name)
	}
}

func TestChartRendererRenderAllZero(t *testing.T) {
	r := NewChartRenderer(0, 0)
	r.Apply(dataset("9", 0.0, "10", 0.0), model.NewChartDataset())

	var buf bytes.Buffer
	require.NoError(t, r.RenderSVG(&buf, ChartDemand, "hour"))
	assert.Contains(t, buf.String(), "<svg")
}
