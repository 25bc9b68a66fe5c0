package model

import (
	"errors"
	"testing"

	"stem_dashboard/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeKind(t *testing.T) {
	cases := map[string]RangeKind{
		"day":     RangeDay,
		"week":    RangeWeek,
		"quarter": RangeQuarter,
		" Week ":  RangeWeek,
		"QUARTER": RangeQuarter,
	}
	for in, want := range cases {
		got, err := ParseRangeKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRangeKind("month")
	assert.True(t, errors.Is(err, util.ErrUnknownRange))
}

func TestRangeKindInterval(t *testing.T) {
	assert.Equal(t, "hour", RangeDay.Interval())
	assert.Equal(t, "day", RangeWeek.Interval())
	assert.Equal(t, "week", RangeQuarter.Interval())
	assert.Equal(t, "", RangeKind("month").Interval())
}

func TestVisibilityForShowsExactlyOnePicker(t *testing.T) {
	for _, kind := range []RangeKind{RangeDay, RangeWeek, RangeQuarter} {
		v := VisibilityFor(kind)
		assert.Equal(t, 1, v.VisibleCount(), kind)
	}
	assert.True(t, VisibilityFor(RangeDay).Day)
	assert.True(t, VisibilityFor(RangeWeek).Week)
	assert.True(t, VisibilityFor(RangeQuarter).Quarter)

	assert.Equal(t, DayPickerID, RangeDay.PickerID())
	assert.Equal(t, WeekPickerID, RangeWeek.PickerID())
	assert.Equal(t, QuarterPickerID, RangeQuarter.PickerID())
}

func TestChartDatasetClone(t *testing.T) {
	ds := NewChartDataset()
	ds.Append("Week 1", 10)
	ds.Append("Week 2", 12)

	c := ds.Clone()
	c.Values[0] = 99
	c.Labels[1] = "changed"

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []float64{10, 12}, ds.Values)
	assert.Equal(t, []string{"Week 1", "Week 2"}, ds.Labels)
}

func TestCourseNodeArrowAndClone(t *testing.T) {
	n := CourseNode{Subject: "Math", Children: []CourseLeaf{{Course: "MATH 1A"}}}
	assert.Equal(t, ArrowCollapsed, n.Arrow())
	n.Expanded = true
	assert.Equal(t, ArrowExpanded, n.Arrow())

	c := n.Clone()
	c.Children[0].Checked = true
	assert.False(t, n.Children[0].Checked)
}
