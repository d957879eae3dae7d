package dashboard_test

import (
	"math"
	"testing"

	"github.com/2beens/fitportal/internal/dashboard"
	"github.com/2beens/fitportal/internal/portal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weights(dateWeights ...any) []portal.Measurement {
	var ms []portal.Measurement
	for i := 0; i+1 < len(dateWeights); i += 2 {
		ms = append(ms, portal.Measurement{Date: dateWeights[i].(string), Weight: dateWeights[i+1].(float64)})
	}
	return ms
}

func TestReduceSeries(t *testing.T) {
	ms := weights("2024-01-03", 72.0, "2024-01-01", 70.0, "2024-01-02", 71.0)

	series := dashboard.ReduceSeries(ms, 2)
	assert.Equal(t, []float64{71, 72}, series.Weights())
	assert.True(t, series.Sufficient())
	last, ok := series.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", last.Date)

	assert.Equal(t, []float64{70, 71, 72}, dashboard.ReduceSeries(ms, 0).Weights())

	single := dashboard.ReduceSeries(weights("2024-01-01", 70.0), 10)
	assert.False(t, single.Sufficient())
	assert.False(t, dashboard.ReduceSeries(nil, 10).Sufficient())
}

func TestReduceSeries_DefaultKeepsTen(t *testing.T) {
	var ms []portal.Measurement
	for i := 0; i < 15; i++ {
		ms = append(ms, portal.Measurement{Date: day("2024-01-01").AddDate(0, 0, i).Format(portal.DateLayout), Weight: float64(60 + i)})
	}
	series := dashboard.ReduceSeries(ms, dashboard.DefaultMaxPoints)
	require.Len(t, series.Points, 10)
	assert.Equal(t, 65.0, series.Points[0].Weight)
	assert.Equal(t, 74.0, series.Points[9].Weight)
}

func TestReduceSeries_DropsNonFinite(t *testing.T) {
	ms := weights("2024-01-01", 70.0, "2024-01-02", math.NaN(), "2024-01-03", math.Inf(1), "2024-01-04", 71.0)
	series := dashboard.ReduceSeries(ms, 10)
	assert.Equal(t, []float64{70, 71}, series.Weights())
}

func TestSeriesBounds(t *testing.T) {
	_, _, ok := dashboard.ReduceSeries(nil, 10).Bounds()
	assert.False(t, ok)

	lower, upper, ok := dashboard.ReduceSeries(weights("2024-01-01", 60.0, "2024-01-02", 80.0), 10).Bounds()
	require.True(t, ok)
	assert.InDelta(t, 56.0, lower, 1e-9)
	assert.InDelta(t, 84.0, upper, 1e-9)

	// flat and narrow ranges are padded by one unit
	lower, upper, _ = dashboard.ReduceSeries(weights("2024-01-01", 70.0, "2024-01-02", 70.0), 10).Bounds()
	assert.Equal(t, 69.0, lower)
	assert.Equal(t, 71.0, upper)
	assert.Equal(t, 1.0, dashboard.Pad(70, 72))
	assert.InDelta(t, 2.0, dashboard.Pad(70, 80), 1e-9)
}

func TestSeriesLevels(t *testing.T) {
	series := dashboard.ReduceSeries(weights("2024-01-01", 60.0, "2024-01-02", 70.0, "2024-01-03", 80.0), 10)
	levels := series.Levels(8)
	require.Len(t, levels, 3)
	assert.Less(t, levels[0], levels[1])
	assert.Less(t, levels[1], levels[2])
	for _, l := range levels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 8)
	}
	assert.Nil(t, series.Levels(0))
}
