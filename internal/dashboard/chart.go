package dashboard

import (
	"math"
	"sort"

	"github.com/2beens/fitportal/internal/portal"
)

const (
	DefaultMaxPoints = 10

	padRatio = 0.2
	minPad   = 1.0
)

type Point struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Series is a weight trend ready for plotting.
type Series struct {
	Points []Point `json:"points"`
}

// ReduceSeries keeps the last maxPoints measurements by date and drops
// weights that are not finite. A non-positive maxPoints uses DefaultMaxPoints.
func ReduceSeries(measurements []portal.Measurement, maxPoints int) Series {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	sorted := append([]portal.Measurement(nil), measurements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	if len(sorted) > maxPoints {
		sorted = sorted[len(sorted)-maxPoints:]
	}

	points := make([]Point, 0, len(sorted))
	for _, m := range sorted {
		if math.IsNaN(m.Weight) || math.IsInf(m.Weight, 0) {
			continue
		}
		points = append(points, Point{Date: m.Date, Weight: m.Weight})
	}
	return Series{Points: points}
}

// Sufficient reports whether there are enough points to draw a line.
func (s Series) Sufficient() bool {
	return len(s.Points) >= 2
}

func (s Series) Weights() []float64 {
	weights := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		weights = append(weights, p.Weight)
	}
	return weights
}

// Last returns the most recent point.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Bounds returns the vertical range of the chart: the weight range widened on
// both sides by 20% of its span, and by at least one unit.
func (s Series) Bounds() (lower, upper float64, ok bool) {
	if len(s.Points) == 0 {
		return 0, 0, false
	}
	low, high := s.Points[0].Weight, s.Points[0].Weight
	for _, p := range s.Points[1:] {
		low = math.Min(low, p.Weight)
		high = math.Max(high, p.Weight)
	}
	pad := Pad(low, high)
	return low - pad, high + pad, true
}

// Pad is the margin added above and below a [low, high] weight range.
func Pad(low, high float64) float64 {
	return math.Max((high-low)*padRatio, minPad)
}

// Levels maps every point to a level in [0, steps) inside the padded bounds.
func (s Series) Levels(steps int) []int {
	lower, upper, ok := s.Bounds()
	if !ok || steps <= 0 {
		return nil
	}
	levels := make([]int, 0, len(s.Points))
	for _, p := range s.Points {
		level := int((p.Weight - lower) / (upper - lower) * float64(steps))
		levels = append(levels, min(max(level, 0), steps-1))
	}
	return levels
}
