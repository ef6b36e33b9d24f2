package pointcloud

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// AxisStats summarises one coordinate axis across a cloud.
type AxisStats struct {
	Min, Max, Mean, StdDev float64
}

// Stats is a numeric summary of a decoded cloud, as shown in the viewer's
// statistics panel: per-axis extents and moments plus the range (euclidean
// distance from the sensor origin) distribution.
type Stats struct {
	Count   int
	X, Y, Z AxisStats
	Range   AxisStats

	// MeanReflectivity is only meaningful when HasReflectivity is set,
	// i.e. when every point in the cloud carried a reflectivity value.
	MeanReflectivity float64
	HasReflectivity  bool
}

// Summarise computes Stats over the cloud in a single pass per axis.
// An empty cloud yields a zero-valued Stats with Count == 0.
func Summarise(c *Cloud) Stats {
	pts := c.Points()
	s := Stats{Count: len(pts)}
	if len(pts) == 0 {
		return s
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	zs := make([]float64, len(pts))
	rs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
		rs[i] = math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	}

	s.X = axisStats(xs)
	s.Y = axisStats(ys)
	s.Z = axisStats(zs)
	s.Range = axisStats(rs)

	if c.UniformReflectivity() {
		s.HasReflectivity = true
		total := 0.0
		for _, p := range pts {
			total += float64(p.Reflectivity)
		}
		s.MeanReflectivity = total / float64(len(pts))
	}
	return s
}

func axisStats(vals []float64) AxisStats {
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if math.IsNaN(std) { // single sample
		std = 0
	}
	return AxisStats{Min: min, Max: max, Mean: mean, StdDev: std}
}

// RangeHistogram buckets point ranges into bins equal-width bins between the
// observed minimum and maximum range. Returns bin edges (lower bound of each
// bin) and counts. Used by the report tool.
func RangeHistogram(c *Cloud, bins int) (edges []float64, counts []int) {
	if bins <= 0 || c.Len() == 0 {
		return nil, nil
	}
	pts := c.Points()
	rs := make([]float64, len(pts))
	min, max := math.Inf(1), math.Inf(-1)
	for i, p := range pts {
		r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		rs[i] = r
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	width := (max - min) / float64(bins)
	if width == 0 {
		width = 1
	}
	edges = make([]float64, bins)
	counts = make([]int, bins)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	for _, r := range rs {
		idx := int((r - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return edges, counts
}

// ReflectivityHistogram counts points per reflectivity value (0-255).
// Returns nil when the cloud has no uniform reflectivity channel.
func ReflectivityHistogram(c *Cloud) []int {
	if !c.UniformReflectivity() || c.Len() == 0 {
		return nil
	}
	counts := make([]int, 256)
	for _, p := range c.Points() {
		counts[p.Reflectivity]++
	}
	return counts
}

// GrayscaleColor maps a reflectivity value to an equal-component RGB triple
// in [0,1], the same normalisation the viewer uses to colour points.
func GrayscaleColor(reflectivity uint8) [3]float64 {
	v := float64(reflectivity) / 255.0
	return [3]float64{v, v, v}
}
