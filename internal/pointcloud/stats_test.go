package pointcloud

import (
	"math"
	"testing"
)

func reflPoint(x, y, z float64, refl uint8) Point {
	return Point{X: x, Y: y, Z: z, Reflectivity: refl, HasReflectivity: true, HasTimestamp: true}
}

func TestSummarise(t *testing.T) {
	c := New(0)
	c.Append(
		reflPoint(1, 0, 0, 10),
		reflPoint(3, 0, 0, 20),
		reflPoint(5, 0, 0, 30),
	)

	s := Summarise(c)
	if s.Count != 3 {
		t.Fatalf("count = %d", s.Count)
	}
	if s.X.Min != 1 || s.X.Max != 5 {
		t.Errorf("x extent = [%v, %v]", s.X.Min, s.X.Max)
	}
	if s.X.Mean != 3 {
		t.Errorf("x mean = %v, want 3", s.X.Mean)
	}
	if math.Abs(s.X.StdDev-2) > 1e-12 {
		t.Errorf("x stddev = %v, want 2", s.X.StdDev)
	}
	// Points lie on the x axis, so range equals |x|.
	if s.Range.Min != 1 || s.Range.Max != 5 {
		t.Errorf("range extent = [%v, %v]", s.Range.Min, s.Range.Max)
	}
	if !s.HasReflectivity || s.MeanReflectivity != 20 {
		t.Errorf("reflectivity mean = %v (has=%v)", s.MeanReflectivity, s.HasReflectivity)
	}
}

func TestSummariseEmpty(t *testing.T) {
	s := Summarise(New(0))
	if s.Count != 0 || s.HasReflectivity {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestSummariseSinglePoint(t *testing.T) {
	c := New(0)
	c.Append(reflPoint(2, 0, 0, 7))
	s := Summarise(c)
	if s.X.StdDev != 0 {
		t.Errorf("single-sample stddev = %v, want 0", s.X.StdDev)
	}
}

func TestSummariseMixedReflectivity(t *testing.T) {
	c := New(0)
	c.Append(reflPoint(1, 0, 0, 10), Point{X: 2, HasTimestamp: true})
	s := Summarise(c)
	if s.HasReflectivity {
		t.Error("mixed reflectivity presence must disable the summary field")
	}
}

func TestRangeHistogram(t *testing.T) {
	c := New(0)
	c.Append(reflPoint(1, 0, 0, 0), reflPoint(2, 0, 0, 0), reflPoint(9, 0, 0, 0), reflPoint(10, 0, 0, 0))

	edges, counts := RangeHistogram(c, 3)
	if len(edges) != 3 || len(counts) != 3 {
		t.Fatalf("got %d edges, %d counts", len(edges), len(counts))
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 4 {
		t.Errorf("histogram total = %d, want 4", total)
	}
	if counts[0] != 2 || counts[2] != 2 {
		t.Errorf("counts = %v, want 2 in first and last bins", counts)
	}
}

func TestReflectivityHistogram(t *testing.T) {
	c := New(0)
	c.Append(reflPoint(1, 0, 0, 5), reflPoint(2, 0, 0, 5), reflPoint(3, 0, 0, 200))

	counts := ReflectivityHistogram(c)
	if counts == nil {
		t.Fatal("expected a histogram for a uniform-reflectivity cloud")
	}
	if counts[5] != 2 || counts[200] != 1 {
		t.Errorf("counts[5] = %d, counts[200] = %d", counts[5], counts[200])
	}

	c.Append(Point{X: 1, HasTimestamp: true})
	if ReflectivityHistogram(c) != nil {
		t.Error("expected nil histogram once reflectivity is not uniform")
	}
}

func TestGrayscaleColor(t *testing.T) {
	if got := GrayscaleColor(255); got != [3]float64{1, 1, 1} {
		t.Errorf("GrayscaleColor(255) = %v", got)
	}
	if got := GrayscaleColor(0); got != [3]float64{0, 0, 0} {
		t.Errorf("GrayscaleColor(0) = %v", got)
	}
}
