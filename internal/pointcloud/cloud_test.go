package pointcloud

import "testing"

func TestEmptyCloudFlags(t *testing.T) {
	c := New(0)
	if !c.UniformReflectivity() || !c.UniformTag() || !c.UniformTimestamp() {
		t.Error("empty cloud must report all fields uniformly present")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d", c.Len())
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	c := New(2)
	c.Append(Point{X: 1}, Point{X: 2})
	c.Append(Point{X: 3})

	pts := c.Points()
	if len(pts) != 3 {
		t.Fatalf("len = %d, want 3", len(pts))
	}
	for i, want := range []float64{1, 2, 3} {
		if pts[i].X != want {
			t.Errorf("point %d X = %v, want %v", i, pts[i].X, want)
		}
	}
}

func TestUniformFlagsClearPermanently(t *testing.T) {
	c := New(0)
	c.Append(Point{HasReflectivity: true, HasTag: true, HasTimestamp: true})
	if !c.UniformReflectivity() || !c.UniformTag() || !c.UniformTimestamp() {
		t.Fatal("flags should still be set after a fully-populated point")
	}

	// One point without a tag clears the tag flag for good.
	c.Append(Point{HasReflectivity: true, HasTimestamp: true})
	if c.UniformTag() {
		t.Error("tag flag must clear after a tagless point")
	}
	if !c.UniformReflectivity() || !c.UniformTimestamp() {
		t.Error("other flags must survive")
	}

	// Appending a tagged point afterwards must not restore it.
	c.Append(Point{HasReflectivity: true, HasTag: true, HasTimestamp: true})
	if c.UniformTag() {
		t.Error("cleared flag must stay cleared")
	}
}

func TestNegativeCapacityHint(t *testing.T) {
	c := New(-5)
	c.Append(Point{X: 1})
	if c.Len() != 1 {
		t.Errorf("len = %d", c.Len())
	}
}
