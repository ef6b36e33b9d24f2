// Package pointcloud holds the in-memory representation of a decoded point
// cloud: the per-point record produced by the LVX decoders and an append-only
// accumulator that tracks which optional fields are uniformly present.
package pointcloud

// Point is a single decoded measurement in sensor-frame Cartesian
// coordinates (metres). Reflectivity, Tag and Timestamp are only meaningful
// when the corresponding Has flag is set; which flags are set depends on the
// packet type the point was decoded from.
type Point struct {
	X, Y, Z float64

	Reflectivity    uint8
	HasReflectivity bool

	Tag    uint8
	HasTag bool

	// Timestamp is the acquisition timestamp of the packet the point came
	// from, in the unit selected by the packet's timestamp-type field
	// (nanoseconds for most device firmwares).
	Timestamp    uint64
	HasTimestamp bool
}

// Cloud is an append-only, acquisition-ordered collection of points.
//
// Alongside the points it maintains a running reduction: whether
// reflectivity, tag and timestamp have been present on every point appended
// so far. A single point without a field permanently clears that field's
// flag. The PCD writer uses the flags to pick a rectangular output schema.
type Cloud struct {
	points []Point

	allReflectivity bool
	allTag          bool
	allTimestamp    bool
}

// New returns an empty Cloud with storage pre-sized for capacityHint points.
// LVX files do not declare a total point count up front, so callers estimate
// the hint from the file size; a hint of 0 falls back to incremental growth.
func New(capacityHint int) *Cloud {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Cloud{
		points:          make([]Point, 0, capacityHint),
		allReflectivity: true,
		allTag:          true,
		allTimestamp:    true,
	}
}

// Append adds points in order, updating the uniform-presence flags.
func (c *Cloud) Append(pts ...Point) {
	for i := range pts {
		if !pts[i].HasReflectivity {
			c.allReflectivity = false
		}
		if !pts[i].HasTag {
			c.allTag = false
		}
		if !pts[i].HasTimestamp {
			c.allTimestamp = false
		}
	}
	c.points = append(c.points, pts...)
}

// Len returns the number of accumulated points.
func (c *Cloud) Len() int { return len(c.points) }

// Points returns the underlying point slice in acquisition order. The slice
// is owned by the Cloud; callers must not mutate it.
func (c *Cloud) Points() []Point { return c.points }

// UniformReflectivity reports whether every appended point carried a
// reflectivity value. True for an empty cloud.
func (c *Cloud) UniformReflectivity() bool { return c.allReflectivity }

// UniformTag reports whether every appended point carried a tag value.
func (c *Cloud) UniformTag() bool { return c.allTag }

// UniformTimestamp reports whether every appended point carried a timestamp.
func (c *Cloud) UniformTimestamp() bool { return c.allTimestamp }
