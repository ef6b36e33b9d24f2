package lvx

import (
	"math"

	"github.com/banshee-data/lvxtool/internal/pointcloud"
)

// DataType tags the per-point byte layout of a packet. The set is closed:
// the five types below are decoded, two dual-return types are skippable by
// width, anything else is unsafe to resynchronise over.
type DataType uint8

const (
	TypeCartesian       DataType = 0 // x,y,z int32 mm + reflectivity
	TypeSpherical       DataType = 1 // depth uint32 mm + zenith/azimuth u16
	TypeExtendCartesian DataType = 2 // Cartesian + reflectivity + tag
	TypeExtendSpherical DataType = 3 // spherical + reflectivity
	TypeIMU             DataType = 6 // gyro/accel float32 triples, non-spatial
)

// Per-point byte widths for the decoded types.
const (
	widthCartesian       = 13
	widthSpherical       = 8
	widthExtendCartesian = 14
	widthExtendSpherical = 9
	widthIMU             = 24
)

// Points per packet by data type, fixed by the device firmware.
const (
	countCartesian       = 100
	countSpherical       = 100
	countExtendCartesian = 96
	countExtendSpherical = 96
	countIMU             = 1
)

// mm→m and fixed-point angle scales. Zenith and azimuth are stored in
// hundredths of a degree.
const (
	mmPerMetre      = 1000.0
	angleScale      = 100.0
	radiansPerDeg   = math.Pi / 180.0
	radiansPerScale = radiansPerDeg / angleScale
)

// layout gives the byte width and declared point count for a data type.
// The second return distinguishes decoded types from the two dual-return
// types (4, 5) that are skippable but not decoded; ok is false for anything
// the decoder cannot even measure.
func layout(t DataType) (width, count int, decoded, ok bool) {
	switch t {
	case TypeCartesian:
		return widthCartesian, countCartesian, true, true
	case TypeSpherical:
		return widthSpherical, countSpherical, true, true
	case TypeExtendCartesian:
		return widthExtendCartesian, countExtendCartesian, true, true
	case TypeExtendSpherical:
		return widthExtendSpherical, countExtendSpherical, true, true
	case TypeIMU:
		return widthIMU, countIMU, true, true
	case 4: // dual-return extend Cartesian
		return 28, 48, false, true
	case 5: // dual-return extend spherical
		return 16, 48, false, true
	default:
		return 0, 0, false, false
	}
}

// sphericalToCartesian converts a raw spherical measurement (depth in mm,
// zenith/azimuth in hundredths of a degree) into Cartesian metres. Pure:
// identical inputs always produce bit-identical outputs.
func sphericalToCartesian(depthMM uint32, zenith, azimuth uint16) (x, y, z float64) {
	depth := float64(depthMM) / mmPerMetre
	theta := float64(zenith) * radiansPerScale
	phi := float64(azimuth) * radiansPerScale
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	x = depth * sinTheta * cosPhi
	y = depth * sinTheta * sinPhi
	z = depth * cosTheta
	return x, y, z
}

// decodeCartesianPoints reads count points of type 0 or 2. Points with an
// all-zero position are no-return measurements and are dropped.
func decodeCartesianPoints(r *Reader, count int, withTag bool, timestamp uint64) ([]pointcloud.Point, error) {
	pts := make([]pointcloud.Point, 0, count)
	for i := 0; i < count; i++ {
		x, err := r.I32()
		if err != nil {
			return nil, err
		}
		y, err := r.I32()
		if err != nil {
			return nil, err
		}
		z, err := r.I32()
		if err != nil {
			return nil, err
		}
		refl, err := r.U8()
		if err != nil {
			return nil, err
		}
		var tag uint8
		if withTag {
			if tag, err = r.U8(); err != nil {
				return nil, err
			}
		}
		if x == 0 && y == 0 && z == 0 {
			continue
		}
		pts = append(pts, pointcloud.Point{
			X:               float64(x) / mmPerMetre,
			Y:               float64(y) / mmPerMetre,
			Z:               float64(z) / mmPerMetre,
			Reflectivity:    refl,
			HasReflectivity: true,
			Tag:             tag,
			HasTag:          withTag,
			Timestamp:       timestamp,
			HasTimestamp:    true,
		})
	}
	return pts, nil
}

// decodeSphericalPoints reads count points of type 1 or 3 and normalises
// them to Cartesian. Zero-depth points are no-return measurements and are
// dropped.
func decodeSphericalPoints(r *Reader, count int, withReflectivity bool, timestamp uint64) ([]pointcloud.Point, error) {
	pts := make([]pointcloud.Point, 0, count)
	for i := 0; i < count; i++ {
		depth, err := r.U32()
		if err != nil {
			return nil, err
		}
		zenith, err := r.U16()
		if err != nil {
			return nil, err
		}
		azimuth, err := r.U16()
		if err != nil {
			return nil, err
		}
		var refl uint8
		if withReflectivity {
			if refl, err = r.U8(); err != nil {
				return nil, err
			}
		}
		if depth == 0 {
			continue
		}
		x, y, z := sphericalToCartesian(depth, zenith, azimuth)
		pts = append(pts, pointcloud.Point{
			X:               x,
			Y:               y,
			Z:               z,
			Reflectivity:    refl,
			HasReflectivity: withReflectivity,
			Timestamp:       timestamp,
			HasTimestamp:    true,
		})
	}
	return pts, nil
}

// IMUSample is one decoded type-6 packet. IMU packets carry no spatial
// points; the sample is validated and discarded by the frame decoder.
type IMUSample struct {
	GyroX, GyroY, GyroZ float64
	AccX, AccY, AccZ    float64
}

func decodeIMU(r *Reader) (IMUSample, error) {
	var s IMUSample
	var err error
	for _, f := range []*float64{&s.GyroX, &s.GyroY, &s.GyroZ, &s.AccX, &s.AccY, &s.AccZ} {
		var v float32
		if v, err = r.F32(); err != nil {
			return s, err
		}
		*f = float64(v)
	}
	return s, nil
}
