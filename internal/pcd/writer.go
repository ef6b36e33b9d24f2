// Package pcd serialises point clouds into the PCD v0.7 container format:
// a plain-text header describing the field schema followed by an ASCII or
// raw little-endian binary-float body.
package pcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/lvxtool/internal/pointcloud"
)

// Format selects the body encoding.
type Format int

const (
	FormatASCII Format = iota
	FormatBinary
)

func (f Format) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "ascii"
}

// Config controls the output schema and encoding for one write.
type Config struct {
	Format Format

	// IncludeReflectivity requests a reflectivity column. It is honoured
	// only when every point in the cloud carries a reflectivity value;
	// a cloud with mixed per-point fields cannot produce a rectangular
	// schema, so the column is silently omitted.
	IncludeReflectivity bool
}

// WriteError wraps an underlying I/O failure during PCD output. A file that
// received a WriteError is not a valid PCD and must be discarded by the
// caller.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("pcd: write failed: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// countingWriter tracks bytes passed through to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Write serialises the cloud to w and returns the number of bytes written.
// Points are emitted in cloud order. The x/y/z columns are always present;
// see Config.IncludeReflectivity for the optional fourth column.
func Write(w io.Writer, cloud *pointcloud.Cloud, cfg Config) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	withReflectivity := cfg.IncludeReflectivity && cloud.UniformReflectivity()
	if err := writeHeader(bw, cloud.Len(), withReflectivity, cfg.Format); err != nil {
		return cw.n, &WriteError{Err: err}
	}

	var err error
	if cfg.Format == FormatBinary {
		err = writeBinaryBody(bw, cloud.Points(), withReflectivity)
	} else {
		err = writeASCIIBody(bw, cloud.Points(), withReflectivity)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		return cw.n, &WriteError{Err: err}
	}
	return cw.n, nil
}

func writeHeader(w io.Writer, points int, withReflectivity bool, format Format) error {
	fields := "x y z"
	size := "4 4 4"
	typ := "F F F"
	count := "1 1 1"
	if withReflectivity {
		fields += " reflectivity"
		size += " 4"
		typ += " F"
		count += " 1"
	}
	_, err := fmt.Fprintf(w, "VERSION .7\n"+
		"FIELDS %s\n"+
		"SIZE %s\n"+
		"TYPE %s\n"+
		"COUNT %s\n"+
		"WIDTH %d\n"+
		"HEIGHT 1\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n"+
		"DATA %s\n",
		fields, size, typ, count, points, points, format)
	return err
}

func writeASCIIBody(w io.Writer, pts []pointcloud.Point, withReflectivity bool) error {
	for i := range pts {
		p := &pts[i]
		var err error
		if withReflectivity {
			_, err = fmt.Fprintf(w, "%.6g %.6g %.6g %.6g\n", p.X, p.Y, p.Z, float64(p.Reflectivity))
		} else {
			_, err = fmt.Fprintf(w, "%.6g %.6g %.6g\n", p.X, p.Y, p.Z)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeBinaryBody(w io.Writer, pts []pointcloud.Point, withReflectivity bool) error {
	// Raw little-endian float32 per field, no padding or separators.
	fieldsPerPoint := 3
	if withReflectivity {
		fieldsPerPoint = 4
	}
	buf := make([]byte, 4*fieldsPerPoint)
	for i := range pts {
		p := &pts[i]
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(p.X)))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(p.Y)))
		binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(float32(p.Z)))
		if withReflectivity {
			binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(float32(p.Reflectivity)))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
