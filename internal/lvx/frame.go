package lvx

import (
	"fmt"
	"io"

	"github.com/banshee-data/lvxtool/internal/pointcloud"
)

const (
	// FrameHeaderSize covers current offset, next offset and frame index,
	// each uint64.
	FrameHeaderSize = 24

	// PacketHeaderSize covers device index, protocol version, slot, lidar
	// id, a reserved byte, status code (u32), timestamp type, data type
	// and the 8-byte timestamp.
	PacketHeaderSize = 19
)

// Warning records a recoverable defect found while decoding, typically a
// frame whose declared length does not match its contents. Decoding resumes
// at the next frame boundary after each warning.
type Warning struct {
	FrameIndex uint64
	Offset     int64
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("frame %d: %s (at byte offset %d)", w.FrameIndex, w.Message, w.Offset)
}

// PacketHeader is the 19-byte header preceding every packet in a frame.
type PacketHeader struct {
	DeviceIndex   uint8
	Version       uint8
	Slot          uint8
	LidarID       uint8
	StatusCode    uint32
	TimestampType uint8
	DataType      DataType
	Timestamp     uint64
}

// Batch is the decoded output of one point-bearing packet, in acquisition
// order. IMU packets and no-return points never appear in a batch.
type Batch struct {
	Header PacketHeader
	Points []pointcloud.Point
}

// Decoder walks the frame/packet structure of an LVX file, yielding one
// Batch per point packet. It consumes the reader and is not restartable.
// Recoverable defects are accumulated as warnings and decoding resumes at
// the corrupt frame's declared next-frame offset.
type Decoder struct {
	r          *Reader
	frameEnd   int64
	frameIndex uint64
	inFrame    bool
	warnings   []Warning
}

// NewDecoder returns a Decoder reading frames from r, which must be
// positioned just past the file header.
func NewDecoder(r *Reader) *Decoder {
	return &Decoder{r: r}
}

// Warnings returns the recoverable defects seen so far, in file order.
func (d *Decoder) Warnings() []Warning { return d.warnings }

// Offset returns the current read position, for progress reporting.
func (d *Decoder) Offset() int64 { return d.r.Offset() }

func (d *Decoder) warn(format string, args ...interface{}) {
	d.warnings = append(d.warnings, Warning{
		FrameIndex: d.frameIndex,
		Offset:     d.r.Offset(),
		Message:    fmt.Sprintf(format, args...),
	})
}

// resync abandons the current frame and repositions at its declared end.
func (d *Decoder) resync() error {
	if err := d.r.Seek(d.frameEnd); err != nil {
		return err
	}
	d.inFrame = false
	return nil
}

// Next returns the next decoded point batch, or io.EOF when the file is
// exhausted. Fatal format errors (truncation, unknown packet types with
// unknowable width) abort decoding; corrupt frames are recorded as warnings
// and skipped.
func (d *Decoder) Next() (Batch, error) {
	for {
		if !d.inFrame {
			if d.r.Remaining() == 0 {
				return Batch{}, io.EOF
			}
			if err := d.readFrameHeader(); err != nil {
				return Batch{}, err
			}
			continue
		}

		// A frame tail too short for a packet header is a declared-length
		// mismatch; anything left over is abandoned.
		if d.frameEnd-d.r.Offset() < PacketHeaderSize {
			if d.r.Offset() != d.frameEnd {
				d.warn("declared frame length leaves %d stray bytes", d.frameEnd-d.r.Offset())
			}
			if err := d.resync(); err != nil {
				return Batch{}, err
			}
			continue
		}

		hdr, err := d.readPacketHeader()
		if err != nil {
			return Batch{}, err
		}

		width, count, decoded, ok := layout(hdr.DataType)
		if !ok {
			return Batch{}, formatErr(d.r.Offset()-PacketHeaderSize, ErrUnsupportedPacketType,
				"data type %d has unknown width, cannot resynchronise", hdr.DataType)
		}

		payload := int64(width) * int64(count)
		if d.r.Offset()+payload > d.frameEnd {
			d.warn("type %d packet payload of %d bytes overruns frame end", hdr.DataType, payload)
			if err := d.resync(); err != nil {
				return Batch{}, err
			}
			continue
		}

		if !decoded {
			// Dual-return types: width is known, content is not decoded.
			if err := d.r.Skip(payload); err != nil {
				return Batch{}, err
			}
			continue
		}

		var pts []pointcloud.Point
		switch hdr.DataType {
		case TypeCartesian:
			pts, err = decodeCartesianPoints(d.r, count, false, hdr.Timestamp)
		case TypeSpherical:
			pts, err = decodeSphericalPoints(d.r, count, false, hdr.Timestamp)
		case TypeExtendCartesian:
			pts, err = decodeCartesianPoints(d.r, count, true, hdr.Timestamp)
		case TypeExtendSpherical:
			pts, err = decodeSphericalPoints(d.r, count, true, hdr.Timestamp)
		case TypeIMU:
			// Read and validate, never emit: IMU samples carry no
			// spatial point data.
			_, err = decodeIMU(d.r)
			if err != nil {
				return Batch{}, err
			}
			continue
		}
		if err != nil {
			return Batch{}, err
		}
		return Batch{Header: hdr, Points: pts}, nil
	}
}

func (d *Decoder) readFrameHeader() error {
	headerOffset := d.r.Offset()
	if d.r.Remaining() < FrameHeaderSize {
		return formatErr(headerOffset, ErrTruncatedInput,
			"%d trailing bytes, frame header needs %d", d.r.Remaining(), FrameHeaderSize)
	}

	currentOffset, err := d.r.U64()
	if err != nil {
		return err
	}
	nextOffset, err := d.r.U64()
	if err != nil {
		return err
	}
	if d.frameIndex, err = d.r.U64(); err != nil {
		return err
	}

	if int64(nextOffset) > d.r.Size() {
		return formatErr(headerOffset, ErrTruncatedInput,
			"frame %d declares next offset %d beyond file of %d bytes",
			d.frameIndex, nextOffset, d.r.Size())
	}
	if nextOffset <= currentOffset {
		// Non-monotonic offsets leave no safe place to resume; stop at
		// the last good frame instead of guessing.
		d.warn("non-monotonic frame offsets (current %d, next %d), stopping", currentOffset, nextOffset)
		return io.EOF
	}

	d.frameEnd = int64(nextOffset)
	d.inFrame = true
	return nil
}

func (d *Decoder) readPacketHeader() (PacketHeader, error) {
	var h PacketHeader
	var err error
	if h.DeviceIndex, err = d.r.U8(); err != nil {
		return h, err
	}
	if h.Version, err = d.r.U8(); err != nil {
		return h, err
	}
	if h.Slot, err = d.r.U8(); err != nil {
		return h, err
	}
	if h.LidarID, err = d.r.U8(); err != nil {
		return h, err
	}
	if err = d.r.Skip(1); err != nil { // reserved
		return h, err
	}
	if h.StatusCode, err = d.r.U32(); err != nil {
		return h, err
	}
	if h.TimestampType, err = d.r.U8(); err != nil {
		return h, err
	}
	var dt uint8
	if dt, err = d.r.U8(); err != nil {
		return h, err
	}
	h.DataType = DataType(dt)
	if h.Timestamp, err = d.r.U64(); err != nil {
		return h, err
	}
	return h, nil
}
