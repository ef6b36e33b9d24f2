// Package lvx decodes Livox LVX capture files: a fixed file header, per-device
// metadata blocks, then a sequence of frames each holding variable-type point
// packets. All multi-byte fields are little-endian.
package lvx

import (
	"encoding/binary"
	"math"
)

// Reader is a positional cursor over an in-memory byte slice. Every read is
// bounds-checked before touching the data and advances the cursor by the
// width read; a short source yields ErrTruncatedInput rather than a panic.
type Reader struct {
	data []byte
	pos  int64
}

// NewReader wraps data in a Reader positioned at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int64 { return r.pos }

// Size returns the total length of the underlying data.
func (r *Reader) Size() int64 { return int64(len(r.data)) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int64 { return int64(len(r.data)) - r.pos }

// Seek moves the cursor to an absolute offset within the data.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(r.data)) {
		return formatErr(r.pos, ErrTruncatedInput, "seek to %d outside file of %d bytes", offset, len(r.data))
	}
	r.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int64) error {
	if n < 0 || r.Remaining() < n {
		return formatErr(r.pos, ErrTruncatedInput, "cannot skip %d bytes, %d remain", n, r.Remaining())
	}
	r.pos += n
	return nil
}

// Bytes reads n raw bytes. The returned slice aliases the underlying data
// and must not be mutated.
func (r *Reader) Bytes(n int64) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, formatErr(r.pos, ErrTruncatedInput, "need %d bytes, %d remain", n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}
