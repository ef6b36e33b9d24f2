package lvx

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildHeader assembles a valid file header with the given number of device
// blocks.
func buildHeader(devices int) []byte {
	buf := make([]byte, 0, PublicHeaderSize+5+devices*DeviceInfoSize)
	buf = append(buf, fileSignature...)
	buf = append(buf, 1, 1, 0, 0) // version 1.1.0.0
	buf = binary.LittleEndian.AppendUint32(buf, MagicCode)
	buf = binary.LittleEndian.AppendUint32(buf, 50) // frame duration ms
	buf = append(buf, byte(devices))
	for i := 0; i < devices; i++ {
		dev := make([]byte, DeviceInfoSize)
		copy(dev, "3WEDH7600101621")
		dev[32] = byte(i) // device index
		dev[33] = 9       // device type
		// roll = 1.0
		binary.LittleEndian.PutUint32(dev[35:39], 0x3F800000)
		buf = append(buf, dev...)
	}
	return buf
}

func TestParseHeader(t *testing.T) {
	data := buildHeader(2)
	r := NewReader(data)

	h, err := ParseHeader(r)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Version != [4]uint8{1, 1, 0, 0} {
		t.Errorf("version = %v", h.Version)
	}
	if h.FrameDurationMs != 50 {
		t.Errorf("frame duration = %d, want 50", h.FrameDurationMs)
	}
	if h.DeviceCount != 2 || len(h.Devices) != 2 {
		t.Fatalf("device count = %d (%d blocks)", h.DeviceCount, len(h.Devices))
	}
	if h.Devices[1].DeviceIndex != 1 || h.Devices[1].DeviceType != 9 {
		t.Errorf("device 1 = %+v", h.Devices[1])
	}
	if h.Devices[0].Roll != 1.0 {
		t.Errorf("device 0 roll = %v, want 1.0", h.Devices[0].Roll)
	}

	// Reader must be positioned exactly past the header.
	if r.Offset() != int64(len(data)) {
		t.Errorf("reader at %d, want %d", r.Offset(), len(data))
	}
}

func TestParseHeaderInvalidSignature(t *testing.T) {
	data := buildHeader(0)
	data[0] = 'x'

	_, err := ParseHeader(NewReader(data))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	data := buildHeader(0)
	data[SignatureSize+4] = 0x00

	_, err := ParseHeader(NewReader(data))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for bad magic, got %v", err)
	}
}

func TestParseHeaderUnsupportedVersion(t *testing.T) {
	data := buildHeader(0)
	data[SignatureSize] = 2

	_, err := ParseHeader(NewReader(data))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestParseHeaderTruncatedDeviceBlock(t *testing.T) {
	data := buildHeader(1)
	data = data[:len(data)-10]

	_, err := ParseHeader(NewReader(data))
	if !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}
