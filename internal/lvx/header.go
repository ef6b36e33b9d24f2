package lvx

import "bytes"

// LVX file layout constants. The public header carries the signature and
// format version, the private header the frame duration and device count,
// followed by one 59-byte info block per device.
const (
	SignatureSize    = 16
	PublicHeaderSize = SignatureSize + 4 + 4 // signature + version + magic
	DeviceInfoSize   = 59

	// MagicCode is the fixed sentinel closing the public header.
	MagicCode = 0xAC0EA767

	// SupportedMajorVersion is the only format major version whose frame
	// and packet layouts this decoder implements.
	SupportedMajorVersion = 1
)

// fileSignature is the expected content of the 16-byte signature field.
var fileSignature = append([]byte("livox_tech"), 0, 0, 0, 0, 0, 0)

// DeviceInfo is the per-device metadata block from the file header. The
// extrinsic parameters are recorded as written; the converter does not apply
// them.
type DeviceInfo struct {
	BroadcastCode [16]byte
	HubSN         [16]byte
	DeviceIndex   uint8
	DeviceType    uint8
	ExtrinsicEn   uint8
	Roll          float32
	Pitch         float32
	Yaw           float32
	X             float32
	Y             float32
	Z             float32
}

// Header is the decoded LVX file header.
type Header struct {
	Version         [4]uint8
	FrameDurationMs uint32
	DeviceCount     uint8
	Devices         []DeviceInfo
}

// ParseHeader reads and validates the public header, private header and all
// device info blocks, leaving the reader positioned at the first frame.
func ParseHeader(r *Reader) (*Header, error) {
	sig, err := r.Bytes(SignatureSize)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, fileSignature) {
		return nil, formatErr(0, ErrInvalidSignature, "got %q", sig)
	}

	var h Header
	for i := range h.Version {
		if h.Version[i], err = r.U8(); err != nil {
			return nil, err
		}
	}
	if h.Version[0] != SupportedMajorVersion {
		return nil, formatErr(SignatureSize, ErrUnsupportedVersion, "version %d.%d", h.Version[0], h.Version[1])
	}

	magic, err := r.U32()
	if err != nil {
		return nil, err
	}
	if magic != MagicCode {
		return nil, formatErr(SignatureSize+4, ErrInvalidSignature, "bad magic code 0x%08X", magic)
	}

	if h.FrameDurationMs, err = r.U32(); err != nil {
		return nil, err
	}
	if h.DeviceCount, err = r.U8(); err != nil {
		return nil, err
	}

	h.Devices = make([]DeviceInfo, h.DeviceCount)
	for i := range h.Devices {
		if err := parseDeviceInfo(r, &h.Devices[i]); err != nil {
			return nil, err
		}
	}
	return &h, nil
}

func parseDeviceInfo(r *Reader, d *DeviceInfo) error {
	code, err := r.Bytes(16)
	if err != nil {
		return err
	}
	copy(d.BroadcastCode[:], code)
	sn, err := r.Bytes(16)
	if err != nil {
		return err
	}
	copy(d.HubSN[:], sn)

	if d.DeviceIndex, err = r.U8(); err != nil {
		return err
	}
	if d.DeviceType, err = r.U8(); err != nil {
		return err
	}
	if d.ExtrinsicEn, err = r.U8(); err != nil {
		return err
	}
	for _, f := range []*float32{&d.Roll, &d.Pitch, &d.Yaw, &d.X, &d.Y, &d.Z} {
		if *f, err = r.F32(); err != nil {
			return err
		}
	}
	return nil
}
