// Package convert drives an LVX→PCD conversion end to end: header parse,
// frame/packet decode into an accumulated point cloud, then PCD serialisation,
// with progress reporting, cooperative cancellation and partial-output
// cleanup. This is the entire surface a UI or batch driver needs; packet
// layouts and PCD grammar stay internal.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/banshee-data/lvxtool/internal/lvx"
	"github.com/banshee-data/lvxtool/internal/monitoring"
	"github.com/banshee-data/lvxtool/internal/pcd"
	"github.com/banshee-data/lvxtool/internal/pointcloud"
)

// State is the conversion lifecycle. Transitions are strictly sequential;
// no state is revisited.
type State int32

const (
	StateIdle State = iota
	StateParsing
	StateDecoding
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateDecoding:
		return "decoding"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Kind classifies a conversion failure.
type Kind int

const (
	KindInvalidSignature Kind = iota
	KindUnsupportedVersion
	KindTruncatedInput
	KindCorruptFrame
	KindUnsupportedPacketType
	KindIOWrite
	KindCancelled
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSignature:
		return "invalid signature"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindTruncatedInput:
		return "truncated input"
	case KindCorruptFrame:
		return "corrupt frame"
	case KindUnsupportedPacketType:
		return "unsupported packet type"
	case KindIOWrite:
		return "write error"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// ErrCancelled reports a run stopped by Cancel.
var ErrCancelled = errors.New("convert: cancelled")

// Error is the single structured error surfaced by a failed run: the failure
// class, the accumulated warnings up to the failure, and the underlying
// cause (which carries the byte offset for format errors).
type Error struct {
	Kind     Kind
	Input    string
	Warnings []string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("convert %s: %s: %v", e.Input, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps an underlying error onto the failure taxonomy.
func classify(err error) Kind {
	var we *pcd.WriteError
	switch {
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, lvx.ErrInvalidSignature):
		return KindInvalidSignature
	case errors.Is(err, lvx.ErrUnsupportedVersion):
		return KindUnsupportedVersion
	case errors.Is(err, lvx.ErrTruncatedInput):
		return KindTruncatedInput
	case errors.Is(err, lvx.ErrCorruptFrame):
		return KindCorruptFrame
	case errors.Is(err, lvx.ErrUnsupportedPacketType):
		return KindUnsupportedPacketType
	case errors.As(err, &we):
		return KindIOWrite
	default:
		return KindOther
	}
}

// Observer receives progress fractions in [0,1] at step boundaries and every
// ProgressEvery packets during decode. Implementations must be safe to call
// from the converter's goroutine.
type Observer interface {
	Progress(fraction float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(float64)

func (f ObserverFunc) Progress(fraction float64) { f(fraction) }

// Config is immutable for the duration of one conversion run.
type Config struct {
	Format              pcd.Format
	IncludeReflectivity bool
	OutputPath          string

	// ProgressEvery is the packet interval between progress callbacks
	// during decode. Zero selects a sensible default.
	ProgressEvery int
}

const defaultProgressEvery = 64

// Progress fractions reserved for each pipeline stage. Decode progress is
// interpolated between headerDone and decodeDone from the reader offset.
const (
	progressHeaderDone = 0.05
	progressDecodeDone = 0.85
)

// Result is produced once at the end of a successful run. Warnings are
// present even on success so callers can report "converted with N
// corrupt-frame warnings".
type Result struct {
	PointCount   uint64
	BytesWritten uint64
	Warnings     []string
}

// Converter runs one conversion. Each instance owns its state wholly, so
// independent files may be converted concurrently by independent Converters.
// Cancel may be called from any goroutine.
type Converter struct {
	cfg       Config
	obs       Observer
	state     atomic.Int32
	cancelled atomic.Bool
}

// New returns a Converter for one run of cfg. obs may be nil.
func New(cfg Config, obs Observer) *Converter {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	return &Converter{cfg: cfg, obs: obs}
}

// Cancel requests a cooperative stop. The run observes the flag between
// packet decodes and before writing begins, transitions to Failed with a
// Cancelled error and removes any partial output.
func (c *Converter) Cancel() { c.cancelled.Store(true) }

// State returns the current lifecycle state.
func (c *Converter) State() State { return State(c.state.Load()) }

func (c *Converter) setState(s State) { c.state.Store(int32(s)) }

func (c *Converter) progress(fraction float64) {
	if c.obs != nil {
		c.obs.Progress(fraction)
	}
}

// capacityEstimate plans accumulator capacity from the bytes left after the
// header. LVX files carry no total point count, so this over-approximates
// with the densest point layout.
func capacityEstimate(remaining int64) int {
	const minBytesPerPoint = 8 // spherical type 1
	est := remaining / minBytesPerPoint
	const maxPrealloc = 64 << 20
	if est > maxPrealloc {
		est = maxPrealloc
	}
	return int(est)
}

// Convert runs the pipeline on inputPath. On any failure, including
// cancellation, partially written output is deleted before the error is
// returned; callers never observe a truncated PCD file.
func (c *Converter) Convert(inputPath string) (*Result, error) {
	cloud, warnings, err := c.decode(inputPath)
	if err != nil {
		c.setState(StateFailed)
		return nil, &Error{Kind: classify(err), Input: inputPath, Warnings: warnings, Err: err}
	}

	c.setState(StateWriting)
	if c.cancelled.Load() {
		c.setState(StateFailed)
		return nil, &Error{Kind: KindCancelled, Input: inputPath, Warnings: warnings, Err: ErrCancelled}
	}

	written, err := c.write(cloud)
	if err != nil {
		c.setState(StateFailed)
		removePartialOutput(c.cfg.OutputPath)
		return nil, &Error{Kind: classify(err), Input: inputPath, Warnings: warnings, Err: err}
	}

	c.setState(StateDone)
	c.progress(1.0)
	return &Result{
		PointCount:   uint64(cloud.Len()),
		BytesWritten: uint64(written),
		Warnings:     warnings,
	}, nil
}

func (c *Converter) decode(inputPath string) (*pointcloud.Cloud, []string, error) {
	c.setState(StateParsing)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	r := lvx.NewReader(data)

	if _, err := lvx.ParseHeader(r); err != nil {
		return nil, nil, err
	}
	c.progress(progressHeaderDone)

	c.setState(StateDecoding)
	cloud := pointcloud.New(capacityEstimate(r.Remaining()))
	dec := lvx.NewDecoder(r)
	total := float64(r.Size())

	packets := 0
	for {
		if c.cancelled.Load() {
			return nil, warningStrings(dec.Warnings()), ErrCancelled
		}
		batch, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warningStrings(dec.Warnings()), err
		}
		cloud.Append(batch.Points...)

		packets++
		if packets%c.cfg.ProgressEvery == 0 && total > 0 {
			span := progressDecodeDone - progressHeaderDone
			c.progress(progressHeaderDone + span*float64(dec.Offset())/total)
		}
	}

	warnings := warningStrings(dec.Warnings())
	for _, w := range warnings {
		monitoring.Logf("convert %s: warning: %s", inputPath, w)
	}
	c.progress(progressDecodeDone)
	return cloud, warnings, nil
}

func (c *Converter) write(cloud *pointcloud.Cloud) (int64, error) {
	f, err := os.Create(c.cfg.OutputPath)
	if err != nil {
		return 0, &pcd.WriteError{Err: err}
	}

	written, err := pcd.Write(f, cloud, pcd.Config{
		Format:              c.cfg.Format,
		IncludeReflectivity: c.cfg.IncludeReflectivity,
	})
	if err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, &pcd.WriteError{Err: err}
	}
	return written, nil
}

func warningStrings(ws []lvx.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

func removePartialOutput(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		monitoring.Logf("convert: could not remove partial output %s: %v", path, err)
	}
}
