package lvx

import (
	"errors"
	"fmt"
)

// Decode failure classes. Callers match these with errors.Is; the concrete
// error in the chain is usually a *FormatError carrying the byte offset.
var (
	ErrInvalidSignature      = errors.New("lvx: invalid file signature")
	ErrUnsupportedVersion    = errors.New("lvx: unsupported format version")
	ErrTruncatedInput        = errors.New("lvx: truncated input")
	ErrCorruptFrame          = errors.New("lvx: corrupt frame")
	ErrUnsupportedPacketType = errors.New("lvx: unsupported packet data type")
)

// FormatError is a decode error bound to the file offset where it was
// detected.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v (at byte offset %d)", e.Err, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(offset int64, sentinel error, format string, args ...interface{}) error {
	if format == "" {
		return &FormatError{Offset: offset, Err: sentinel}
	}
	return &FormatError{
		Offset: offset,
		Err:    fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...),
	}
}
